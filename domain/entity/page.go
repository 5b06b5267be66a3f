package entity

import "time"

// Page 内容树页面记录（数据库模型）
// uid 是页面在整棵内容树中的主键，pid 指向父页面；
// pid = 0 表示该页面挂在树的最顶层（系统层，不属于任何站点）
type Page struct {
	UID            uint   `gorm:"primaryKey;autoIncrement:false"`
	PID            uint   `gorm:"index"`
	Title          string `gorm:"size:255"`
	IsSiteroot     bool   // 站点根标记，Site 只能从带此标记的页面构造
	Deleted        bool   `gorm:"index"` // 软删除标记，所有查询必须排除
	Hidden         bool
	Sorting        int // 同级排序权重，越小越靠前
	SysLanguageUID int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
