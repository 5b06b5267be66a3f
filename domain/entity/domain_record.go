package entity

import "time"

// DomainRecord 域名绑定记录，把一个对外域名挂在某个页面上
// 站点解析主域名时沿祖先链自内向外找第一条未隐藏的绑定（同页面按 sorting 升序）
type DomainRecord struct {
	UID        uint   `gorm:"primaryKey;autoIncrement:false"`
	PID        uint   `gorm:"index"` // 绑定到的页面 uid
	DomainName string `gorm:"size:255"`
	Hidden     bool
	Sorting    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
