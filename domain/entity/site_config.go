package entity

import (
	"time"

	"gorm.io/datatypes"
)

// SiteConfig 站点级搜索配置文档（数据库模型，JSONB）
// 读取时与打包的 YAML 默认值深度合并，站点里的键覆盖默认键
type SiteConfig struct {
	RootPageID uint           `gorm:"primaryKey;autoIncrement:false"`
	Config     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
