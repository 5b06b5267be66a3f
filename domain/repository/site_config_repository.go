package repository

import "sitesearch-go-server/domain/entity"

// SiteConfigRepository 站点配置仓库接口
type SiteConfigRepository interface {
	// GetByRootPageID 根据站点根页面 uid 获取配置行
	// 返回 nil 表示该站点还没有站点级配置，调用方需处理
	GetByRootPageID(rootPageID uint) (*entity.SiteConfig, error)

	// Save = Update + Insert（存在则更新，不存在则创建）
	Save(config *entity.SiteConfig) error
}
