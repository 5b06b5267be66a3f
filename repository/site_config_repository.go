package repository

import (
	"errors"

	"sitesearch-go-server/domain/entity"
	domainRepo "sitesearch-go-server/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// siteConfigRepository GORM 实现 SiteConfigRepository 接口
type siteConfigRepository struct {
	db *gorm.DB
}

// NewSiteConfigRepository 构造函数
func NewSiteConfigRepository(db *gorm.DB) domainRepo.SiteConfigRepository {
	return &siteConfigRepository{db: db}
}

// GetByRootPageID 根据站点根页面 uid 查询配置行
func (r *siteConfigRepository) GetByRootPageID(rootPageID uint) (*entity.SiteConfig, error) {
	var config entity.SiteConfig
	err := r.db.Where("root_page_id = ?", rootPageID).First(&config).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // 返回 nil 表示该站点还没有站点级配置
	}
	return &config, err
}

// Save 创建或更新站点配置
func (r *siteConfigRepository) Save(config *entity.SiteConfig) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "root_page_id"}}, // 冲突字段
		DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
	}).Create(config).Error
}
