package repository

import (
	"errors"

	"sitesearch-go-server/domain/entity"
	domainRepo "sitesearch-go-server/domain/repository"

	"gorm.io/gorm"
)

// domainRepository GORM 实现 DomainRepository 接口
type domainRepository struct {
	db *gorm.DB
}

// NewDomainRepository 构造函数
func NewDomainRepository(db *gorm.DB) domainRepo.DomainRepository {
	return &domainRepository{db: db}
}

// GetFirstDomainForPage 取页面上 sorting 最小的未隐藏域名绑定
func (r *domainRepository) GetFirstDomainForPage(pageUID uint) (string, error) {
	var record entity.DomainRecord
	err := r.db.Where("pid = ? AND hidden = ?", pageUID, false).
		Order("sorting ASC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil // 页面没有绑定不是错误，返回空串
	}
	if err != nil {
		return "", err
	}
	return record.DomainName, nil
}
