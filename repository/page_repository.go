package repository

import (
	"errors"
	"log"

	"sitesearch-go-server/domain/entity"
	domainRepo "sitesearch-go-server/domain/repository"

	"gorm.io/gorm"
)

// 祖先链步数上限
// 数据模型约定内容树无环，这里只防御脏数据（pid 互指会造成死循环）
const maxRootlineDepth = 99

// pageRepository GORM 实现 PageRepository 接口
type pageRepository struct {
	db *gorm.DB
}

// NewPageRepository 构造函数
func NewPageRepository(db *gorm.DB) domainRepo.PageRepository {
	return &pageRepository{db: db}
}

// GetByUID 根据 uid 查询页面，软删除的页面视为不存在
func (r *pageRepository) GetByUID(uid uint) (*entity.Page, error) {
	var page entity.Page
	err := r.db.Where("uid = ? AND deleted = ?", uid, false).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // 返回 nil 表示不存在，调用方需处理
	}
	return &page, err
}

// GetRootline 自页面向上逐级取父页面，直到顶层（pid = 0）
// 返回顺序：页面自身在前，越靠外的祖先越靠后
func (r *pageRepository) GetRootline(uid uint) ([]entity.Page, error) {
	rootline := make([]entity.Page, 0, 4)

	current, err := r.GetByUID(uid)
	if err != nil {
		return nil, err
	}

	for steps := 0; current != nil; steps++ {
		if steps >= maxRootlineDepth {
			log.Printf("[PageRepo] ⚠️ 页面 %d 的祖先链超过 %d 级，截断返回", uid, maxRootlineDepth)
			break
		}
		rootline = append(rootline, *current)
		if current.PID == 0 {
			break
		}
		current, err = r.GetByUID(current.PID)
		if err != nil {
			return nil, err
		}
	}

	return rootline, nil
}

// GetChildPageIDs 查询 parentID 的直接子页面 uid，软删除的不算
// additionalWhere 由站点管理员在配置里维护，原样拼入查询
func (r *pageRepository) GetChildPageIDs(parentID uint, additionalWhere string) ([]uint, error) {
	ids := make([]uint, 0, 8)
	query := r.db.Model(&entity.Page{}).
		Where("pid = ? AND deleted = ?", parentID, false)
	if additionalWhere != "" {
		query = query.Where(additionalWhere)
	}
	err := query.Order("sorting ASC").Pluck("uid", &ids).Error
	return ids, err
}
