package repository

import (
	"errors"

	"sitesearch-go-server/domain/entity"
	domainRepo "sitesearch-go-server/domain/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// registryRepository GORM 实现 RegistryRepository 接口
type registryRepository struct {
	db *gorm.DB
}

// NewRegistryRepository 构造函数
func NewRegistryRepository(db *gorm.DB) domainRepo.RegistryRepository {
	return &registryRepository{db: db}
}

// Get 读取注册表条目的 JSON 值
func (r *registryRepository) Get(namespace, key string) (datatypes.JSON, error) {
	var entry entity.RegistryEntry
	err := r.db.Where("namespace = ? AND entry_key = ?", namespace, key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // 返回 nil 表示条目不存在，调用方需处理
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// Set 创建或更新注册表条目
// 使用 ON CONFLICT 语法实现 upsert，冲突目标是 namespace + entry_key 联合唯一索引
func (r *registryRepository) Set(namespace, key string, value datatypes.JSON) error {
	entry := &entity.RegistryEntry{
		Namespace: namespace,
		EntryKey:  key,
		Value:     value,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}}, // 冲突字段
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
}
