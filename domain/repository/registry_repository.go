package repository

import "gorm.io/datatypes"

// RegistryRepository 键值注册表仓库接口
type RegistryRepository interface {
	// Get 读取 namespace + key 条目的 JSON 值
	// 返回 nil 表示条目不存在，调用方需处理
	Get(namespace, key string) (datatypes.JSON, error)

	// Set = Update + Insert（存在则更新，不存在则创建）
	Set(namespace, key string, value datatypes.JSON) error
}
