package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// 搜索子系统在注册表中使用的命名空间与键
const (
	RegistryNamespaceSearch = "search"
	RegistryKeyServers      = "servers"
)

// RegistryEntry 键值注册表行，namespace + entry_key 联合唯一
// 值统一存 JSON 文档，语义由各命名空间自己约定
type RegistryEntry struct {
	ID        uint           `gorm:"primaryKey"`
	Namespace string         `gorm:"uniqueIndex:idx_registry_namespace_key;size:128"`
	EntryKey  string         `gorm:"uniqueIndex:idx_registry_namespace_key;size:128"`
	Value     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SearchConnection "search"/"servers" 条目里的单个搜索后端连接描述
// 整个条目是 map["<rootPageId>|<languageId>"]SearchConnection
type SearchConnection struct {
	RootPageID uint   `json:"rootPageUid"`
	LanguageID int    `json:"language"`
	Scheme     string `json:"scheme"`
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Path       string `json:"path"`
	Core       string `json:"core"`
}

// ConnectionKey 生成 "<rootPageId>|<languageId>" 组合键
func ConnectionKey(rootPageID uint, languageID int) string {
	return fmt.Sprintf("%d|%d", rootPageID, languageID)
}

// ParseConnectionKey 拆解组合键，两段都必须是非负整数
func ParseConnectionKey(key string) (rootPageID uint, languageID int, err error) {
	parts := strings.Split(key, "|")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("connection key %q is not in <rootPageId>|<languageId> form", key)
	}
	root, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("connection key %q has an invalid root page id: %w", key, err)
	}
	language, err := strconv.Atoi(parts[1])
	if err != nil || language < 0 {
		return 0, 0, fmt.Errorf("connection key %q has an invalid language id", key)
	}
	return uint(root), language, nil
}
