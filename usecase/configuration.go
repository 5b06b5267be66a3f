package usecase

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"sitesearch-go-server/domain/entity"
	"sitesearch-go-server/domain/repository"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"gorm.io/datatypes"
)

// ========== 站点搜索配置 ==========
// 生效配置 = 打包的 YAML 默认值 + 站点级 JSON 文档深度合并，
// 站点里的键覆盖默认键，嵌套对象逐层递归合并

// ConfigurationSource Site 读取配置的入口，便于测试替换
type ConfigurationSource interface {
	// GetConfigurationFromPageID 返回站点根页面对应的合并后配置
	GetConfigurationFromPageID(rootPageID uint) (*Configuration, error)
}

// Configuration 类型化配置视图，按点分路径取值
type Configuration struct {
	rootPageID uint
	data       map[string]any
}

// NewConfiguration 构造函数
func NewConfiguration(rootPageID uint, data map[string]any) *Configuration {
	if data == nil {
		data = map[string]any{}
	}
	return &Configuration{rootPageID: rootPageID, data: data}
}

// GetRootPageID 配置所属的站点根页面 uid
func (c *Configuration) GetRootPageID() uint {
	return c.rootPageID
}

// Data 合并后的完整配置文档（序列化输出用，调用方不应修改）
func (c *Configuration) Data() map[string]any {
	return c.data
}

// ValueByPathOrDefault 按点分路径（如 "config.sys_language_uid"）读取配置值
// 路径上任何一段缺失、或中间节点不是对象时返回默认值
func (c *Configuration) ValueByPathOrDefault(path string, defaultValue any) any {
	var current any = c.data
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return defaultValue
		}
		value, ok := node[segment]
		if !ok {
			return defaultValue
		}
		current = value
	}
	return current
}

// IntValueByPathOrDefault 按路径取整数
// JSON 反序列化出来的数字是 float64，YAML 默认值是 int/uint64，
// 字符串值也尝试解析，全部失败才落回默认值
func (c *Configuration) IntValueByPathOrDefault(path string, defaultValue int) int {
	switch value := c.ValueByPathOrDefault(path, defaultValue).(type) {
	case int:
		return value
	case int64:
		return int(value)
	case uint64:
		return int(value)
	case float64:
		return int(value)
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// StringValueByPathOrDefault 按路径取字符串，数字和布尔值格式化后返回
func (c *Configuration) StringValueByPathOrDefault(path string, defaultValue string) string {
	switch value := c.ValueByPathOrDefault(path, defaultValue).(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	case bool:
		return strconv.FormatBool(value)
	}
	return defaultValue
}

// ConfigResolver 默认的 ConfigurationSource 实现
type ConfigResolver struct {
	configRepo repository.SiteConfigRepository
	defaults   map[string]any
}

// NewConfigResolver 构造函数，依赖注入
// defaults 是启动时从 YAML 加载的全局默认配置，可为 nil
func NewConfigResolver(configRepo repository.SiteConfigRepository, defaults map[string]any) *ConfigResolver {
	if defaults == nil {
		defaults = map[string]any{}
	}
	return &ConfigResolver{configRepo: configRepo, defaults: defaults}
}

// GetConfigurationFromPageID 加载站点配置行并叠加在默认值上
// 站点还没有配置行时只用默认值，不视为错误
func (r *ConfigResolver) GetConfigurationFromPageID(rootPageID uint) (*Configuration, error) {
	row, err := r.configRepo.GetByRootPageID(rootPageID)
	if err != nil {
		return nil, err
	}

	var siteConfig map[string]any
	if row != nil && len(row.Config) > 0 {
		if err := json.Unmarshal(row.Config, &siteConfig); err != nil {
			return nil, fmt.Errorf("decode site config for root page %d: %w", rootPageID, err)
		}
	}

	return NewConfiguration(rootPageID, mergeConfig(r.defaults, siteConfig)), nil
}

// ApplyConfigPatch 对站点配置文档应用 JSON Patch 并持久化
// 使用 RFC 6902 标准的 json-patch 库，返回补丁后的完整文档
func (r *ConfigResolver) ApplyConfigPatch(rootPageID uint, patchBytes []byte) (datatypes.JSON, error) {
	row, err := r.configRepo.GetByRootPageID(rootPageID)
	if err != nil {
		return nil, err
	}

	// 还没有配置行时从空文档开始打补丁
	current := []byte(`{}`)
	if row != nil && len(row.Config) > 0 {
		current = row.Config
	}

	patch, err := jsonpatch.DecodePatch(patchBytes)
	if err != nil {
		return nil, err
	}
	modified, err := patch.Apply(current)
	if err != nil {
		return nil, err
	}

	if err := r.configRepo.Save(&entity.SiteConfig{
		RootPageID: rootPageID,
		Config:     datatypes.JSON(modified),
	}); err != nil {
		return nil, err
	}
	return datatypes.JSON(modified), nil
}

// mergeConfig 深度合并两份配置：override 的键覆盖 base，嵌套对象递归合并
// 始终返回新 map，不修改两个入参
func mergeConfig(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range override {
		overrideMap, overrideIsMap := value.(map[string]any)
		baseMap, baseIsMap := merged[key].(map[string]any)
		if overrideIsMap && baseIsMap {
			merged[key] = mergeConfig(baseMap, overrideMap)
			continue
		}
		merged[key] = value
	}
	return merged
}
