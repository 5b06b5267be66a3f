package bootstrap

import (
	"log"
	"os"

	"github.com/goccy/go-yaml"
)

// LoadConfigDefaults 加载随服务发布的搜索配置默认值 YAML
// 文件缺失按空默认值处理（站点文档单独生效），解析失败直接终止启动
func LoadConfigDefaults(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ 配置默认值文件 %s 不可读，按空默认值继续: %v", path, err)
		return map[string]any{}
	}

	defaults := map[string]any{}
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		log.Fatalf("❌ 解析配置默认值 %s 失败: %v", path, err)
	}

	log.Printf("✅ 配置默认值加载完成: %s（%d 个顶层键）", path, len(defaults))
	return defaults
}
