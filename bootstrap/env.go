package bootstrap

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Env 环境变量配置结构
type Env struct {
	DatabaseURL        string   // 数据库连接字符串（postgres:// 或 mysql://）
	EncryptionKey      string   // 站点指纹的密钥材料，必须全进程一致
	ClerkSecretKey     string   // Clerk API 密钥
	PagesWebhookSecret string   // 页面变更 Webhook 的 Svix 签名密钥
	ConfigDefaultsPath string   // 搜索配置默认值 YAML 的路径
	AllowedOrigins     []string // CORS 与 WebSocket 的来源白名单
	Port               string   // 服务端口
}

// LoadEnv 加载环境变量
// 开发环境从 .env 文件加载，生产环境从系统环境变量读取
func LoadEnv() *Env {
	// 尝试加载 .env 文件（生产环境可能没有）
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env 文件未找到，将使用系统环境变量")
	}

	env := &Env{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		EncryptionKey:      os.Getenv("ENCRYPTION_KEY"),
		ClerkSecretKey:     os.Getenv("CLERK_SECRET_KEY"),
		PagesWebhookSecret: os.Getenv("PAGES_WEBHOOK_SECRET"),
		ConfigDefaultsPath: os.Getenv("CONFIG_DEFAULTS_PATH"),
		Port:               os.Getenv("PORT"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				env.AllowedOrigins = append(env.AllowedOrigins, trimmed)
			}
		}
	}

	// 默认端口
	if env.Port == "" {
		env.Port = "8080"
	}

	// 默认配置文件路径
	if env.ConfigDefaultsPath == "" {
		env.ConfigDefaultsPath = "config/defaults.yaml"
	}

	// 必需变量检查
	if env.DatabaseURL == "" {
		log.Fatal("❌ 缺少必需环境变量: DATABASE_URL")
	}
	if env.EncryptionKey == "" {
		log.Fatal("❌ 缺少必需环境变量: ENCRYPTION_KEY（站点指纹依赖它保持稳定）")
	}

	log.Printf("✅ 环境变量加载完成, 端口: %s", env.Port)
	return env
}
