package bootstrap

import (
	"log"

	"github.com/clerk/clerk-sdk-go/v2"
)

// InitClerk 初始化 Clerk SDK，管理 API 与事件流的 JWT 验证依赖它
func InitClerk(secretKey string) {
	if secretKey == "" {
		log.Fatal("❌ 缺少必需环境变量: CLERK_SECRET_KEY")
	}
	clerk.SetKey(secretKey)

	log.Println("✅ Clerk 初始化成功")
}
