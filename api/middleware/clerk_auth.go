package middleware

import (
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/gin-gonic/gin"
)

// ClerkAuth 管理 API 的认证中间件
// 站点元数据读取和注册表、缓存维护接口只开放给登录的运维用户
func ClerkAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 取 Token，只接受 Bearer 方案
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "缺少 Authorization 头"})
			return
		}
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization 头必须是 Bearer 方案"})
			return
		}

		// 2. 验证 Token
		// Clerk SDK 会自动拉取公钥并验证签名、过期时间
		claims, err := jwt.Verify(c.Request.Context(), &jwt.VerifyParams{
			Token: token,
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token 无效", "details": err.Error()})
			return
		}

		// 3. 操作者注入上下文，维护接口的审计日志会用到
		c.Set(ContextKeyUserID, claims.Subject)

		c.Next()
	}
}
