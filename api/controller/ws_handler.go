package controller

import (
	"log"
	"net/http"
	"strings"

	"sitesearch-go-server/internal/ws"

	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler WebSocket 事件流处理器
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWSHandler 构造函数
func NewWSHandler(hub *ws.Hub, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 配置 CORS
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// 开发环境允许所有
				if origin == "" || strings.HasPrefix(origin, "http://localhost") {
					return true
				}
				// 生产环境检查白名单
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Printf("[WS] ⚠️ 拒绝来自 %s 的连接", origin)
				return false
			},
		},
	}
}

// HandleWS 处理事件流订阅的 WebSocket 升级请求
// GET /ws/events
// ⚠️ 需要在 URL 查询参数或 Sec-WebSocket-Protocol 中携带 JWT Token
func (h *WSHandler) HandleWS(c *gin.Context) {
	// 1. 验证 JWT Token（从 URL 参数获取，因为 WebSocket 不支持自定义 Header）
	token := c.Query("token")
	if token == "" {
		// 也尝试从 Sec-WebSocket-Protocol 获取（某些客户端实现）
		token = c.GetHeader("Sec-WebSocket-Protocol")
	}

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证 token"})
		return
	}

	// 2. 验证 Clerk JWT
	claims, err := jwt.Verify(c.Request.Context(), &jwt.VerifyParams{
		Token: token,
	})
	if err != nil {
		log.Printf("[WS] ❌ Token 验证失败: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token 无效", "details": err.Error()})
		return
	}

	// 3. 升级为 WebSocket 连接
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] ❌ 升级 WebSocket 失败: %v", err)
		return
	}

	// 4. 注册订阅者并启动读写协程
	client := ws.NewClient(h.hub, conn, claims.Subject)
	h.hub.Subscribe(client)

	log.Printf("[WS] ✅ 用户 [%s] 订阅了事件流", claims.Subject)

	go client.WritePump()
	go client.ReadPump()
}
