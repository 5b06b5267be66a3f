package route

import (
	"sitesearch-go-server/api/controller"
	"sitesearch-go-server/api/middleware"

	"github.com/gin-gonic/gin"
)

// Dependencies 路由依赖注入结构
type Dependencies struct {
	SiteController        *controller.SiteController
	MaintenanceController *controller.MaintenanceController
	WSHandler             *controller.WSHandler
	WebhookController     *controller.WebhookController
}

// Setup 配置所有路由
func Setup(router *gin.Engine, deps *Dependencies) {
	// --- 公开路由 ---

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "sitesearch-go-server",
		})
	})

	// 页面变更 Webhook（使用 Svix 签名验证，不使用 JWT）
	router.POST("/webhook/pages", deps.WebhookController.HandlePagesWebhook)

	// --- WebSocket 路由 ---
	// 事件流订阅自行在 Handler 中验证 Token
	router.GET("/ws/events", deps.WSHandler.HandleWS)

	// --- API 路由（需要 Clerk JWT 认证）---
	api := router.Group("/api")
	api.Use(middleware.ClerkAuth())
	{
		// 站点查询
		api.GET("/sites", deps.SiteController.ListSites)
		api.GET("/sites/first", deps.SiteController.GetFirstSite)
		api.GET("/sites/selector", deps.SiteController.GetSitesSelector)
		api.GET("/sites/:pageId", deps.SiteController.GetSite)
		api.GET("/sites/:pageId/pages", deps.SiteController.GetSitePages)

		// 站点配置
		api.GET("/sites/:pageId/config", deps.SiteController.GetSiteConfig)
		api.PATCH("/sites/:pageId/config", deps.SiteController.PatchSiteConfig)

		// 注册表维护
		api.PUT("/registry/servers", deps.MaintenanceController.PutServers)

		// 缓存管理
		api.POST("/caches/pages/clear", deps.MaintenanceController.ClearPagesCache)
		api.POST("/caches/sites/clear", deps.MaintenanceController.ClearSitesCache)
	}
}
