package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitesearch-go-server/api/controller"
	"sitesearch-go-server/api/route"
	"sitesearch-go-server/bootstrap"
	"sitesearch-go-server/internal/ws"
	"sitesearch-go-server/repository"
	"sitesearch-go-server/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("[Server] SiteSearch Go Server 启动中...")

	// 加载环境变量
	env := bootstrap.LoadEnv()

	// 初始化 Clerk
	bootstrap.InitClerk(env.ClerkSecretKey)

	// 连接数据库
	db := bootstrap.NewDatabase(env.DatabaseURL)

	// 加载搜索配置默认值
	defaults := bootstrap.LoadConfigDefaults(env.ConfigDefaultsPath)

	// 依赖注入 - Repository 层
	pageRepo := repository.NewPageRepository(db)
	registryRepo := repository.NewRegistryRepository(db)
	domainRepo := repository.NewDomainRepository(db)
	siteConfigRepo := repository.NewSiteConfigRepository(db)

	// WebSocket 事件中心
	hub := ws.NewHub()

	// 依赖注入 - UseCase 层
	configResolver := usecase.NewConfigResolver(siteConfigRepo, defaults)
	frontend := usecase.NewFrontendBootstrapper(configResolver)
	resolver := usecase.NewSiteResolver(usecase.ResolverDeps{
		Pages:         pageRepo,
		Registry:      registryRepo,
		Domains:       domainRepo,
		Config:        configResolver,
		Frontend:      frontend,
		Hub:           hub,
		EncryptionKey: env.EncryptionKey,
	})

	// 依赖注入 - Controller 层
	siteController := controller.NewSiteController(resolver, configResolver)
	maintenanceController := controller.NewMaintenanceController(resolver, registryRepo, hub)
	wsHandler := controller.NewWSHandler(hub, env.AllowedOrigins)
	webhookController := controller.NewWebhookController(resolver, env.PagesWebhookSecret)

	// 启动 Hub 事件循环
	go hub.Run()

	// 配置 Gin 路由
	router := gin.Default()

	// CORS 配置
	allowOrigins := append([]string{"http://localhost:3000", "http://localhost:5173"}, env.AllowedOrigins...)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 设置路由
	route.Setup(router, &route.Dependencies{
		SiteController:        siteController,
		MaintenanceController: maintenanceController,
		WSHandler:             wsHandler,
		WebhookController:     webhookController,
	})

	// 启动 HTTP 服务
	srv := &http.Server{
		Addr:    ":" + env.Port,
		Handler: router,
	}

	go func() {
		log.Printf("[Server] 服务已启动: http://localhost:%s", env.Port)
		log.Printf("[Server] API 端点:")
		log.Printf("   GET  /health                        - 健康检查")
		log.Printf("   GET  /api/sites                     - 列出可用站点")
		log.Printf("   GET  /api/sites/first               - 第一个可用站点")
		log.Printf("   GET  /api/sites/selector            - 站点下拉选择器")
		log.Printf("   GET  /api/sites/:pageId             - 站点详情")
		log.Printf("   GET  /api/sites/:pageId/pages       - 枚举站点页面")
		log.Printf("   GET  /api/sites/:pageId/config      - 站点搜索配置")
		log.Printf("   PATCH /api/sites/:pageId/config     - 修改站点搜索配置")
		log.Printf("   PUT  /api/registry/servers          - 替换注册表 servers 条目")
		log.Printf("   POST /api/caches/pages/clear        - 清空页面枚举缓存")
		log.Printf("   POST /api/caches/sites/clear        - 重置站点缓存")
		log.Printf("   GET  /ws/events?token=xxx           - 订阅事件流")
		log.Printf("   POST /webhook/pages                 - 页面变更 Webhook")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Server] 服务启动失败: %v", err)
		}
	}()

	// 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[Server] 收到停机信号，正在优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[Server] 服务强制关闭: %v", err)
	}

	hub.Stop()
	log.Println("[Server] 服务已安全停止")
}
