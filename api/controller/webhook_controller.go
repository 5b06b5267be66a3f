package controller

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"sitesearch-go-server/usecase"

	"github.com/gin-gonic/gin"
	svix "github.com/svix/svix-webhooks/go"
)

// WebhookController 处理内容系统的页面变更 Webhook 回调
// 变更到达时按事件类型让对应缓存失效，下次查询重新落库
type WebhookController struct {
	resolver      *usecase.SiteResolver
	webhookSecret string
}

// NewWebhookController 构造函数
func NewWebhookController(resolver *usecase.SiteResolver, webhookSecret string) *WebhookController {
	return &WebhookController{
		resolver:      resolver,
		webhookSecret: webhookSecret,
	}
}

// PagesWebhookPayload 页面变更事件结构
type PagesWebhookPayload struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandlePagesWebhook 处理页面变更 Webhook 回调
// POST /webhook/pages
// 处理 page.created, page.updated, page.moved, page.deleted, site.changed 事件
func (wc *WebhookController) HandlePagesWebhook(c *gin.Context) {
	// 1. 读取请求体
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Printf("[Webhook] ❌ 读取请求体失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无法读取请求体"})
		return
	}

	// 2. 验证 Webhook 签名（使用 Svix SDK）
	if wc.webhookSecret != "" {
		wh, err := svix.NewWebhook(wc.webhookSecret)
		if err != nil {
			log.Printf("[Webhook] ❌ 初始化 Webhook 验证器失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook 配置错误"})
			return
		}

		headers := http.Header{}
		headers.Set("svix-id", c.GetHeader("svix-id"))
		headers.Set("svix-timestamp", c.GetHeader("svix-timestamp"))
		headers.Set("svix-signature", c.GetHeader("svix-signature"))

		if err := wh.Verify(body, headers); err != nil {
			log.Printf("[Webhook] ❌ 签名验证失败: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "签名验证失败"})
			return
		}
	} else {
		log.Println("[Webhook] ⚠️ 未配置 PAGES_WEBHOOK_SECRET，跳过签名验证（仅限开发环境）")
	}

	// 3. 解析事件
	var payload PagesWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[Webhook] ❌ 解析 Webhook 失败: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 JSON 格式"})
		return
	}

	log.Printf("[Webhook] 📥 收到事件: %s", payload.Type)

	// 4. 根据事件类型让缓存失效
	switch payload.Type {
	case "page.created", "page.updated":
		// 树的内容变了，枚举结果作废
		wc.resolver.ClearSitePagesCache()
	case "page.moved", "page.deleted":
		// 树的结构变了，站点归属也可能跟着变
		wc.resolver.ClearSitePagesCache()
		wc.resolver.ResetSitesCache()
	case "site.changed":
		// 站点根标记或域名绑定变了
		wc.resolver.ResetSitesCache()
		wc.resolver.ClearSitePagesCache()
	default:
		log.Printf("[Webhook] ℹ️ 忽略事件: %s", payload.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
