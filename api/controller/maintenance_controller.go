package controller

import (
	"encoding/json"
	"log"
	"net/http"

	"sitesearch-go-server/api/middleware"
	"sitesearch-go-server/domain/entity"
	domainRepo "sitesearch-go-server/domain/repository"
	"sitesearch-go-server/internal/ws"
	"sitesearch-go-server/usecase"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// operatorID 取当前请求的操作者，审计日志用
func operatorID(c *gin.Context) string {
	if userID := c.GetString(middleware.ContextKeyUserID); userID != "" {
		return userID
	}
	return "unknown"
}

// MaintenanceController 注册表维护与缓存管理控制器
type MaintenanceController struct {
	resolver     *usecase.SiteResolver
	registryRepo domainRepo.RegistryRepository
	hub          *ws.Hub
}

// NewMaintenanceController 创建 MaintenanceController 实例
func NewMaintenanceController(resolver *usecase.SiteResolver, registryRepo domainRepo.RegistryRepository, hub *ws.Hub) *MaintenanceController {
	return &MaintenanceController{resolver: resolver, registryRepo: registryRepo, hub: hub}
}

// PutServers 整体替换注册表的 "search"/"servers" 条目
// PUT /api/registry/servers
// 请求体: { "<rootPageId>|<languageId>": { "host": ..., "port": ..., ... }, ... }
// 替换成功后重置站点缓存，下次枚举反映新配置
func (mc *MaintenanceController) PutServers(c *gin.Context) {
	var servers map[string]entity.SearchConnection
	if err := c.ShouldBindJSON(&servers); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "请求体必须是连接键到连接的映射", Details: err.Error()})
		return
	}

	// 组合键提前校验，坏键直接拒绝而不是写进注册表等枚举时再跳过
	for key := range servers {
		if _, _, err := entity.ParseConnectionKey(key); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "连接键格式错误", Details: err.Error()})
			return
		}
	}

	value, err := json.Marshal(servers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	if err := mc.registryRepo.Set(entity.RegistryNamespaceSearch, entity.RegistryKeyServers, datatypes.JSON(value)); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	// 注册表变了，站点枚举的记忆化结果必须作废
	mc.resolver.ResetSitesCache()

	if mc.hub != nil {
		mc.hub.Publish(ws.NewEvent(ws.TypeServersUpdated, map[string]any{"count": len(servers)}))
	}

	log.Printf("[Maintenance] ✅ 注册表 servers 条目已替换，共 %d 个连接，操作者 [%s]", len(servers), operatorID(c))
	c.JSON(http.StatusOK, MessageResponse{Message: "servers 条目已更新"})
}

// ClearPagesCache 清空页面枚举缓存
// POST /api/caches/pages/clear
// 内容编辑后调用，站点缓存不受影响
func (mc *MaintenanceController) ClearPagesCache(c *gin.Context) {
	mc.resolver.ClearSitePagesCache()
	log.Printf("[Maintenance] 🧹 页面枚举缓存已清空，操作者 [%s]", operatorID(c))
	c.JSON(http.StatusOK, MessageResponse{Message: "页面枚举缓存已清空"})
}

// ClearSitesCache 重置站点缓存与可用站点记忆化
// POST /api/caches/sites/clear
// 站点结构（根标记、域名绑定）变更后调用
func (mc *MaintenanceController) ClearSitesCache(c *gin.Context) {
	mc.resolver.ResetSitesCache()
	log.Printf("[Maintenance] 🧹 站点缓存已重置，操作者 [%s]", operatorID(c))
	c.JSON(http.StatusOK, MessageResponse{Message: "站点缓存已重置"})
}
