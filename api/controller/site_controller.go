package controller

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	domainErrors "sitesearch-go-server/domain/errors"
	"sitesearch-go-server/usecase"

	"github.com/gin-gonic/gin"
)

// --- 响应结构定义 ---

// SiteSummaryResponse 站点摘要响应结构（列表项）
type SiteSummaryResponse struct {
	RootPageID uint   `json:"rootPageId"`
	Title      string `json:"title"`
	Label      string `json:"label"`
	Domain     string `json:"domain"`
	SiteHash   string `json:"siteHash"`
}

// SiteDetailResponse 站点详情响应结构
type SiteDetailResponse struct {
	RootPageID      uint   `json:"rootPageId"`
	Title           string `json:"title"`
	Label           string `json:"label"`
	Domain          string `json:"domain"`
	SiteHash        string `json:"siteHash"`
	Languages       []int  `json:"languages"`
	DefaultLanguage int    `json:"defaultLanguage"`
	SysLanguageMode string `json:"sysLanguageMode"`
}

// SitePagesResponse 站点页面枚举响应结构
type SitePagesResponse struct {
	RootPageID uint   `json:"rootPageId"`
	StartPage  uint   `json:"startPage"`
	MaxDepth   int    `json:"maxDepth"`
	PageIDs    []uint `json:"pageIds"`
}

// SiteConfigResponse 站点配置响应结构
type SiteConfigResponse struct {
	RootPageID uint           `json:"rootPageId"`
	Config     map[string]any `json:"config"`
}

// SiteConfigValueResponse 站点配置单值查询响应结构
type SiteConfigValueResponse struct {
	RootPageID uint   `json:"rootPageId"`
	Path       string `json:"path"`
	Value      any    `json:"value"`
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse 消息响应结构
type MessageResponse struct {
	Message string `json:"message"`
}

// --- 控制器定义 ---

// 页面枚举的默认最大深度，相当于不限深
const defaultMaxDepth = 999

// SiteController 站点 HTTP 控制器
type SiteController struct {
	resolver       *usecase.SiteResolver
	configResolver *usecase.ConfigResolver
}

// NewSiteController 创建 SiteController 实例
func NewSiteController(resolver *usecase.SiteResolver, configResolver *usecase.ConfigResolver) *SiteController {
	return &SiteController{resolver: resolver, configResolver: configResolver}
}

// ListSites 列出注册表里配置过的全部站点
// GET /api/sites?strict=false
// strict=true 时任一站点配置无效则整个请求失败
func (sc *SiteController) ListSites(c *gin.Context) {
	strict, err := strconv.ParseBool(c.DefaultQuery("strict", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "strict 必须是布尔值"})
		return
	}

	sites, err := sc.resolver.GetAvailableSites(strict)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidSiteConfiguration) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "注册表引用了无效站点", Details: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	summaries := make([]SiteSummaryResponse, 0, len(sites))
	for _, site := range sites {
		summaries = append(summaries, siteSummary(site))
	}
	c.JSON(http.StatusOK, summaries)
}

// GetFirstSite 返回可用站点枚举的第一个站点
// GET /api/sites/first?strict=false
func (sc *SiteController) GetFirstSite(c *gin.Context) {
	strict, err := strconv.ParseBool(c.DefaultQuery("strict", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "strict 必须是布尔值"})
		return
	}

	site, err := sc.resolver.GetFirstAvailableSite(strict)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNoAvailableSites):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "注册表里没有任何站点"})
		case errors.Is(err, domainErrors.ErrInvalidSiteConfiguration):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "注册表引用了无效站点", Details: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, siteSummary(site))
}

// GetSitesSelector 生成管理界面的站点下拉选择器
// GET /api/sites/selector?name=site&selected=<pageId>
func (sc *SiteController) GetSitesSelector(c *gin.Context) {
	name := c.DefaultQuery("name", "site")

	var selected *usecase.Site
	if raw := c.Query("selected"); raw != "" {
		pageID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "selected 必须是页面 uid"})
			return
		}
		// 选中项解析失败按未选中处理，选择器本身照常生成
		if site, err := sc.resolver.GetSiteByPageID(uint(pageID)); err == nil {
			selected = site
		}
	}

	selector, err := sc.resolver.GetAvailableSitesSelector(name, selected)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, selector)
}

// GetSite 返回包含指定页面的站点详情
// GET /api/sites/:pageId
// :pageId 可以是站点内任意页面的 uid，不要求正好是站点根
func (sc *SiteController) GetSite(c *gin.Context) {
	site, ok := sc.resolveSite(c)
	if !ok {
		return
	}

	languages, err := site.GetLanguages()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	// 语言模式解析失败不阻塞详情页，按空串返回
	langMode, err := site.GetSysLanguageMode()
	if err != nil {
		log.Printf("[SiteController] ⚠️ 站点 %d 的语言模式解析失败: %v", site.GetRootPageID(), err)
	}

	c.JSON(http.StatusOK, SiteDetailResponse{
		RootPageID:      site.GetRootPageID(),
		Title:           site.GetTitle(),
		Label:           site.GetLabel(),
		Domain:          site.GetDomain(),
		SiteHash:        site.GetSiteHash(),
		Languages:       languages,
		DefaultLanguage: site.GetDefaultLanguage(),
		SysLanguageMode: langMode,
	})
}

// GetSitePages 枚举站点的页面 uid
// GET /api/sites/:pageId/pages?maxDepth=999&from=<uid>
// 不带 from 时从站点根开始（结果含根页面）；
// 带 from 时枚举该页面以下的子树（结果不含 from 自身）
func (sc *SiteController) GetSitePages(c *gin.Context) {
	site, ok := sc.resolveSite(c)
	if !ok {
		return
	}

	maxDepth := defaultMaxDepth
	if raw := c.Query("maxDepth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "maxDepth 必须是整数"})
			return
		}
		maxDepth = parsed
	}

	startPage := site.GetRootPageID()
	var pageIDs []uint
	var err error
	if raw := c.Query("from"); raw != "" {
		from, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from 必须是页面 uid"})
			return
		}
		startPage = uint(from)
		pageIDs, err = site.GetSubtreePages(startPage, maxDepth)
	} else {
		pageIDs, err = site.GetPages(maxDepth)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SitePagesResponse{
		RootPageID: site.GetRootPageID(),
		StartPage:  startPage,
		MaxDepth:   maxDepth,
		PageIDs:    pageIDs,
	})
}

// GetSiteConfig 返回站点生效的搜索配置（默认值与站点文档合并后）
// GET /api/sites/:pageId/config?path=&default=
// 带 path 时按点分路径做单值查询，default 是取不到时返回的字符串
func (sc *SiteController) GetSiteConfig(c *gin.Context) {
	site, ok := sc.resolveSite(c)
	if !ok {
		return
	}

	cfg, err := site.GetSearchConfiguration()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	if path := c.Query("path"); path != "" {
		c.JSON(http.StatusOK, SiteConfigValueResponse{
			RootPageID: site.GetRootPageID(),
			Path:       path,
			Value:      cfg.ValueByPathOrDefault(path, c.Query("default")),
		})
		return
	}

	c.JSON(http.StatusOK, SiteConfigResponse{
		RootPageID: site.GetRootPageID(),
		Config:     cfg.Data(),
	})
}

// PatchSiteConfig 对站点配置文档应用 RFC 6902 JSON Patch
// PATCH /api/sites/:pageId/config
// 请求体是 JSON Patch 数组，补丁作用在站点级文档上（不含默认值）
func (sc *SiteController) PatchSiteConfig(c *gin.Context) {
	site, ok := sc.resolveSite(c)
	if !ok {
		return
	}

	patchBytes, err := io.ReadAll(c.Request.Body)
	if err != nil || len(patchBytes) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "请求体必须是 JSON Patch 数组"})
		return
	}

	modified, err := sc.configResolver.ApplyConfigPatch(site.GetRootPageID(), patchBytes)
	if err != nil {
		// 补丁解析失败和应用失败都算客户端错误（路径不存在、test 不通过等）
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "补丁应用失败", Details: err.Error()})
		return
	}

	log.Printf("[SiteController] ✅ 站点 %d 的配置已更新", site.GetRootPageID())
	c.Data(http.StatusOK, "application/json", modified)
}

// resolveSite 解析路径参数 :pageId 对应的站点，失败时直接写响应
func (sc *SiteController) resolveSite(c *gin.Context) (*usecase.Site, bool) {
	raw := c.Param("pageId")
	pageID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "pageId 必须是页面 uid"})
		return nil, false
	}

	site, err := sc.resolver.GetSiteByPageID(uint(pageID))
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidSiteConfiguration) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "页面不属于任何有效站点", Details: err.Error()})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return site, true
}

// siteSummary 把 Site 拍平成摘要响应
func siteSummary(site *usecase.Site) SiteSummaryResponse {
	return SiteSummaryResponse{
		RootPageID: site.GetRootPageID(),
		Title:      site.GetTitle(),
		Label:      site.GetLabel(),
		Domain:     site.GetDomain(),
		SiteHash:   site.GetSiteHash(),
	}
}
