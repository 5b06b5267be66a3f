package usecase

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"

	"sitesearch-go-server/domain/entity"
	domainErrors "sitesearch-go-server/domain/errors"
	"sitesearch-go-server/domain/repository"
	"sitesearch-go-server/internal/ws"
)

// ========== SiteResolver：站点解析与进程级缓存 ==========
// 进程内所有站点查询都走同一个 SiteResolver 实例，三张缓存表挂在
// 实例上而不是包级变量：生命周期跟随装配点，测试之间互不泄漏，
// 并发访问全部有锁保护

// ResolverDeps 解析器依赖注入结构
type ResolverDeps struct {
	Pages         repository.PageRepository
	Registry      repository.RegistryRepository
	Domains       repository.DomainRepository
	Config        ConfigurationSource
	Frontend      FrontendInitializer
	Hub           *ws.Hub // 可为 nil（纯库用法，不推事件）
	EncryptionKey string  // 站点指纹的密钥材料
}

// SiteResolver 站点解析器
type SiteResolver struct {
	pages         repository.PageRepository
	registry      repository.RegistryRepository
	domains       repository.DomainRepository
	config        ConfigurationSource
	frontend      FrontendInitializer
	hub           *ws.Hub
	encryptionKey string

	// 根页面 uid -> Site；只增不减，显式 ResetSitesCache 才清空
	sitesMu sync.RWMutex
	sites   map[uint]*Site

	// 树遍历记忆化，键形如 "site:<uid>:<depth>" / "page:<uid>:<depth>"
	sitePagesMu sync.RWMutex
	sitePages   map[string][]uint

	// GetAvailableSites 结果按 stopOnInvalidSite 标志分别记忆化
	availableMu    sync.RWMutex
	availableSites map[bool][]*Site
}

// NewSiteResolver 构造函数，依赖注入
func NewSiteResolver(deps ResolverDeps) *SiteResolver {
	return &SiteResolver{
		pages:          deps.Pages,
		registry:       deps.Registry,
		domains:        deps.Domains,
		config:         deps.Config,
		frontend:       deps.Frontend,
		hub:            deps.Hub,
		encryptionKey:  deps.EncryptionKey,
		sites:          make(map[uint]*Site),
		sitePages:      make(map[string][]uint),
		availableSites: make(map[bool][]*Site),
	}
}

// GetSiteByRootPageID 返回根页面对应的 Site，不存在则构造并缓存
// 先读锁快速路径，未命中加写锁构造；构造（含数据库读）在写锁内完成，
// 保证并发首次访问同一根页面时记录只取一次
func (r *SiteResolver) GetSiteByRootPageID(rootPageID uint) (*Site, error) {
	r.sitesMu.RLock()
	site, exists := r.sites[rootPageID]
	r.sitesMu.RUnlock()
	if exists {
		return site, nil
	}

	r.sitesMu.Lock()
	defer r.sitesMu.Unlock()

	// 双重检查
	if site, exists := r.sites[rootPageID]; exists {
		return site, nil
	}

	site, err := r.buildSite(rootPageID)
	if err != nil {
		return nil, err
	}
	r.sites[rootPageID] = site

	r.publish(ws.TypeSiteResolved, map[string]any{"rootPageId": rootPageID, "title": site.GetTitle()})
	log.Printf("[Resolver] 🏠 已解析站点 %d (%s)", rootPageID, site.GetTitle())
	return site, nil
}

// buildSite 取根页面记录并校验站点根标记
// 页面不存在和缺少标记都包装成带页面 uid 的配置无效错误
func (r *SiteResolver) buildSite(rootPageID uint) (*Site, error) {
	page, err := r.pages.GetByUID(rootPageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("%w: page %d does not exist", domainErrors.ErrInvalidSiteConfiguration, rootPageID)
	}
	if !page.IsSiteroot {
		return nil, fmt.Errorf("%w: page %d", domainErrors.ErrInvalidSiteConfiguration, rootPageID)
	}
	return &Site{resolver: r, rootPage: *page}, nil
}

// GetSiteByPageID 返回包含任意页面的站点
// 沿页面的祖先链自内向外找第一个带站点根标记的页面；整条链都没有时
// 按页面自身尝试构造，让调用方拿到带该页面 uid 的配置无效错误
func (r *SiteResolver) GetSiteByPageID(pageID uint) (*Site, error) {
	rootline, err := r.pages.GetRootline(pageID)
	if err != nil {
		return nil, err
	}

	rootPageID := pageID
	for _, page := range rootline {
		if page.IsSiteroot {
			rootPageID = page.UID
			break
		}
	}
	return r.GetSiteByRootPageID(rootPageID)
}

// GetAvailableSites 枚举注册表里配置过搜索连接的全部站点
// 同一根页面只出现一次，顺序按组合键字典序稳定排列；
// stopOnInvalidSite 为 true 时任一站点构造失败立即整体失败，
// 为 false 时跳过无效条目并记录警告。两种模式的结果分别记忆化，
// 首次成功计算后进程内不再重新枚举
func (r *SiteResolver) GetAvailableSites(stopOnInvalidSite bool) ([]*Site, error) {
	r.availableMu.RLock()
	cached, exists := r.availableSites[stopOnInvalidSite]
	r.availableMu.RUnlock()
	if exists {
		return append([]*Site(nil), cached...), nil
	}

	connections, err := r.serverConnections()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(connections))
	for key := range connections {
		keys = append(keys, key)
	}
	sort.Strings(keys) // map 遍历无序，排序保证枚举顺序稳定

	sites := make([]*Site, 0, len(keys))
	seen := make(map[uint]bool)
	for _, key := range keys {
		rootPageID, _, err := entity.ParseConnectionKey(key)
		if err != nil {
			log.Printf("[Resolver] ⚠️ 跳过格式错误的连接键 %q: %v", key, err)
			continue
		}
		if seen[rootPageID] {
			continue
		}
		seen[rootPageID] = true

		site, err := r.GetSiteByRootPageID(rootPageID)
		if err != nil {
			if stopOnInvalidSite {
				return nil, err
			}
			log.Printf("[Resolver] ⚠️ 跳过无效站点 %d: %v", rootPageID, err)
			continue
		}
		sites = append(sites, site)
	}

	r.availableMu.Lock()
	r.availableSites[stopOnInvalidSite] = sites
	r.availableMu.Unlock()

	// 返回副本，调用方追加或重排不影响缓存
	return append([]*Site(nil), sites...), nil
}

// GetFirstAvailableSite 返回可用站点枚举的第一个元素
// 列表为空时返回 ErrNoAvailableSites
func (r *SiteResolver) GetFirstAvailableSite(stopOnInvalidSite bool) (*Site, error) {
	sites, err := r.GetAvailableSites(stopOnInvalidSite)
	if err != nil {
		return nil, err
	}
	if len(sites) == 0 {
		return nil, domainErrors.ErrNoAvailableSites
	}
	return sites[0], nil
}

// SelectorOption 站点下拉选择器的单个选项
type SelectorOption struct {
	Value    uint   `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// SiteSelector 站点下拉选择器（管理界面渲染用）
type SiteSelector struct {
	Name    string           `json:"name"`
	Options []SelectorOption `json:"options"`
}

// GetAvailableSitesSelector 生成站点选择器
// 无效站点跳过不进列表；selected 与选项的根页面 uid 相同时标记选中
func (r *SiteResolver) GetAvailableSitesSelector(name string, selected *Site) (*SiteSelector, error) {
	sites, err := r.GetAvailableSites(false)
	if err != nil {
		return nil, err
	}

	options := make([]SelectorOption, 0, len(sites))
	for _, site := range sites {
		options = append(options, SelectorOption{
			Value:    site.GetRootPageID(),
			Label:    site.GetLabel(),
			Selected: selected != nil && selected.GetRootPageID() == site.GetRootPageID(),
		})
	}
	return &SiteSelector{Name: name, Options: options}, nil
}

// ClearSitePagesCache 清空树遍历缓存，站点缓存不受影响
// 内容编辑发生后调用，下次 GetPages 重新遍历拿到新结构
func (r *SiteResolver) ClearSitePagesCache() {
	r.sitePagesMu.Lock()
	r.sitePages = make(map[string][]uint)
	r.sitePagesMu.Unlock()

	r.publish(ws.TypePagesCacheCleared, nil)
	log.Println("[Resolver] 🧹 页面枚举缓存已清空")
}

// ResetSitesCache 清空站点缓存与可用站点记忆化
// 站点结构或注册表发生变更后调用
func (r *SiteResolver) ResetSitesCache() {
	r.sitesMu.Lock()
	r.sites = make(map[uint]*Site)
	r.sitesMu.Unlock()

	r.availableMu.Lock()
	r.availableSites = make(map[bool][]*Site)
	r.availableMu.Unlock()

	r.publish(ws.TypeSitesCacheReset, nil)
	log.Println("[Resolver] 🧹 站点缓存已重置")
}

// getPages 带记忆化的树遍历入口
// includeStart 为 true 时结果以起点 uid 开头（站点根枚举语义），
// 两种模式的缓存键用不同前缀区分
func (r *SiteResolver) getPages(site *Site, startPageID uint, maxDepth int, includeStart bool) ([]uint, error) {
	mode := "page"
	if includeStart {
		mode = "site"
	}
	cacheKey := fmt.Sprintf("%s:%d:%d", mode, startPageID, maxDepth)

	r.sitePagesMu.RLock()
	cached, exists := r.sitePages[cacheKey]
	r.sitePagesMu.RUnlock()
	if exists {
		return append([]uint(nil), cached...), nil // 返回副本，调用方改不坏缓存
	}

	pageIDs, err := r.walkPages(startPageID, maxDepth, includeStart, site.additionalPageFilter())
	if err != nil {
		return nil, err
	}

	// 并发未命中时可能重复遍历一次，结果相同，后写覆盖无害
	r.sitePagesMu.Lock()
	r.sitePages[cacheKey] = pageIDs
	r.sitePagesMu.Unlock()

	r.publish(ws.TypePagesWalked, map[string]any{
		"rootPageId": site.GetRootPageID(),
		"startPage":  startPageID,
		"maxDepth":   maxDepth,
		"count":      len(pageIDs),
	})
	return append([]uint(nil), pageIDs...), nil
}

// walkPages 迭代式广度优先遍历
// 工作队列放 (页面 uid, 剩余深度)，每下一层深度减一，减到 0 不再展开；
// 软删除页面和被附加过滤子句排除的页面在子页面查询里就被滤掉
func (r *SiteResolver) walkPages(startPageID uint, maxDepth int, includeStart bool, additionalWhere string) ([]uint, error) {
	pageIDs := make([]uint, 0, 16)
	if includeStart {
		pageIDs = append(pageIDs, startPageID)
	}

	type workItem struct {
		pageID         uint
		remainingDepth int
	}
	queue := []workItem{{pageID: startPageID, remainingDepth: maxDepth}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		if item.remainingDepth <= 0 {
			continue
		}

		children, err := r.pages.GetChildPageIDs(item.pageID, additionalWhere)
		if err != nil {
			return nil, err
		}
		for _, childID := range children {
			pageIDs = append(pageIDs, childID)
			queue = append(queue, workItem{pageID: childID, remainingDepth: item.remainingDepth - 1})
		}
	}

	return pageIDs, nil
}

// serverConnections 读取 "search"/"servers" 注册表条目
// 条目缺失按空配置处理，不视为错误
func (r *SiteResolver) serverConnections() (map[string]entity.SearchConnection, error) {
	value, err := r.registry.Get(entity.RegistryNamespaceSearch, entity.RegistryKeyServers)
	if err != nil {
		return nil, err
	}
	if len(value) == 0 {
		return map[string]entity.SearchConnection{}, nil
	}

	var connections map[string]entity.SearchConnection
	if err := json.Unmarshal(value, &connections); err != nil {
		return nil, fmt.Errorf("decode registry entry %s/%s: %w",
			entity.RegistryNamespaceSearch, entity.RegistryKeyServers, err)
	}
	return connections, nil
}

// publish 向事件中心投递解析器事件，hub 为 nil 时直接跳过
func (r *SiteResolver) publish(eventType ws.EventType, payload any) {
	if r.hub == nil {
		return
	}
	r.hub.Publish(ws.NewEvent(eventType, payload))
}
