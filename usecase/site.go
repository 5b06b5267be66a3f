package usecase

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"sitesearch-go-server/domain/entity"
	"sitesearch-go-server/internal/sitehash"
)

// ========== Site：一棵内容树分支的站点视图 ==========
// Site 持有根页面记录（构造后不变），其余元数据在访问时经解析器的
// 协作者查出来；树遍历等进程级缓存统一挂在 SiteResolver 上，
// Site 自己只缓存 sys_language_mode 的惰性解析结果

// Site 代表以某个站点根页面为顶的内容树分支
type Site struct {
	resolver *SiteResolver
	rootPage entity.Page

	// sys_language_mode 惰性解析缓存
	// resolved 标志显式区分"未解析"与"解析结果为空串"两种状态
	langModeMu       sync.Mutex
	langMode         string
	langModeResolved bool
}

// GetRootPageID 站点根页面 uid
func (s *Site) GetRootPageID() uint {
	return s.rootPage.UID
}

// GetTitle 根页面标题
func (s *Site) GetTitle() string {
	return s.rootPage.Title
}

// GetRootPage 返回根页面记录的副本，调用方修改副本不影响 Site 内部状态
func (s *Site) GetRootPage() entity.Page {
	return s.rootPage
}

// GetLabel 生成人类可读的站点标签
// 取根页面的祖先链，去掉顶层系统页面后反转为自外向内的标题序列，
// 用 " - " 连接，最后追加 ", Root Page ID: <uid>"；
// 根页面直接挂在顶层时只返回后缀部分
func (s *Site) GetLabel() string {
	suffix := fmt.Sprintf(", Root Page ID: %d", s.rootPage.UID)

	rootline, err := s.resolver.pages.GetRootline(s.rootPage.UID)
	if err != nil {
		log.Printf("[Site] ⚠️ 获取页面 %d 的祖先链失败: %v", s.rootPage.UID, err)
		return suffix
	}
	if len(rootline) > 0 {
		rootline = rootline[:len(rootline)-1] // 去掉顶层系统页面
	}

	titles := make([]string, 0, len(rootline))
	for i := len(rootline) - 1; i >= 0; i-- {
		titles = append(titles, rootline[i].Title)
	}
	return strings.Join(titles, " - ") + suffix
}

// GetSearchConfiguration 站点生效的搜索配置（默认值与站点文档合并后）
func (s *Site) GetSearchConfiguration() (*Configuration, error) {
	return s.resolver.config.GetConfigurationFromPageID(s.rootPage.UID)
}

// GetLanguages 返回注册表中为本站点配置过搜索连接的语言 uid，去重、升序
// 注册表没有条目时返回空切片；格式错误的组合键跳过并记录警告
func (s *Site) GetLanguages() ([]int, error) {
	connections, err := s.resolver.serverConnections()
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	languages := make([]int, 0, len(connections))
	for key := range connections {
		rootPageID, languageID, err := entity.ParseConnectionKey(key)
		if err != nil {
			log.Printf("[Site] ⚠️ 跳过格式错误的连接键 %q: %v", key, err)
			continue
		}
		if rootPageID != s.rootPage.UID || seen[languageID] {
			continue
		}
		seen[languageID] = true
		languages = append(languages, languageID)
	}

	sort.Ints(languages) // map 遍历无序，排序保证结果稳定
	return languages, nil
}

// GetDefaultLanguage 站点默认语言 uid
// 优先级：config.defaultGetVars.L（URL 级覆盖）> config.sys_language_uid > 0
func (s *Site) GetDefaultLanguage() int {
	cfg, err := s.GetSearchConfiguration()
	if err != nil {
		log.Printf("[Site] ⚠️ 读取站点 %d 配置失败，默认语言按 0 处理: %v", s.rootPage.UID, err)
		return 0
	}
	language := cfg.IntValueByPathOrDefault("config.sys_language_uid", 0)
	return cfg.IntValueByPathOrDefault("config.defaultGetVars.L", language)
}

// GetPages 枚举根页面以下 maxDepth 层内所有未软删除页面的 uid
// 根页面自身恰好出现一次（首位），其余按层级自上而下发出；
// maxDepth <= 0 时只含根页面。结果在解析器上做进程级缓存
func (s *Site) GetPages(maxDepth int) ([]uint, error) {
	return s.resolver.getPages(s, s.rootPage.UID, maxDepth, true)
}

// GetSubtreePages 枚举任意页面以下 maxDepth 层内的页面 uid，不含起点自身
// maxDepth <= 0 时返回空切片
func (s *Site) GetSubtreePages(pageID uint, maxDepth int) ([]uint, error) {
	return s.resolver.getPages(s, pageID, maxDepth, false)
}

// GetDomain 站点主域名
// 沿根页面的祖先链自内向外找第一条域名绑定，整条链都没有时返回空串
func (s *Site) GetDomain() string {
	rootline, err := s.resolver.pages.GetRootline(s.rootPage.UID)
	if err != nil {
		log.Printf("[Site] ⚠️ 获取页面 %d 的祖先链失败: %v", s.rootPage.UID, err)
		return ""
	}

	for _, page := range rootline {
		domain, err := s.resolver.domains.GetFirstDomainForPage(page.UID)
		if err != nil {
			log.Printf("[Site] ⚠️ 查询页面 %d 的域名绑定失败: %v", page.UID, err)
			return ""
		}
		if domain != "" {
			return domain
		}
	}
	return ""
}

// GetSiteHash 站点指纹，对 (主域名, 进程级加密密钥) 确定性计算
func (s *Site) GetSiteHash() string {
	return sitehash.Hash(s.GetDomain(), s.resolver.encryptionKey)
}

// GetSysLanguageMode 站点级语言处理模式
// 首次访问时初始化一份前端上下文并缓存结果；初始化失败不缓存，下次访问重试
func (s *Site) GetSysLanguageMode() (string, error) {
	s.langModeMu.Lock()
	defer s.langModeMu.Unlock()

	if s.langModeResolved {
		return s.langMode, nil
	}

	frontendCtx, err := s.resolver.frontend.InitializeFrontend(s.rootPage.UID)
	if err != nil {
		return "", err
	}

	s.langMode = frontendCtx.SysLanguageMode
	s.langModeResolved = true
	return s.langMode, nil
}

// additionalPageFilter 站点配置提供的附加页面过滤子句
// 配置读取失败时按不过滤处理，树遍历不因配置故障整体失败
func (s *Site) additionalPageFilter() string {
	cfg, err := s.GetSearchConfiguration()
	if err != nil {
		log.Printf("[Site] ⚠️ 读取站点 %d 配置失败，页面枚举不附加过滤: %v", s.rootPage.UID, err)
		return ""
	}
	return cfg.StringValueByPathOrDefault("index.pages.additionalWhereClause", "")
}
