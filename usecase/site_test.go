package usecase

import (
	"errors"
	"testing"

	"sitesearch-go-server/domain/entity"
	"sitesearch-go-server/internal/sitehash"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

// ========== Site 单元测试 ==========
// 测试站点元数据的按需解析：标签、域名、语言、指纹

// TestSite_GetLabel 测试站点标签生成
func TestSite_GetLabel(t *testing.T) {
	testCases := []struct {
		name        string
		rootline    []entity.Page
		rootlineErr error
		want        string
	}{
		{
			name: "Nested Site - Ancestor Titles Outside In",
			rootline: []entity.Page{
				{UID: 17, PID: 5, Title: "Acme Portal"},
				{UID: 5, PID: 1, Title: "Customers"},
				{UID: 1, PID: 0, Title: "System Folder"},
			},
			want: "Customers - Acme Portal, Root Page ID: 17",
		},
		{
			name: "Site Directly Under Top Page",
			rootline: []entity.Page{
				{UID: 17, PID: 1, Title: "Acme Portal"},
				{UID: 1, PID: 0, Title: "System Folder"},
			},
			want: "Acme Portal, Root Page ID: 17",
		},
		{
			name:     "Rootline Contains Only The Site Itself",
			rootline: []entity.Page{{UID: 17, PID: 0, Title: "Acme Portal"}},
			want:     ", Root Page ID: 17",
		},
		{
			name:        "Rootline Lookup Fails - Suffix Only",
			rootlineErr: errors.New("db down"),
			want:        ", Root Page ID: 17",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolver, deps := newTestResolver()
			deps.pages.On("GetByUID", uint(17)).
				Return(&entity.Page{UID: 17, PID: 5, Title: "Acme Portal", IsSiteroot: true}, nil)
			if tc.rootlineErr != nil {
				deps.pages.On("GetRootline", uint(17)).Return(nil, tc.rootlineErr)
			} else {
				deps.pages.On("GetRootline", uint(17)).Return(tc.rootline, nil)
			}

			site, err := resolver.GetSiteByRootPageID(17)
			assert.NoError(t, err)

			assert.Equal(t, tc.want, site.GetLabel())
		})
	}
}

// TestSite_GetRootPage_ReturnsCopy 测试根页面记录按值返回
func TestSite_GetRootPage_ReturnsCopy(t *testing.T) {
	resolver, deps := newTestResolver()
	deps.pages.On("GetByUID", uint(17)).
		Return(&entity.Page{UID: 17, PID: 1, Title: "Acme Portal", IsSiteroot: true}, nil)

	site, err := resolver.GetSiteByRootPageID(17)
	assert.NoError(t, err)

	page := site.GetRootPage()
	page.Title = "Mutated"

	// 修改副本不影响站点内部状态
	assert.Equal(t, "Acme Portal", site.GetTitle())
}

// TestSite_GetDomain 测试域名绑定查找
// 自内向外沿祖先链找第一条绑定
func TestSite_GetDomain(t *testing.T) {
	t.Run("Binding On The Root Page Itself", func(t *testing.T) {
		resolver, deps := newTestResolver()
		deps.pages.On("GetByUID", uint(17)).
			Return(&entity.Page{UID: 17, PID: 5, Title: "Acme Portal", IsSiteroot: true}, nil)
		deps.pages.On("GetRootline", uint(17)).Return([]entity.Page{
			{UID: 17, PID: 5, Title: "Acme Portal"},
			{UID: 5, PID: 0, Title: "Customers"},
		}, nil)
		deps.domains.On("GetFirstDomainForPage", uint(17)).Return("www.acme.example", nil)

		site, err := resolver.GetSiteByRootPageID(17)
		assert.NoError(t, err)

		assert.Equal(t, "www.acme.example", site.GetDomain())
		// 内层命中后不再向外查
		deps.domains.AssertNotCalled(t, "GetFirstDomainForPage", uint(5))
	})

	t.Run("Binding On An Ancestor Page", func(t *testing.T) {
		resolver, deps := newTestResolver()
		deps.pages.On("GetByUID", uint(17)).
			Return(&entity.Page{UID: 17, PID: 5, Title: "Acme Portal", IsSiteroot: true}, nil)
		deps.pages.On("GetRootline", uint(17)).Return([]entity.Page{
			{UID: 17, PID: 5, Title: "Acme Portal"},
			{UID: 5, PID: 0, Title: "Customers"},
		}, nil)
		deps.domains.On("GetFirstDomainForPage", uint(17)).Return("", nil)
		deps.domains.On("GetFirstDomainForPage", uint(5)).Return("legacy.example", nil)

		site, err := resolver.GetSiteByRootPageID(17)
		assert.NoError(t, err)

		assert.Equal(t, "legacy.example", site.GetDomain())
	})

	t.Run("No Binding Anywhere", func(t *testing.T) {
		resolver, deps := newTestResolver()
		deps.pages.On("GetByUID", uint(17)).
			Return(&entity.Page{UID: 17, PID: 0, Title: "Acme Portal", IsSiteroot: true}, nil)
		deps.pages.On("GetRootline", uint(17)).
			Return([]entity.Page{{UID: 17, PID: 0, Title: "Acme Portal"}}, nil)
		deps.domains.On("GetFirstDomainForPage", uint(17)).Return("", nil)

		site, err := resolver.GetSiteByRootPageID(17)
		assert.NoError(t, err)

		assert.Equal(t, "", site.GetDomain())
	})

	t.Run("Domain Lookup Fails - Empty Result", func(t *testing.T) {
		resolver, deps := newTestResolver()
		deps.pages.On("GetByUID", uint(17)).
			Return(&entity.Page{UID: 17, PID: 0, Title: "Acme Portal", IsSiteroot: true}, nil)
		deps.pages.On("GetRootline", uint(17)).
			Return([]entity.Page{{UID: 17, PID: 0, Title: "Acme Portal"}}, nil)
		deps.domains.On("GetFirstDomainForPage", uint(17)).
			Return("", errors.New("db down"))

		site, err := resolver.GetSiteByRootPageID(17)
		assert.NoError(t, err)

		assert.Equal(t, "", site.GetDomain())
	})
}

// TestSite_GetSiteHash 测试站点指纹
// 指纹对 (域名, 密钥) 确定性计算，域名不同指纹不同
func TestSite_GetSiteHash(t *testing.T) {
	newSiteWithDomain := func(domain string) *Site {
		resolver, deps := newTestResolver()
		deps.pages.On("GetByUID", uint(17)).
			Return(&entity.Page{UID: 17, PID: 0, Title: "Acme Portal", IsSiteroot: true}, nil)
		deps.pages.On("GetRootline", uint(17)).
			Return([]entity.Page{{UID: 17, PID: 0, Title: "Acme Portal"}}, nil)
		deps.domains.On("GetFirstDomainForPage", uint(17)).Return(domain, nil)

		site, err := resolver.GetSiteByRootPageID(17)
		assert.NoError(t, err)
		return site
	}

	site := newSiteWithDomain("www.acme.example")
	hash := site.GetSiteHash()

	assert.Len(t, hash, 32)
	assert.Equal(t, sitehash.Hash("www.acme.example", "test-encryption-key"), hash)
	// 同一站点重复计算结果稳定
	assert.Equal(t, hash, site.GetSiteHash())

	// 域名不同时指纹不同
	other := newSiteWithDomain("docs.acme.example")
	assert.NotEqual(t, hash, other.GetSiteHash())
}

// TestSite_GetLanguages 测试站点语言枚举
func TestSite_GetLanguages(t *testing.T) {
	resolver, deps := newTestResolver()
	deps.pages.On("GetByUID", uint(17)).
		Return(&entity.Page{UID: 17, PID: 1, Title: "Acme Portal", IsSiteroot: true}, nil)

	// 17 号站点配置了语言 1 和 0，42 号站点和坏键都要被过滤掉
	servers := datatypes.JSON(`{
		"17|1": {"core": "acme_de"},
		"17|0": {"core": "acme_en"},
		"42|0": {"core": "docs_en"},
		"junk": {"core": "junk"}
	}`)
	deps.registry.On("Get", entity.RegistryNamespaceSearch, entity.RegistryKeyServers).
		Return(servers, nil)

	site, err := resolver.GetSiteByRootPageID(17)
	assert.NoError(t, err)

	languages, err := site.GetLanguages()

	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1}, languages)
}

// TestSite_GetLanguages_EmptyRegistry 测试注册表无条目
func TestSite_GetLanguages_EmptyRegistry(t *testing.T) {
	resolver, deps := newTestResolver()
	deps.pages.On("GetByUID", uint(17)).
		Return(&entity.Page{UID: 17, PID: 1, Title: "Acme Portal", IsSiteroot: true}, nil)
	deps.registry.On("Get", entity.RegistryNamespaceSearch, entity.RegistryKeyServers).
		Return(nil, nil)

	site, err := resolver.GetSiteByRootPageID(17)
	assert.NoError(t, err)

	languages, err := site.GetLanguages()

	assert.NoError(t, err)
	assert.Empty(t, languages)
}

// TestSite_GetLanguages_RegistryError 测试注册表读取失败时错误上抛
func TestSite_GetLanguages_RegistryError(t *testing.T) {
	resolver, deps := newTestResolver()
	deps.pages.On("GetByUID", uint(17)).
		Return(&entity.Page{UID: 17, PID: 1, Title: "Acme Portal", IsSiteroot: true}, nil)
	deps.registry.On("Get", entity.RegistryNamespaceSearch, entity.RegistryKeyServers).
		Return(nil, errors.New("db down"))

	site, err := resolver.GetSiteByRootPageID(17)
	assert.NoError(t, err)

	languages, err := site.GetLanguages()

	assert.Error(t, err)
	assert.Nil(t, languages)
}

// TestSite_GetDefaultLanguage 测试默认语言取值优先级
// config.defaultGetVars.L > config.sys_language_uid > 0
func TestSite_GetDefaultLanguage(t *testing.T) {
	testCases := []struct {
		name      string
		data      map[string]any
		configErr error
		want      int
	}{
		{
			name: "No Configuration Values - Zero",
			data: map[string]any{},
			want: 0,
		},
		{
			name: "Site Default Language Only",
			data: map[string]any{
				"config": map[string]any{"sys_language_uid": 2},
			},
			want: 2,
		},
		{
			name: "URL Level Override Wins",
			data: map[string]any{
				"config": map[string]any{
					"sys_language_uid": 2,
					"defaultGetVars":   map[string]any{"L": 3},
				},
			},
			want: 3,
		},
		{
			name: "String Override Coerced",
			data: map[string]any{
				"config": map[string]any{
					"defaultGetVars": map[string]any{"L": "4"},
				},
			},
			want: 4,
		},
		{
			name:      "Configuration Lookup Fails - Zero",
			configErr: errors.New("db down"),
			want:      0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolver, deps := newTestResolver()
			deps.pages.On("GetByUID", uint(17)).
				Return(&entity.Page{UID: 17, PID: 1, Title: "Acme Portal", IsSiteroot: true}, nil)
			if tc.configErr != nil {
				deps.config.On("GetConfigurationFromPageID", uint(17)).Return(nil, tc.configErr)
			} else {
				deps.config.On("GetConfigurationFromPageID", uint(17)).
					Return(NewConfiguration(17, tc.data), nil)
			}

			site, err := resolver.GetSiteByRootPageID(17)
			assert.NoError(t, err)

			assert.Equal(t, tc.want, site.GetDefaultLanguage())
		})
	}
}

// TestSite_GetSysLanguageMode_Cached 测试语言模式惰性解析与缓存
func TestSite_GetSysLanguageMode_Cached(t *testing.T) {
	resolver, deps := newTestResolver()
	deps.pages.On("GetByUID", uint(17)).
		Return(&entity.Page{UID: 17, PID: 1, Title: "Acme Portal", IsSiteroot: true}, nil)
	deps.frontend.On("InitializeFrontend", uint(17)).
		Return(&FrontendContext{RootPageID: 17, SysLanguageMode: "content_fallback"}, nil).Once()

	site, err := resolver.GetSiteByRootPageID(17)
	assert.NoError(t, err)

	mode, err := site.GetSysLanguageMode()
	assert.NoError(t, err)
	assert.Equal(t, "content_fallback", mode)

	// 第二次读缓存，前端上下文只初始化一次
	mode, err = site.GetSysLanguageMode()
	assert.NoError(t, err)
	assert.Equal(t, "content_fallback", mode)
	deps.frontend.AssertNumberOfCalls(t, "InitializeFrontend", 1)
}

// TestSite_GetSysLanguageMode_ErrorNotCached 测试初始化失败不缓存
func TestSite_GetSysLanguageMode_ErrorNotCached(t *testing.T) {
	resolver, deps := newTestResolver()
	deps.pages.On("GetByUID", uint(17)).
		Return(&entity.Page{UID: 17, PID: 1, Title: "Acme Portal", IsSiteroot: true}, nil)
	deps.frontend.On("InitializeFrontend", uint(17)).
		Return(nil, errors.New("frontend bootstrap failed")).Once()
	deps.frontend.On("InitializeFrontend", uint(17)).
		Return(&FrontendContext{RootPageID: 17, SysLanguageMode: "strict"}, nil).Once()

	site, err := resolver.GetSiteByRootPageID(17)
	assert.NoError(t, err)

	// 首次失败，错误上抛
	_, err = site.GetSysLanguageMode()
	assert.Error(t, err)

	// 重试成功并缓存
	mode, err := site.GetSysLanguageMode()
	assert.NoError(t, err)
	assert.Equal(t, "strict", mode)

	mode, err = site.GetSysLanguageMode()
	assert.NoError(t, err)
	assert.Equal(t, "strict", mode)
	deps.frontend.AssertNumberOfCalls(t, "InitializeFrontend", 2)
}

// TestSite_EmptyModeIsCached 测试空串模式也算解析完成
// resolved 标志区分"未解析"与"解析结果为空"，空串不触发重复初始化
func TestSite_EmptyModeIsCached(t *testing.T) {
	resolver, deps := newTestResolver()
	deps.pages.On("GetByUID", uint(17)).
		Return(&entity.Page{UID: 17, PID: 1, Title: "Acme Portal", IsSiteroot: true}, nil)
	deps.frontend.On("InitializeFrontend", uint(17)).
		Return(&FrontendContext{RootPageID: 17, SysLanguageMode: ""}, nil).Once()

	site, err := resolver.GetSiteByRootPageID(17)
	assert.NoError(t, err)

	mode, err := site.GetSysLanguageMode()
	assert.NoError(t, err)
	assert.Equal(t, "", mode)

	mode, err = site.GetSysLanguageMode()
	assert.NoError(t, err)
	assert.Equal(t, "", mode)
	deps.frontend.AssertNumberOfCalls(t, "InitializeFrontend", 1)
}
