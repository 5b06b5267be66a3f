package usecase

import (
	"sitesearch-go-server/domain/entity"

	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

// ========== MockPageRepository ==========
// 实现 repository.PageRepository 接口，用于站点解析的单元测试

type MockPageRepository struct {
	mock.Mock
}

func (m *MockPageRepository) GetByUID(uid uint) (*entity.Page, error) {
	args := m.Called(uid)
	// 处理 nil 情况
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page), args.Error(1)
}

func (m *MockPageRepository) GetRootline(uid uint) ([]entity.Page, error) {
	args := m.Called(uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Page), args.Error(1)
}

func (m *MockPageRepository) GetChildPageIDs(parentID uint, additionalWhere string) ([]uint, error) {
	args := m.Called(parentID, additionalWhere)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// ========== MockRegistryRepository ==========

type MockRegistryRepository struct {
	mock.Mock
}

func (m *MockRegistryRepository) Get(namespace, key string) (datatypes.JSON, error) {
	args := m.Called(namespace, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(datatypes.JSON), args.Error(1)
}

func (m *MockRegistryRepository) Set(namespace, key string, value datatypes.JSON) error {
	args := m.Called(namespace, key, value)
	return args.Error(0)
}

// ========== MockDomainRepository ==========

type MockDomainRepository struct {
	mock.Mock
}

func (m *MockDomainRepository) GetFirstDomainForPage(pageUID uint) (string, error) {
	args := m.Called(pageUID)
	return args.String(0), args.Error(1)
}

// ========== MockSiteConfigRepository ==========

type MockSiteConfigRepository struct {
	mock.Mock
}

func (m *MockSiteConfigRepository) GetByRootPageID(rootPageID uint) (*entity.SiteConfig, error) {
	args := m.Called(rootPageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SiteConfig), args.Error(1)
}

func (m *MockSiteConfigRepository) Save(config *entity.SiteConfig) error {
	args := m.Called(config)
	return args.Error(0)
}

// ========== MockConfigurationSource ==========

type MockConfigurationSource struct {
	mock.Mock
}

func (m *MockConfigurationSource) GetConfigurationFromPageID(rootPageID uint) (*Configuration, error) {
	args := m.Called(rootPageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Configuration), args.Error(1)
}

// ========== MockFrontendInitializer ==========

type MockFrontendInitializer struct {
	mock.Mock
}

func (m *MockFrontendInitializer) InitializeFrontend(rootPageID uint) (*FrontendContext, error) {
	args := m.Called(rootPageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FrontendContext), args.Error(1)
}

// ========== 共享测试装配 ==========

// testDeps 一组全新的 mock 依赖，按需设置期望
type testDeps struct {
	pages    *MockPageRepository
	registry *MockRegistryRepository
	domains  *MockDomainRepository
	config   *MockConfigurationSource
	frontend *MockFrontendInitializer
}

// newTestResolver 用 mock 依赖构造解析器，hub 留空（不推事件）
func newTestResolver() (*SiteResolver, *testDeps) {
	deps := &testDeps{
		pages:    new(MockPageRepository),
		registry: new(MockRegistryRepository),
		domains:  new(MockDomainRepository),
		config:   new(MockConfigurationSource),
		frontend: new(MockFrontendInitializer),
	}
	resolver := NewSiteResolver(ResolverDeps{
		Pages:         deps.pages,
		Registry:      deps.registry,
		Domains:       deps.domains,
		Config:        deps.config,
		Frontend:      deps.frontend,
		EncryptionKey: "test-encryption-key",
	})
	return resolver, deps
}
