package usecase

// ========== 前端上下文 ==========
// 模拟一次以站点根页面为入口的前端请求初始化，
// 站点级语言处理模式只有走完这次初始化才能拿到

// FrontendContext 初始化完成的前端上下文
type FrontendContext struct {
	RootPageID      uint
	SysLanguageMode string
}

// FrontendInitializer 初始化前端上下文的入口，便于测试替换
type FrontendInitializer interface {
	// InitializeFrontend 为根页面构建前端上下文
	InitializeFrontend(rootPageID uint) (*FrontendContext, error)
}

// frontendBootstrapper 基于配置解析器的默认实现
type frontendBootstrapper struct {
	config ConfigurationSource
}

// NewFrontendBootstrapper 构造函数，依赖注入
func NewFrontendBootstrapper(config ConfigurationSource) FrontendInitializer {
	return &frontendBootstrapper{config: config}
}

// InitializeFrontend 读取 config.sys_language_mode 填充上下文
// 站点没配置该键时模式为空串，这是合法状态
func (b *frontendBootstrapper) InitializeFrontend(rootPageID uint) (*FrontendContext, error) {
	cfg, err := b.config.GetConfigurationFromPageID(rootPageID)
	if err != nil {
		return nil, err
	}
	return &FrontendContext{
		RootPageID:      rootPageID,
		SysLanguageMode: cfg.StringValueByPathOrDefault("config.sys_language_mode", ""),
	}, nil
}
