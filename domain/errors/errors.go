package errors

import "errors"

// ================= 业务领域错误定义 =================
// 所有业务逻辑相关的错误统一在此定义，避免跨包重复定义

// ErrInvalidSiteConfiguration 站点配置无效错误
// 用来构造 Site 的页面缺少站点根标记（或根本不存在）时返回此错误，
// 包装方需附带出错的页面 uid 便于排查
var ErrInvalidSiteConfiguration = errors.New("invalid site configuration: page is not marked as site root")

// ErrNoAvailableSites 可用站点列表为空错误
// 注册表里没有任何站点配置过搜索连接时返回此错误
var ErrNoAvailableSites = errors.New("no sites are configured in the server registry")
