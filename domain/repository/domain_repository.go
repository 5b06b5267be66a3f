package repository

// DomainRepository 域名绑定仓库接口
type DomainRepository interface {
	// GetFirstDomainForPage 返回绑定在页面上的第一条未隐藏域名（按 sorting 升序）
	// 返回空字符串表示该页面没有任何绑定
	GetFirstDomainForPage(pageUID uint) (string, error)
}
