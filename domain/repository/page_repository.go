package repository

import "sitesearch-go-server/domain/entity"

// PageRepository 页面数据仓库接口
type PageRepository interface {
	// GetByUID 根据 uid 获取页面（软删除的页面视为不存在）
	// 返回 nil 表示页面不存在，调用方需处理
	GetByUID(uid uint) (*entity.Page, error)

	// GetRootline 返回从页面自身向上直到顶层（pid = 0）的祖先链
	// 顺序为自身在前、顶层在后；页面不存在时返回空链
	GetRootline(uid uint) ([]entity.Page, error)

	// GetChildPageIDs 返回 parentID 下未软删除子页面的 uid，按 sorting 升序
	// additionalWhere 是站点配置提供的附加 SQL 过滤子句，可为空
	GetChildPageIDs(parentID uint, additionalWhere string) ([]uint, error)
}
