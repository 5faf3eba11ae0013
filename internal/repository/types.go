package repository

import "time"

// PromoCodeListFilter 查询促销码列表的过滤条件
type PromoCodeListFilter struct {
	Page        int
	PageSize    int
	GamespaceID uint
	Code        string
	ExpiresFrom *time.Time
	ExpiresTo   *time.Time
	OnlyUsable  bool
}

// PromoUsageListFilter 查询促销码使用记录列表的过滤条件
type PromoUsageListFilter struct {
	Page        int
	PageSize    int
	GamespaceID uint
	CodeID      uint
	AccountID   string
}

// ContentItemListFilter 查询内容项列表的过滤条件
type ContentItemListFilter struct {
	Page        int
	PageSize    int
	GamespaceID uint
	Search      string
}
