package constants

// 促销码生成常量
const (
	// PromoKeyAlphabet 生成字母表，排除易混淆的 I / O
	PromoKeyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ0123456789"
	// PromoKeyGroupLen 每组字符数
	PromoKeyGroupLen = 4
	// PromoKeyGroups 分组数量（XXXX-XXXX-XXXX）
	PromoKeyGroups = 3
)

// 授权作用域常量
const (
	ScopePromo      = "promo"
	ScopePromoAdmin = "promo_admin"
)

// 请求上下文键常量
const (
	ContextKeyGamespaceID = "gamespace_id"
	ContextKeyAccountID   = "account_id"
	ContextKeyRequestID   = "request_id"
)

// 缓存键常量
const (
	CacheKeyContentCatalogPrefix = "content_catalog"
)

// 请求头常量
const (
	HeaderInternalToken = "X-Internal-Token"
	HeaderRequestID     = "X-Request-ID"
)

// 批量生成默认上限（internal 接口单次请求）
const (
	DefaultMaxCodesPerBatch = 1000
)
