package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleZhCN = "zh-CN"
	LocaleEnUS = "en-US"

	defaultLocale = LocaleEnUS
)

// messages 错误键 → 本地化文案
var messages = map[string]map[string]string{
	LocaleEnUS: {
		"error.bad_request":            "invalid request",
		"error.unauthorized":           "unauthorized",
		"error.forbidden":              "forbidden",
		"error.internal":               "internal error",
		"error.jwt_secret_missing":     "jwt secret is not configured",
		"error.auth_header_missing":    "authorization header is missing",
		"error.auth_header_invalid":    "authorization header is invalid",
		"error.token_invalid":          "token is invalid",
		"error.internal_token_invalid": "internal token is invalid",
		"error.gamespace_invalid":      "invalid gamespace",
		"error.account_invalid":        "invalid account",
		"error.promo_key_invalid":      "promo code is not valid (should be XXXX-XXXX-XXXX)",
		"error.promo_contents_invalid": "promo contents is not an item/amount mapping",
		"error.promo_exists":           "promo code already exists",
		"error.promo_not_found":        "no such promo code",
		"error.promo_exhausted":        "promo code is exhausted or expired",
		"error.promo_already_used":     "promo code already used by this account",
		"error.promo_create_failed":    "failed to create promo code",
		"error.promo_update_failed":    "failed to update promo code",
		"error.promo_delete_failed":    "failed to delete promo code",
		"error.promo_fetch_failed":     "failed to fetch promo code",
		"error.promo_redeem_failed":    "failed to redeem promo code",
		"error.promo_generate_failed":  "failed to generate promo codes",
		"error.content_exists":         "content item already exists",
		"error.content_not_found":      "no such content item",
		"error.content_create_failed":  "failed to create content item",
		"error.content_update_failed":  "failed to update content item",
		"error.content_delete_failed":  "failed to delete content item",
		"error.content_fetch_failed":   "failed to fetch content items",
		"error.rate_limited":           "too many requests, retry in %d seconds",
		"error.rate_limit_unavailable": "rate limiter unavailable",
	},
	LocaleZhCN: {
		"error.bad_request":            "请求参数错误",
		"error.unauthorized":           "未授权",
		"error.forbidden":              "无权访问",
		"error.internal":               "服务内部错误",
		"error.jwt_secret_missing":     "未配置 JWT 密钥",
		"error.auth_header_missing":    "缺少认证头",
		"error.auth_header_invalid":    "认证头格式错误",
		"error.token_invalid":          "token 无效",
		"error.internal_token_invalid": "内部令牌无效",
		"error.gamespace_invalid":      "租户标识无效",
		"error.account_invalid":        "账号标识无效",
		"error.promo_key_invalid":      "促销码格式错误（应为 XXXX-XXXX-XXXX）",
		"error.promo_contents_invalid": "促销码内容不是物品/数量映射",
		"error.promo_exists":           "促销码已存在",
		"error.promo_not_found":        "促销码不存在",
		"error.promo_exhausted":        "促销码已用尽或已过期",
		"error.promo_already_used":     "该账号已使用过此促销码",
		"error.promo_create_failed":    "创建促销码失败",
		"error.promo_update_failed":    "更新促销码失败",
		"error.promo_delete_failed":    "删除促销码失败",
		"error.promo_fetch_failed":     "查询促销码失败",
		"error.promo_redeem_failed":    "兑换促销码失败",
		"error.promo_generate_failed":  "批量生成促销码失败",
		"error.content_exists":         "内容项已存在",
		"error.content_not_found":      "内容项不存在",
		"error.content_create_failed":  "创建内容项失败",
		"error.content_update_failed":  "更新内容项失败",
		"error.content_delete_failed":  "删除内容项失败",
		"error.content_fetch_failed":   "查询内容项失败",
		"error.rate_limited":           "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable": "限流服务不可用",
	},
}

// ResolveLocale 从请求头解析语言，默认 en-US
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return defaultLocale
	}
	accept := strings.TrimSpace(c.GetHeader("Accept-Language"))
	if accept == "" {
		return defaultLocale
	}
	lowered := strings.ToLower(accept)
	if strings.HasPrefix(lowered, "zh") {
		return LocaleZhCN
	}
	return defaultLocale
}

// T 按语言翻译错误键；未命中时回退默认语言，再回退键本身
func T(locale, key string) string {
	if catalog, ok := messages[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[defaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带占位符的错误键
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
