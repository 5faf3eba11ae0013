package service

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/promo-next/internal/constants"
)

// promoKeyPattern 促销码格式；输入校验接受完整大写字母数字，生成字母表更窄
var promoKeyPattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// GeneratePromoKey 基于显式随机源生成 XXXX-XXXX-XXXX 格式促销码
func GeneratePromoKey(r *rand.Rand) string {
	parts := make([]string, 0, constants.PromoKeyGroups)
	buf := make([]byte, constants.PromoKeyGroupLen)
	for g := 0; g < constants.PromoKeyGroups; g++ {
		for i := range buf {
			buf[i] = constants.PromoKeyAlphabet[r.Intn(len(constants.PromoKeyAlphabet))]
		}
		parts = append(parts, string(buf))
	}
	return strings.Join(parts, "-")
}

// NormalizePromoKey 去除首尾空白并统一为大写
func NormalizePromoKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// ValidatePromoKeyFormat 校验促销码格式
func ValidatePromoKeyFormat(key string) bool {
	return promoKeyPattern.MatchString(key)
}
