package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// 促销码领域错误
var (
	ErrPromoKeyInvalid      = errors.New("promo code format invalid")
	ErrPromoContentsInvalid = errors.New("promo contents invalid")
	ErrPromoCountInvalid    = errors.New("promo codes count invalid")
	ErrPromoExists          = errors.New("promo code already exists")
	ErrPromoNotFound        = errors.New("promo code not found")
	ErrPromoExhausted       = errors.New("promo code exhausted or expired")
	ErrPromoAlreadyUsed     = errors.New("promo code already used by account")
	ErrPromoStorage         = errors.New("promo storage failure")
	ErrAccountInvalid       = errors.New("account invalid")
)

// 内容项领域错误
var (
	ErrContentInvalid  = errors.New("content item invalid")
	ErrContentExists   = errors.New("content item already exists")
	ErrContentNotFound = errors.New("content item not found")
)

// storageError 包装底层持久化错误，保留诊断信息
func storageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPromoStorage, err)
}

// isDuplicateKeyError 识别唯一约束冲突，兼容未启用 TranslateError 的连接
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed")
}
