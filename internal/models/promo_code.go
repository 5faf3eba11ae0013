package models

import (
	"time"
)

// PromoCode 促销码
type PromoCode struct {
	ID            uint          `gorm:"primarykey" json:"id"`                                                          // 主键
	GamespaceID   uint          `gorm:"uniqueIndex:idx_promo_codes_space_code;not null" json:"gamespace_id"`          // 租户标识
	Code          string        `gorm:"type:varchar(32);uniqueIndex:idx_promo_codes_space_code;not null" json:"code"` // 促销码（XXXX-XXXX-XXXX）
	Contents      ContentBundle `gorm:"type:text;not null" json:"contents"`                                           // 内容映射（内容项ID → 数量）
	RemainingUses int64         `gorm:"not null;default:0" json:"remaining_uses"`                                     // 剩余可用次数
	ExpiresAt     time.Time     `gorm:"index;not null" json:"expires_at"`                                             // 过期时间
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`                                                      // 创建时间
	UpdatedAt     time.Time     `gorm:"index" json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (PromoCode) TableName() string {
	return "promo_codes"
}

// Redeemable 判断当前时间点是否可兑换
func (p *PromoCode) Redeemable(now time.Time) bool {
	return p.RemainingUses > 0 && p.ExpiresAt.After(now)
}
