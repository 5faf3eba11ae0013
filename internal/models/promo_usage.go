package models

import (
	"time"
)

// PromoUsage 促销码使用记录（仅插入；随促销码删除级联清理）
type PromoUsage struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                                  // 主键
	GamespaceID uint      `gorm:"uniqueIndex:idx_promo_usages_code_account;not null" json:"gamespace_id"`                // 租户标识
	CodeID      uint      `gorm:"uniqueIndex:idx_promo_usages_code_account;index;not null" json:"code_id"`               // 促销码ID
	AccountID   string    `gorm:"type:varchar(64);uniqueIndex:idx_promo_usages_code_account;not null" json:"account_id"` // 兑换账号
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                                               // 兑换时间
}

// TableName 指定表名
func (PromoUsage) TableName() string {
	return "promo_usages"
}
