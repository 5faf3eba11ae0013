package models

import (
	"time"
)

// ContentItem 可发放的内容项（道具/货币等），payload 为不透明文档
type ContentItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                            // 主键
	GamespaceID uint      `gorm:"uniqueIndex:idx_content_items_space_name;not null" json:"gamespace_id"`           // 租户标识
	Name        string    `gorm:"type:varchar(120);uniqueIndex:idx_content_items_space_name;not null" json:"name"` // 内容项名称
	Payload     JSON      `gorm:"type:text" json:"payload"`                                                        // 发放载荷
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                                         // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                                                         // 更新时间
}

// TableName 指定表名
func (ContentItem) TableName() string {
	return "content_items"
}
