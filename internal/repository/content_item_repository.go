package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/promo-next/internal/models"

	"gorm.io/gorm"
)

// ContentItemRepository 内容项数据访问接口
type ContentItemRepository interface {
	Create(item *models.ContentItem) error
	GetByID(gamespaceID uint, id uint) (*models.ContentItem, error)
	GetByName(gamespaceID uint, name string) (*models.ContentItem, error)
	List(filter ContentItemListFilter) ([]models.ContentItem, int64, error)
	ListAll(gamespaceID uint) ([]models.ContentItem, error)
	ListByIDs(gamespaceID uint, ids []uint) ([]models.ContentItem, error)
	Update(item *models.ContentItem) error
	Delete(gamespaceID uint, id uint) error
	WithTx(tx *gorm.DB) *GormContentItemRepository
}

// GormContentItemRepository GORM 内容项仓储实现
type GormContentItemRepository struct {
	db *gorm.DB
}

// NewContentItemRepository 创建内容项仓储
func NewContentItemRepository(db *gorm.DB) *GormContentItemRepository {
	return &GormContentItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormContentItemRepository) WithTx(tx *gorm.DB) *GormContentItemRepository {
	if tx == nil {
		return r
	}
	return &GormContentItemRepository{db: tx}
}

// Create 创建内容项
func (r *GormContentItemRepository) Create(item *models.ContentItem) error {
	if item == nil {
		return errors.New("invalid content item")
	}
	return r.db.Create(item).Error
}

// GetByID 根据 ID 查询内容项
func (r *GormContentItemRepository) GetByID(gamespaceID, id uint) (*models.ContentItem, error) {
	if id == 0 {
		return nil, nil
	}
	var item models.ContentItem
	if err := r.db.Where("gamespace_id = ? AND id = ?", gamespaceID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByName 根据名称查询内容项
func (r *GormContentItemRepository) GetByName(gamespaceID uint, name string) (*models.ContentItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var item models.ContentItem
	if err := r.db.Where("gamespace_id = ? AND name = ?", gamespaceID, name).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// List 查询内容项列表
func (r *GormContentItemRepository) List(filter ContentItemListFilter) ([]models.ContentItem, int64, error) {
	query := r.db.Model(&models.ContentItem{}).Where("gamespace_id = ?", filter.GamespaceID)
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(fmt.Sprintf("name %s ?", likeOperator(r.db)), "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var items []models.ContentItem
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAll 查询租户下的全部内容项
func (r *GormContentItemRepository) ListAll(gamespaceID uint) ([]models.ContentItem, error) {
	var items []models.ContentItem
	if err := r.db.Where("gamespace_id = ?", gamespaceID).
		Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByIDs 按 ID 列表查询内容项
func (r *GormContentItemRepository) ListByIDs(gamespaceID uint, ids []uint) ([]models.ContentItem, error) {
	if len(ids) == 0 {
		return []models.ContentItem{}, nil
	}
	var items []models.ContentItem
	if err := r.db.Where("gamespace_id = ? AND id IN ?", gamespaceID, ids).
		Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update 更新内容项
func (r *GormContentItemRepository) Update(item *models.ContentItem) error {
	if item == nil {
		return errors.New("invalid content item")
	}
	return r.db.Save(item).Error
}

// Delete 删除内容项
func (r *GormContentItemRepository) Delete(gamespaceID, id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Where("gamespace_id = ?", gamespaceID).
		Delete(&models.ContentItem{}, id).Error
}
