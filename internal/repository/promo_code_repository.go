package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promo-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PromoCodeRepository 促销码数据访问接口
type PromoCodeRepository interface {
	Create(code *models.PromoCode) error
	GetByID(gamespaceID, id uint) (*models.PromoCode, error)
	GetByKey(gamespaceID uint, key string) (*models.PromoCode, error)
	GetRedeemableByKeyForUpdate(gamespaceID uint, key string, now time.Time) (*models.PromoCode, error)
	ExistsByKey(gamespaceID uint, key string) (bool, error)
	List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error)
	Update(code *models.PromoCode) error
	DecrementRemaining(id uint) (int64, error)
	Delete(gamespaceID, id uint) error
	WithTx(tx *gorm.DB) *GormPromoCodeRepository
}

// GormPromoCodeRepository GORM 促销码仓储实现
type GormPromoCodeRepository struct {
	db *gorm.DB
}

// NewPromoCodeRepository 创建促销码仓储
func NewPromoCodeRepository(db *gorm.DB) *GormPromoCodeRepository {
	return &GormPromoCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoCodeRepository) WithTx(tx *gorm.DB) *GormPromoCodeRepository {
	if tx == nil {
		return r
	}
	return &GormPromoCodeRepository{db: tx}
}

// Create 创建促销码
func (r *GormPromoCodeRepository) Create(code *models.PromoCode) error {
	if code == nil {
		return errors.New("invalid promo code")
	}
	return r.db.Create(code).Error
}

// GetByID 根据 ID 查询促销码
func (r *GormPromoCodeRepository) GetByID(gamespaceID, id uint) (*models.PromoCode, error) {
	if id == 0 {
		return nil, nil
	}
	var code models.PromoCode
	if err := r.db.Where("gamespace_id = ? AND id = ?", gamespaceID, id).
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// GetByKey 根据促销码查询
func (r *GormPromoCodeRepository) GetByKey(gamespaceID uint, key string) (*models.PromoCode, error) {
	key = strings.TrimSpace(strings.ToUpper(key))
	if key == "" {
		return nil, nil
	}
	var code models.PromoCode
	if err := r.db.Where("gamespace_id = ? AND code = ?", gamespaceID, key).
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// GetRedeemableByKeyForUpdate 加锁查询仍可兑换的促销码（剩余次数与有效期过滤）
func (r *GormPromoCodeRepository) GetRedeemableByKeyForUpdate(gamespaceID uint, key string, now time.Time) (*models.PromoCode, error) {
	key = strings.TrimSpace(strings.ToUpper(key))
	if key == "" {
		return nil, nil
	}
	var code models.PromoCode
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gamespace_id = ? AND code = ? AND remaining_uses > 0 AND expires_at > ?", gamespaceID, key, now).
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &code, nil
}

// ExistsByKey 判断促销码是否存在
func (r *GormPromoCodeRepository) ExistsByKey(gamespaceID uint, key string) (bool, error) {
	key = strings.TrimSpace(strings.ToUpper(key))
	if key == "" {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.PromoCode{}).
		Where("gamespace_id = ? AND code = ?", gamespaceID, key).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List 查询促销码列表
func (r *GormPromoCodeRepository) List(filter PromoCodeListFilter) ([]models.PromoCode, int64, error) {
	query := r.db.Model(&models.PromoCode{}).Where("gamespace_id = ?", filter.GamespaceID)
	if key := strings.TrimSpace(strings.ToUpper(filter.Code)); key != "" {
		query = query.Where(fmt.Sprintf("code %s ?", likeOperator(r.db)), "%"+key+"%")
	}
	if filter.ExpiresFrom != nil {
		query = query.Where("expires_at >= ?", *filter.ExpiresFrom)
	}
	if filter.ExpiresTo != nil {
		query = query.Where("expires_at <= ?", *filter.ExpiresTo)
	}
	if filter.OnlyUsable {
		query = query.Where("remaining_uses > 0 AND expires_at > ?", time.Now().UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var codes []models.PromoCode
	if err := query.Order("id desc").Find(&codes).Error; err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

// Update 更新促销码
func (r *GormPromoCodeRepository) Update(code *models.PromoCode) error {
	if code == nil {
		return errors.New("invalid promo code")
	}
	return r.db.Save(code).Error
}

// DecrementRemaining 条件扣减剩余次数，返回受影响行数
func (r *GormPromoCodeRepository) DecrementRemaining(id uint) (int64, error) {
	result := r.db.Model(&models.PromoCode{}).
		Where("id = ? AND remaining_uses > 0", id).
		Updates(map[string]interface{}{
			"remaining_uses": gorm.Expr("remaining_uses - 1"),
			"updated_at":     time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// Delete 删除促销码
func (r *GormPromoCodeRepository) Delete(gamespaceID, id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Where("gamespace_id = ?", gamespaceID).
		Delete(&models.PromoCode{}, id).Error
}
