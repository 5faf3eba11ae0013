package repository

import (
	"errors"

	"github.com/promo-next/internal/models"

	"gorm.io/gorm"
)

// PromoUsageRepository 促销码使用记录数据访问接口
type PromoUsageRepository interface {
	Create(usage *models.PromoUsage) error
	ExistsByCodeAndAccount(codeID uint, accountID string) (bool, error)
	ListByCode(filter PromoUsageListFilter) ([]models.PromoUsage, int64, error)
	CountByCode(codeID uint) (int64, error)
	DeleteByCodeID(codeID uint) error
	WithTx(tx *gorm.DB) *GormPromoUsageRepository
}

// GormPromoUsageRepository GORM 实现
type GormPromoUsageRepository struct {
	db *gorm.DB
}

// NewPromoUsageRepository 创建促销码使用记录仓库
func NewPromoUsageRepository(db *gorm.DB) *GormPromoUsageRepository {
	return &GormPromoUsageRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPromoUsageRepository) WithTx(tx *gorm.DB) *GormPromoUsageRepository {
	if tx == nil {
		return r
	}
	return &GormPromoUsageRepository{db: tx}
}

// Create 创建使用记录
func (r *GormPromoUsageRepository) Create(usage *models.PromoUsage) error {
	if usage == nil {
		return errors.New("invalid promo usage")
	}
	return r.db.Create(usage).Error
}

// ExistsByCodeAndAccount 判断账号是否已兑换过该促销码
func (r *GormPromoUsageRepository) ExistsByCodeAndAccount(codeID uint, accountID string) (bool, error) {
	if codeID == 0 || accountID == "" {
		return false, nil
	}
	var count int64
	if err := r.db.Model(&models.PromoUsage{}).
		Where("code_id = ? AND account_id = ?", codeID, accountID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByCode 查询促销码的使用记录
func (r *GormPromoUsageRepository) ListByCode(filter PromoUsageListFilter) ([]models.PromoUsage, int64, error) {
	query := r.db.Model(&models.PromoUsage{}).
		Where("gamespace_id = ? AND code_id = ?", filter.GamespaceID, filter.CodeID)
	if filter.AccountID != "" {
		query = query.Where("account_id = ?", filter.AccountID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var usages []models.PromoUsage
	if err := query.Order("id asc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}

// CountByCode 统计促销码的兑换次数
func (r *GormPromoUsageRepository) CountByCode(codeID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.PromoUsage{}).
		Where("code_id = ?", codeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByCodeID 删除促销码的全部使用记录
func (r *GormPromoUsageRepository) DeleteByCodeID(codeID uint) error {
	if codeID == 0 {
		return nil
	}
	return r.db.Where("code_id = ?", codeID).Delete(&models.PromoUsage{}).Error
}
