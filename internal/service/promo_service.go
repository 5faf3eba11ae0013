package service

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultMaxCodesPerBatch = 1000
	defaultPromoExpireDays  = 30
)

// PromoService 促销码服务（登记、兑换、批量生成）
type PromoService struct {
	repo        repository.PromoCodeRepository
	usageRepo   repository.PromoUsageRepository
	contentRepo repository.ContentItemRepository

	maxCodesPerBatch  int
	defaultExpireDays int

	// keyGen 可注入以便测试收窄键空间
	keyGen func(r *rand.Rand) string
	rngMu  sync.Mutex
	rng    *rand.Rand
}

// PromoServiceOptions 促销码服务配置
type PromoServiceOptions struct {
	MaxCodesPerBatch  int
	DefaultExpireDays int
	Seed              int64
}

// PromoCodeInput 创建/更新促销码输入
type PromoCodeInput struct {
	Code      string
	Contents  models.ContentBundle
	Uses      int64
	ExpiresAt time.Time
}

// PromoCodeListInput 促销码列表输入
type PromoCodeListInput struct {
	GamespaceID uint
	Code        string
	OnlyUsable  bool
	Page        int
	PageSize    int
}

// GeneratePromoCodesInput 批量生成促销码输入
type GeneratePromoCodesInput struct {
	Count     int
	Uses      int64
	Contents  models.ContentBundle
	ExpiresAt time.Time
}

// RedeemedContent 兑换发放结果
type RedeemedContent struct {
	ItemID  uint        `json:"-"`
	Payload models.JSON `json:"payload"`
	Amount  int64       `json:"amount"`
}

// NewPromoService 创建促销码服务
func NewPromoService(repo repository.PromoCodeRepository, usageRepo repository.PromoUsageRepository, contentRepo repository.ContentItemRepository, options PromoServiceOptions) *PromoService {
	maxBatch := options.MaxCodesPerBatch
	if maxBatch <= 0 {
		maxBatch = defaultMaxCodesPerBatch
	}
	expireDays := options.DefaultExpireDays
	if expireDays <= 0 {
		expireDays = defaultPromoExpireDays
	}
	seed := options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PromoService{
		repo:              repo,
		usageRepo:         usageRepo,
		contentRepo:       contentRepo,
		maxCodesPerBatch:  maxBatch,
		defaultExpireDays: expireDays,
		keyGen:            GeneratePromoKey,
		rng:               rand.New(rand.NewSource(seed)),
	}
}

// CreatePromoCode 创建促销码
func (s *PromoService) CreatePromoCode(gamespaceID uint, input PromoCodeInput) (*models.PromoCode, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	key := NormalizePromoKey(input.Code)
	if !ValidatePromoKeyFormat(key) {
		return nil, ErrPromoKeyInvalid
	}
	if err := validateContentBundle(input.Contents); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByKey(gamespaceID, key)
	if err != nil {
		return nil, storageError(err)
	}
	if exists {
		return nil, ErrPromoExists
	}

	now := time.Now().UTC()
	code := &models.PromoCode{
		GamespaceID:   gamespaceID,
		Code:          key,
		Contents:      input.Contents,
		RemainingUses: input.Uses,
		ExpiresAt:     s.normalizeExpiresAt(input.ExpiresAt, now),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(code); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrPromoExists
		}
		return nil, storageError(err)
	}
	return code, nil
}

// UpdatePromoCode 整体覆盖更新促销码
func (s *PromoService) UpdatePromoCode(gamespaceID, id uint, input PromoCodeInput) (*models.PromoCode, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	key := NormalizePromoKey(input.Code)
	if !ValidatePromoKeyFormat(key) {
		return nil, ErrPromoKeyInvalid
	}
	if err := validateContentBundle(input.Contents); err != nil {
		return nil, err
	}

	code, err := s.repo.GetByID(gamespaceID, id)
	if err != nil {
		return nil, storageError(err)
	}
	if code == nil {
		return nil, ErrPromoNotFound
	}

	now := time.Now().UTC()
	code.Code = key
	code.Contents = input.Contents
	code.RemainingUses = input.Uses
	code.ExpiresAt = s.normalizeExpiresAt(input.ExpiresAt, now)
	code.UpdatedAt = now
	if err := s.repo.Update(code); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrPromoExists
		}
		return nil, storageError(err)
	}
	return code, nil
}

// DeletePromoCode 删除促销码并级联清理使用记录
func (s *PromoService) DeletePromoCode(gamespaceID, id uint) error {
	if s == nil || s.repo == nil || s.usageRepo == nil {
		return ErrPromoStorage
	}
	code, err := s.repo.GetByID(gamespaceID, id)
	if err != nil {
		return storageError(err)
	}
	if code == nil {
		return ErrPromoNotFound
	}

	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.usageRepo.WithTx(tx).DeleteByCodeID(code.ID); err != nil {
			return storageError(err)
		}
		if err := s.repo.WithTx(tx).Delete(gamespaceID, code.ID); err != nil {
			return storageError(err)
		}
		return nil
	})
}

// GetPromoCode 根据 ID 查询促销码
func (s *PromoService) GetPromoCode(gamespaceID, id uint) (*models.PromoCode, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	code, err := s.repo.GetByID(gamespaceID, id)
	if err != nil {
		return nil, storageError(err)
	}
	if code == nil {
		return nil, ErrPromoNotFound
	}
	return code, nil
}

// FindPromoCodeByKey 根据促销码查询
func (s *PromoService) FindPromoCodeByKey(gamespaceID uint, key string) (*models.PromoCode, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	key = NormalizePromoKey(key)
	if !ValidatePromoKeyFormat(key) {
		return nil, ErrPromoKeyInvalid
	}
	code, err := s.repo.GetByKey(gamespaceID, key)
	if err != nil {
		return nil, storageError(err)
	}
	if code == nil {
		return nil, ErrPromoNotFound
	}
	return code, nil
}

// ListPromoCodes 查询促销码列表
func (s *PromoService) ListPromoCodes(input PromoCodeListInput) ([]models.PromoCode, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, ErrPromoStorage
	}
	codes, total, err := s.repo.List(repository.PromoCodeListFilter{
		Page:        input.Page,
		PageSize:    input.PageSize,
		GamespaceID: input.GamespaceID,
		Code:        strings.TrimSpace(strings.ToUpper(input.Code)),
		OnlyUsable:  input.OnlyUsable,
	})
	if err != nil {
		return nil, 0, storageError(err)
	}
	return codes, total, nil
}

// ListPromoUsages 查询促销码的兑换账号（按兑换顺序）
func (s *PromoService) ListPromoUsages(gamespaceID, id uint, page, pageSize int) ([]models.PromoUsage, int64, error) {
	if s == nil || s.repo == nil || s.usageRepo == nil {
		return nil, 0, ErrPromoStorage
	}
	code, err := s.repo.GetByID(gamespaceID, id)
	if err != nil {
		return nil, 0, storageError(err)
	}
	if code == nil {
		return nil, 0, ErrPromoNotFound
	}
	usages, total, err := s.usageRepo.ListByCode(repository.PromoUsageListFilter{
		Page:        page,
		PageSize:    pageSize,
		GamespaceID: gamespaceID,
		CodeID:      code.ID,
	})
	if err != nil {
		return nil, 0, storageError(err)
	}
	return usages, total, nil
}

// Redeem 兑换促销码并返回发放内容
func (s *PromoService) Redeem(gamespaceID uint, accountID, key string) ([]RedeemedContent, error) {
	if s == nil || s.repo == nil || s.usageRepo == nil {
		return nil, ErrPromoStorage
	}
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, ErrAccountInvalid
	}
	key = NormalizePromoKey(key)
	if !ValidatePromoKeyFormat(key) {
		return nil, ErrPromoKeyInvalid
	}

	var redeemed *models.PromoCode
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		usageRepo := s.usageRepo.WithTx(tx)
		now := time.Now().UTC()

		code, err := repo.GetRedeemableByKeyForUpdate(gamespaceID, key, now)
		if err != nil {
			return storageError(err)
		}
		if code == nil {
			exists, probeErr := repo.ExistsByKey(gamespaceID, key)
			if probeErr != nil {
				return storageError(probeErr)
			}
			if exists {
				return ErrPromoExhausted
			}
			return ErrPromoNotFound
		}

		used, err := usageRepo.ExistsByCodeAndAccount(code.ID, accountID)
		if err != nil {
			return storageError(err)
		}
		if used {
			return ErrPromoAlreadyUsed
		}

		usage := &models.PromoUsage{
			GamespaceID: gamespaceID,
			CodeID:      code.ID,
			AccountID:   accountID,
			CreatedAt:   now,
		}
		if err := usageRepo.Create(usage); err != nil {
			if isDuplicateKeyError(err) {
				return ErrPromoAlreadyUsed
			}
			return storageError(err)
		}

		rows, err := repo.DecrementRemaining(code.ID)
		if err != nil {
			return storageError(err)
		}
		if rows == 0 {
			return ErrPromoExhausted
		}
		code.RemainingUses--
		redeemed = code
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 提交后尽力解析内容，失败不影响兑换结果
	return s.resolveContents(gamespaceID, redeemed.Contents), nil
}

// GenerateCodes 批量生成促销码，冲突时换键重试
func (s *PromoService) GenerateCodes(gamespaceID uint, input GeneratePromoCodesInput) ([]string, error) {
	if s == nil || s.repo == nil {
		return nil, ErrPromoStorage
	}
	if input.Count <= 0 || input.Count > s.maxCodesPerBatch {
		return nil, ErrPromoCountInvalid
	}
	if err := validateContentBundle(input.Contents); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expiresAt := s.normalizeExpiresAt(input.ExpiresAt, now)
	keys := make([]string, 0, input.Count)
	for i := 0; i < input.Count; i++ {
		for {
			key := s.nextKey()
			code := &models.PromoCode{
				GamespaceID:   gamespaceID,
				Code:          key,
				Contents:      input.Contents,
				RemainingUses: input.Uses,
				ExpiresAt:     expiresAt,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.Create(code); err != nil {
				if isDuplicateKeyError(err) {
					continue
				}
				return keys, storageError(err)
			}
			keys = append(keys, key)
			break
		}
	}
	return keys, nil
}

// resolveContents 按内容映射解析发放载荷，缺失的内容项静默丢弃
func (s *PromoService) resolveContents(gamespaceID uint, contents models.ContentBundle) []RedeemedContent {
	result := make([]RedeemedContent, 0, len(contents))
	if s == nil || s.contentRepo == nil || len(contents) == 0 {
		return result
	}

	amounts := make(map[uint]int64, len(contents))
	ids := make([]uint, 0, len(contents))
	for rawID, amount := range contents {
		parsed, err := strconv.ParseUint(strings.TrimSpace(rawID), 10, 64)
		if err != nil || parsed == 0 {
			continue
		}
		id := uint(parsed)
		amounts[id] = amount
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return result
	}

	items, err := s.contentRepo.ListByIDs(gamespaceID, ids)
	if err != nil {
		logger.Warnw("promo_resolve_contents_failed",
			"gamespace_id", gamespaceID,
			"error", err,
		)
		return result
	}
	for _, item := range items {
		result = append(result, RedeemedContent{
			ItemID:  item.ID,
			Payload: item.Payload,
			Amount:  amounts[item.ID],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ItemID < result[j].ItemID })
	return result
}

func (s *PromoService) nextKey() string {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.keyGen(s.rng)
}

func (s *PromoService) normalizeExpiresAt(raw time.Time, now time.Time) time.Time {
	if raw.IsZero() {
		return now.AddDate(0, 0, s.defaultExpireDays)
	}
	return raw.UTC()
}

func validateContentBundle(contents models.ContentBundle) error {
	if len(contents) == 0 {
		return ErrPromoContentsInvalid
	}
	for id, amount := range contents {
		if strings.TrimSpace(id) == "" || amount <= 0 {
			return ErrPromoContentsInvalid
		}
	}
	return nil
}
