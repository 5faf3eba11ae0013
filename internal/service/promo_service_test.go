package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPromoServiceTest(t *testing.T) (*PromoService, *ContentService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:promo_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.ContentItem{},
		&models.PromoCode{},
		&models.PromoUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	contentRepo := repository.NewContentItemRepository(db)
	promoSvc := NewPromoService(
		repository.NewPromoCodeRepository(db),
		repository.NewPromoUsageRepository(db),
		contentRepo,
		PromoServiceOptions{Seed: 1},
	)
	contentSvc := NewContentService(contentRepo, ContentServiceOptions{})
	return promoSvc, contentSvc, db
}

func seedContentItem(t *testing.T, db *gorm.DB, gamespaceID uint, name string) *models.ContentItem {
	t.Helper()
	item := models.ContentItem{
		GamespaceID: gamespaceID,
		Name:        name,
		Payload:     models.JSON{"name": name},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create content item failed: %v", err)
	}
	return &item
}

func seedPromoCode(t *testing.T, svc *PromoService, gamespaceID uint, key string, uses int64, expiresAt time.Time, contents models.ContentBundle) *models.PromoCode {
	t.Helper()
	code, err := svc.CreatePromoCode(gamespaceID, PromoCodeInput{
		Code:      key,
		Contents:  contents,
		Uses:      uses,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		t.Fatalf("create promo code failed: %v", err)
	}
	return code
}

func TestPromoServiceCreatePromoCode(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	item := seedContentItem(t, db, 1, "金币")

	contents := models.ContentBundle{fmt.Sprintf("%d", item.ID): 100}
	code := seedPromoCode(t, svc, 1, "ab12-cd34-ef56", 3, time.Now().Add(24*time.Hour), contents)
	if code.Code != "AB12-CD34-EF56" {
		t.Fatalf("expected normalized code, got: %s", code.Code)
	}
	if code.RemainingUses != 3 {
		t.Fatalf("expected remaining_uses=3, got: %d", code.RemainingUses)
	}

	_, err := svc.CreatePromoCode(1, PromoCodeInput{
		Code:      "AB12-CD34-EF56",
		Contents:  contents,
		Uses:      1,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if !errors.Is(err, ErrPromoExists) {
		t.Fatalf("expected ErrPromoExists, got: %v", err)
	}

	// 相同业务键在其他租户可重复使用
	if _, err := svc.CreatePromoCode(2, PromoCodeInput{
		Code:      "AB12-CD34-EF56",
		Contents:  contents,
		Uses:      1,
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("create same code in other gamespace failed: %v", err)
	}
}

func TestPromoServiceCreatePromoCodeValidation(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)
	contents := models.ContentBundle{"1": 10}

	_, err := svc.CreatePromoCode(1, PromoCodeInput{Code: "not-a-key", Contents: contents, Uses: 1, ExpiresAt: time.Now().Add(time.Hour)})
	if !errors.Is(err, ErrPromoKeyInvalid) {
		t.Fatalf("expected ErrPromoKeyInvalid, got: %v", err)
	}

	_, err = svc.CreatePromoCode(1, PromoCodeInput{Code: "AAAA-BBBB-CCCC", Contents: nil, Uses: 1, ExpiresAt: time.Now().Add(time.Hour)})
	if !errors.Is(err, ErrPromoContentsInvalid) {
		t.Fatalf("expected ErrPromoContentsInvalid for nil contents, got: %v", err)
	}

	_, err = svc.CreatePromoCode(1, PromoCodeInput{Code: "AAAA-BBBB-CCCC", Contents: models.ContentBundle{"1": 0}, Uses: 1, ExpiresAt: time.Now().Add(time.Hour)})
	if !errors.Is(err, ErrPromoContentsInvalid) {
		t.Fatalf("expected ErrPromoContentsInvalid for zero amount, got: %v", err)
	}
}

func TestPromoServiceRedeem(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	gold := seedContentItem(t, db, 1, "金币")
	gem := seedContentItem(t, db, 1, "钻石")

	contents := models.ContentBundle{
		fmt.Sprintf("%d", gold.ID): 100,
		fmt.Sprintf("%d", gem.ID):  5,
	}
	code := seedPromoCode(t, svc, 1, "AAAA-BBBB-CCCC", 2, time.Now().Add(24*time.Hour), contents)

	granted, err := svc.Redeem(1, "player-1", "aaaa-bbbb-cccc")
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if len(granted) != 2 {
		t.Fatalf("expected 2 granted contents, got: %d", len(granted))
	}
	amounts := map[uint]int64{gold.ID: 100, gem.ID: 5}
	for _, grant := range granted {
		if grant.Amount != amounts[grant.ItemID] {
			t.Fatalf("unexpected amount for item %d: %d", grant.ItemID, grant.Amount)
		}
		if grant.Payload == nil {
			t.Fatalf("expected payload for item %d", grant.ItemID)
		}
	}

	var after models.PromoCode
	if err := db.First(&after, code.ID).Error; err != nil {
		t.Fatalf("query code failed: %v", err)
	}
	if after.RemainingUses != 1 {
		t.Fatalf("expected remaining_uses=1 after redeem, got: %d", after.RemainingUses)
	}

	// 同一账号重复兑换幂等拒绝
	_, err = svc.Redeem(1, "player-1", "AAAA-BBBB-CCCC")
	if !errors.Is(err, ErrPromoAlreadyUsed) {
		t.Fatalf("expected ErrPromoAlreadyUsed, got: %v", err)
	}

	if err := db.First(&after, code.ID).Error; err != nil {
		t.Fatalf("query code failed: %v", err)
	}
	if after.RemainingUses != 1 {
		t.Fatalf("remaining_uses changed on duplicate redeem: %d", after.RemainingUses)
	}
	var usageCount int64
	if err := db.Model(&models.PromoUsage{}).Where("code_id = ?", code.ID).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 1 {
		t.Fatalf("expected single usage row, got: %d", usageCount)
	}
}

func TestPromoServiceRedeemUnknownCode(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)
	_, err := svc.Redeem(1, "player-1", "ZZZZ-ZZZZ-ZZZZ")
	if !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound, got: %v", err)
	}
}

func TestPromoServiceRedeemInvalidKey(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)
	_, err := svc.Redeem(1, "player-1", "bad key")
	if !errors.Is(err, ErrPromoKeyInvalid) {
		t.Fatalf("expected ErrPromoKeyInvalid, got: %v", err)
	}
}

func TestPromoServiceRedeemExpiredCode(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	code := seedPromoCode(t, svc, 1, "AAAA-BBBB-DDDD", 5, time.Now().Add(-time.Hour), models.ContentBundle{"1": 10})

	_, err := svc.Redeem(1, "player-1", "AAAA-BBBB-DDDD")
	if !errors.Is(err, ErrPromoExhausted) {
		t.Fatalf("expected ErrPromoExhausted, got: %v", err)
	}

	var after models.PromoCode
	if err := db.First(&after, code.ID).Error; err != nil {
		t.Fatalf("query code failed: %v", err)
	}
	if after.RemainingUses != 5 {
		t.Fatalf("expired redeem must not mutate remaining_uses, got: %d", after.RemainingUses)
	}
	var usageCount int64
	if err := db.Model(&models.PromoUsage{}).Where("code_id = ?", code.ID).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 0 {
		t.Fatalf("expired redeem must not create usage rows, got: %d", usageCount)
	}
}

func TestPromoServiceRedeemExhaustedCode(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)
	seedPromoCode(t, svc, 1, "AAAA-BBBB-EEEE", 1, time.Now().Add(24*time.Hour), models.ContentBundle{"1": 10})

	if _, err := svc.Redeem(1, "player-1", "AAAA-BBBB-EEEE"); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	_, err := svc.Redeem(1, "player-2", "AAAA-BBBB-EEEE")
	if !errors.Is(err, ErrPromoExhausted) {
		t.Fatalf("expected ErrPromoExhausted, got: %v", err)
	}
}

func TestPromoServiceRedeemConcurrentDistinctAccounts(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	code := seedPromoCode(t, svc, 1, "AAAA-CCCC-DDDD", 1, time.Now().Add(24*time.Hour), models.ContentBundle{"1": 10})

	const workers = 8
	results := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(idx int) {
			defer wg.Done()
			_, results[idx] = svc.Redeem(1, fmt.Sprintf("player-%d", idx), "AAAA-CCCC-DDDD")
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrPromoExhausted):
		default:
			t.Fatalf("unexpected redeem error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one successful redeem, got: %d", success)
	}

	var after models.PromoCode
	if err := db.First(&after, code.ID).Error; err != nil {
		t.Fatalf("query code failed: %v", err)
	}
	if after.RemainingUses != 0 {
		t.Fatalf("expected remaining_uses=0, got: %d", after.RemainingUses)
	}
	var usageCount int64
	if err := db.Model(&models.PromoUsage{}).Where("code_id = ?", code.ID).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 1 {
		t.Fatalf("expected single usage row, got: %d", usageCount)
	}
}

func TestPromoServiceRedeemConcurrentSameAccount(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	code := seedPromoCode(t, svc, 1, "AAAA-CCCC-EEEE", 5, time.Now().Add(24*time.Hour), models.ContentBundle{"1": 10})

	const workers = 8
	results := make([]error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(idx int) {
			defer wg.Done()
			_, results[idx] = svc.Redeem(1, "player-same", "AAAA-CCCC-EEEE")
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrPromoAlreadyUsed):
		default:
			t.Fatalf("unexpected redeem error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly one successful redeem, got: %d", success)
	}

	var after models.PromoCode
	if err := db.First(&after, code.ID).Error; err != nil {
		t.Fatalf("query code failed: %v", err)
	}
	if after.RemainingUses != 4 {
		t.Fatalf("expected single decrement, remaining_uses=%d", after.RemainingUses)
	}
	var usageCount int64
	if err := db.Model(&models.PromoUsage{}).Where("code_id = ?", code.ID).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 1 {
		t.Fatalf("expected single usage row, got: %d", usageCount)
	}
}

func TestPromoServiceRedeemDropsMissingContent(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	gold := seedContentItem(t, db, 1, "金币")

	contents := models.ContentBundle{
		fmt.Sprintf("%d", gold.ID): 100,
		"99999":                    7,
	}
	seedPromoCode(t, svc, 1, "AAAA-DDDD-EEEE", 1, time.Now().Add(24*time.Hour), contents)

	granted, err := svc.Redeem(1, "player-1", "AAAA-DDDD-EEEE")
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if len(granted) != 1 {
		t.Fatalf("expected missing content dropped, got %d grants", len(granted))
	}
	if granted[0].ItemID != gold.ID || granted[0].Amount != 100 {
		t.Fatalf("unexpected grant: %+v", granted[0])
	}
}

func TestPromoServiceDeleteCascadesUsages(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	code := seedPromoCode(t, svc, 1, "AAAA-EEEE-FFFF", 3, time.Now().Add(24*time.Hour), models.ContentBundle{"1": 10})

	if _, err := svc.Redeem(1, "player-1", "AAAA-EEEE-FFFF"); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if _, err := svc.Redeem(1, "player-2", "AAAA-EEEE-FFFF"); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}

	if err := svc.DeletePromoCode(1, code.ID); err != nil {
		t.Fatalf("delete promo code failed: %v", err)
	}

	var usageCount int64
	if err := db.Model(&models.PromoUsage{}).Where("code_id = ?", code.ID).Count(&usageCount).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if usageCount != 0 {
		t.Fatalf("expected cascaded usage deletion, got: %d", usageCount)
	}

	if _, _, err := svc.ListPromoUsages(1, code.ID, 1, 10); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound after delete, got: %v", err)
	}

	// 删除后业务键可复用
	if _, err := svc.CreatePromoCode(1, PromoCodeInput{
		Code:      "AAAA-EEEE-FFFF",
		Contents:  models.ContentBundle{"1": 10},
		Uses:      1,
		ExpiresAt: time.Now().Add(time.Hour),
	}); err != nil {
		t.Fatalf("recreate deleted code failed: %v", err)
	}
}

func TestPromoServiceListPromoUsagesOrder(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)
	code := seedPromoCode(t, svc, 1, "AAAA-FFFF-GGGG", 5, time.Now().Add(24*time.Hour), models.ContentBundle{"1": 10})

	accounts := []string{"player-c", "player-a", "player-b"}
	for _, account := range accounts {
		if _, err := svc.Redeem(1, account, "AAAA-FFFF-GGGG"); err != nil {
			t.Fatalf("redeem by %s failed: %v", account, err)
		}
	}

	usages, total, err := svc.ListPromoUsages(1, code.ID, 0, 0)
	if err != nil {
		t.Fatalf("list usages failed: %v", err)
	}
	if total != int64(len(accounts)) {
		t.Fatalf("expected total=%d, got: %d", len(accounts), total)
	}
	for i, usage := range usages {
		if usage.AccountID != accounts[i] {
			t.Fatalf("expected insertion order, got %s at %d", usage.AccountID, i)
		}
	}
}

func TestPromoServiceGenerateCodes(t *testing.T) {
	svc, _, db := setupPromoServiceTest(t)
	keys, err := svc.GenerateCodes(1, GeneratePromoCodesInput{
		Count:     10,
		Uses:      2,
		Contents:  models.ContentBundle{"1": 10},
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("generate codes failed: %v", err)
	}
	if len(keys) != 10 {
		t.Fatalf("expected 10 keys, got: %d", len(keys))
	}
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if !ValidatePromoKeyFormat(key) {
			t.Fatalf("generated key has invalid format: %s", key)
		}
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate generated key: %s", key)
		}
		seen[key] = struct{}{}
	}

	var count int64
	if err := db.Model(&models.PromoCode{}).Where("gamespace_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count codes failed: %v", err)
	}
	if count != 10 {
		t.Fatalf("expected 10 persisted codes, got: %d", count)
	}
}

func TestPromoServiceGenerateCodesRetriesOnCollision(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)

	// 收窄键空间到 8 个键，强制生成过程撞键重试
	pool := []string{
		"AAAA-AAAA-0001",
		"AAAA-AAAA-0002",
		"AAAA-AAAA-0003",
		"AAAA-AAAA-0004",
		"AAAA-AAAA-0005",
		"AAAA-AAAA-0006",
		"AAAA-AAAA-0007",
		"AAAA-AAAA-0008",
	}
	svc.keyGen = func(r *rand.Rand) string {
		return pool[r.Intn(len(pool))]
	}

	keys, err := svc.GenerateCodes(1, GeneratePromoCodesInput{
		Count:     5,
		Uses:      1,
		Contents:  models.ContentBundle{"1": 10},
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("generate codes failed: %v", err)
	}
	if len(keys) != 5 {
		t.Fatalf("expected 5 keys, got: %d", len(keys))
	}
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate key from tiny key space: %s", key)
		}
		seen[key] = struct{}{}
	}
}

func TestPromoServiceGenerateCodesCountValidation(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)
	contents := models.ContentBundle{"1": 10}

	if _, err := svc.GenerateCodes(1, GeneratePromoCodesInput{Count: 0, Uses: 1, Contents: contents}); !errors.Is(err, ErrPromoCountInvalid) {
		t.Fatalf("expected ErrPromoCountInvalid for zero count, got: %v", err)
	}
	if _, err := svc.GenerateCodes(1, GeneratePromoCodesInput{Count: defaultMaxCodesPerBatch + 1, Uses: 1, Contents: contents}); !errors.Is(err, ErrPromoCountInvalid) {
		t.Fatalf("expected ErrPromoCountInvalid for oversized count, got: %v", err)
	}
}

func TestPromoServiceUpdatePromoCode(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)
	code := seedPromoCode(t, svc, 1, "AAAA-GGGG-HHHH", 1, time.Now().Add(time.Hour), models.ContentBundle{"1": 10})

	updated, err := svc.UpdatePromoCode(1, code.ID, PromoCodeInput{
		Code:      "AAAA-GGGG-JJJJ",
		Contents:  models.ContentBundle{"2": 20},
		Uses:      9,
		ExpiresAt: time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("update promo code failed: %v", err)
	}
	if updated.Code != "AAAA-GGGG-JJJJ" || updated.RemainingUses != 9 {
		t.Fatalf("unexpected updated code: %+v", updated)
	}

	if _, err := svc.UpdatePromoCode(1, 99999, PromoCodeInput{
		Code:      "AAAA-GGGG-KKKK",
		Contents:  models.ContentBundle{"1": 1},
		Uses:      1,
		ExpiresAt: time.Now().Add(time.Hour),
	}); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected ErrPromoNotFound, got: %v", err)
	}
}

func TestPromoServiceGamespaceIsolation(t *testing.T) {
	svc, _, _ := setupPromoServiceTest(t)
	code := seedPromoCode(t, svc, 1, "AAAA-HHHH-JJJJ", 1, time.Now().Add(time.Hour), models.ContentBundle{"1": 10})

	if _, err := svc.GetPromoCode(2, code.ID); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected cross-gamespace get to miss, got: %v", err)
	}
	if _, err := svc.Redeem(2, "player-1", "AAAA-HHHH-JJJJ"); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected cross-gamespace redeem to miss, got: %v", err)
	}
	if err := svc.DeletePromoCode(2, code.ID); !errors.Is(err, ErrPromoNotFound) {
		t.Fatalf("expected cross-gamespace delete to miss, got: %v", err)
	}
}
