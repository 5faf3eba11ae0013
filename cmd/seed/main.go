package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/promo-next/internal/config"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"
)

const seedGamespaceID uint = 1

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加内容项
	items := []models.ContentItem{
		{
			GamespaceID: seedGamespaceID,
			Name:        "金币",
			Payload: models.JSON(map[string]interface{}{
				"type":     "currency",
				"currency": "gold",
			}),
		},
		{
			GamespaceID: seedGamespaceID,
			Name:        "钻石",
			Payload: models.JSON(map[string]interface{}{
				"type":     "currency",
				"currency": "diamond",
			}),
		},
		{
			GamespaceID: seedGamespaceID,
			Name:        "体力药水",
			Payload: models.JSON(map[string]interface{}{
				"type":    "item",
				"item_id": "stamina_potion",
			}),
		},
	}

	for _, item := range items {
		var existing models.ContentItem
		if err := models.DB.Where("gamespace_id = ? AND name = ?", item.GamespaceID, item.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to create content item %s: %v", item.Name, err)
			} else {
				stdLog.Printf("Created content item: %s", item.Name)
			}
		} else {
			existing.Payload = item.Payload
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update content item %s: %v", item.Name, err)
			} else {
				stdLog.Printf("Updated content item: %s", item.Name)
			}
		}
	}

	// 获取内容项 ID
	itemIDs := map[string]uint{}
	var itemList []models.ContentItem
	if err := models.DB.Where("gamespace_id = ?", seedGamespaceID).Find(&itemList).Error; err != nil {
		stdLog.Printf("Failed to load content items: %v", err)
	}
	for _, item := range itemList {
		itemIDs[item.Name] = item.ID
	}
	goldKey := strconv.FormatUint(uint64(itemIDs["金币"]), 10)
	diamondKey := strconv.FormatUint(uint64(itemIDs["钻石"]), 10)
	potionKey := strconv.FormatUint(uint64(itemIDs["体力药水"]), 10)

	// 添加促销码
	now := time.Now()
	codes := []models.PromoCode{
		{
			GamespaceID: seedGamespaceID,
			Code:        "WELC-OME2-0260",
			Contents: models.ContentBundle{
				goldKey:    1000,
				diamondKey: 50,
			},
			RemainingUses: 10000,
			ExpiresAt:     now.AddDate(1, 0, 0),
		},
		{
			GamespaceID: seedGamespaceID,
			Code:        "LNCH-GIFT-2026",
			Contents: models.ContentBundle{
				diamondKey: 200,
				potionKey:  5,
			},
			RemainingUses: 500,
			ExpiresAt:     now.AddDate(0, 1, 0),
		},
		{
			GamespaceID: seedGamespaceID,
			Code:        "EXPR-DEMO-0001",
			Contents: models.ContentBundle{
				goldKey: 100,
			},
			RemainingUses: 100,
			ExpiresAt:     now.Add(-24 * time.Hour),
		},
	}

	for _, code := range codes {
		var existing models.PromoCode
		if err := models.DB.Where("gamespace_id = ? AND code = ?", code.GamespaceID, code.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&code).Error; err != nil {
				stdLog.Printf("Failed to create promo code %s: %v", code.Code, err)
			} else {
				stdLog.Printf("Created promo code: %s", code.Code)
			}
		} else {
			stdLog.Printf("Promo code already exists: %s", code.Code)
		}
	}

	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Content items (gamespace 1)")
	fmt.Println("- 3 Promo codes (含 1 个已过期演示码)")
}
