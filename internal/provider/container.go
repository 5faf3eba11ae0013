package provider

import (
	"github.com/promo-next/internal/cache"
	"github.com/promo-next/internal/config"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/models"
	"github.com/promo-next/internal/repository"
	"github.com/promo-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	PromoCodeRepo   repository.PromoCodeRepository
	PromoUsageRepo  repository.PromoUsageRepository
	ContentItemRepo repository.ContentItemRepository

	// Services
	PromoService   *service.PromoService
	ContentService *service.ContentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{
		Config: cfg,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PromoCodeRepo = repository.NewPromoCodeRepository(db)
	c.PromoUsageRepo = repository.NewPromoUsageRepository(db)
	c.ContentItemRepo = repository.NewContentItemRepository(db)
}

func (c *Container) initServices() {
	c.PromoService = service.NewPromoService(c.PromoCodeRepo, c.PromoUsageRepo, c.ContentItemRepo, service.PromoServiceOptions{
		MaxCodesPerBatch:  c.Config.Promo.MaxCodesPerBatch,
		DefaultExpireDays: c.Config.Promo.DefaultExpireDays,
	})
	c.ContentService = service.NewContentService(c.ContentItemRepo, service.ContentServiceOptions{
		CatalogCacheTTLSeconds: c.Config.Promo.CatalogCacheTTLSeconds,
	})
}
