package router

import (
	"fmt"
	"strings"

	"github.com/promo-next/internal/cache"
	"github.com/promo-next/internal/config"
	"github.com/promo-next/internal/constants"
	adminhandlers "github.com/promo-next/internal/http/handlers/admin"
	internalhandlers "github.com/promo-next/internal/http/handlers/internalapi"
	publichandlers "github.com/promo-next/internal/http/handlers/public"
	"github.com/promo-next/internal/logger"
	"github.com/promo-next/internal/metrics"
	"github.com/promo-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/内部/管理分组）
	publicHandler := publichandlers.New(c)
	internalHandler := internalhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "promo"
	}
	redisClient := cache.Client()
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:redeem", redisPrefix),
		WindowSeconds: cfg.Promo.RedeemRateLimit.WindowSeconds,
		MaxRequests:   cfg.Promo.RedeemRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(metrics.Middleware())
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 玩家接口（需鉴权）
		player := apiV1.Group("")
		player.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, constants.ScopePromo))
		{
			player.POST("/promos/:code/redeem",
				RateLimitMiddleware(redisClient, redeemRule, KeyByAccount),
				publicHandler.RedeemPromoCode,
			)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, constants.ScopePromoAdmin))
		{
			// 内容项管理
			admin.GET("/contents", adminHandler.GetAdminContentItems)
			admin.POST("/contents", adminHandler.CreateContentItem)
			admin.GET("/contents/:id", adminHandler.GetAdminContentItem)
			admin.PUT("/contents/:id", adminHandler.UpdateContentItem)
			admin.DELETE("/contents/:id", adminHandler.DeleteContentItem)

			// 促销码管理
			admin.GET("/promos", adminHandler.GetAdminPromoCodes)
			admin.POST("/promos", adminHandler.CreatePromoCode)
			admin.POST("/promos/generate", adminHandler.GeneratePromoCodes)
			admin.GET("/promos/:id", adminHandler.GetAdminPromoCode)
			admin.PUT("/promos/:id", adminHandler.UpdatePromoCode)
			admin.DELETE("/promos/:id", adminHandler.DeletePromoCode)
			admin.GET("/promos/:id/usages", adminHandler.GetAdminPromoUsages)
		}
	}

	// 内部服务接口（共享令牌鉴权）
	internalV1 := r.Group("/internal/v1")
	internalV1.Use(InternalAuthMiddleware(cfg.InternalAuth.Token))
	{
		internalV1.POST("/promos/generate", internalHandler.GeneratePromoCodes)
		internalV1.POST("/promos/redeem", internalHandler.RedeemPromoCode)
		internalV1.GET("/promos/info", internalHandler.GetPromoCodeInfo)
		internalV1.GET("/promos/:id/usages", internalHandler.GetPromoUsages)
		internalV1.GET("/contents", internalHandler.GetContentCatalog)
	}

	// 健康检查与指标
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	return r
}
