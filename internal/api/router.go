package api

import (
	"context"
	"net/http"
	"time"

	basketHandler "pantryip/internal/api/handlers/basket"
	"pantryip/internal/api/handlers/health"
	"pantryip/internal/api/middleware"
	"pantryip/internal/core/ai/openrouter"
	"pantryip/internal/core/cache"
	"pantryip/internal/core/catalog"
	"pantryip/internal/core/optimize"
	"pantryip/internal/core/pipeline"
	"pantryip/internal/core/rank"
	"pantryip/internal/core/source"
	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 請求體大小限制 (1MB)，購物清單不該比這更大
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
// 快取把手由呼叫端建立並注入，生命週期跟著行程走而不是跟著請求走
func SetupRouter(cfg *config.Config, cacheManager *cache.Manager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 速率限制與請求去重：一趟 pipeline 很貴，重複與突發流量在門口擋掉
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg))

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Strings("sources", cfg.Sources.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.String("rank_service", cfg.Rank.BaseURL),
	)

	// 初始化零售商來源與聚合器
	fixtures := source.NewFixtureProvider()
	clients := source.NewClients(&cfg.Sources, fixtures)
	aggregator := catalog.NewAggregator(clients, cacheManager, &cfg.Pipeline)

	// 初始化快速路徑
	rankClient := rank.NewClient(&cfg.Rank)
	fastOptimizer := optimize.NewFastRank(rankClient)

	// 初始化生成路徑
	aiClient := openrouter.NewClient(cfg)
	generativeOptimizer := optimize.NewGenerative(aiClient, &cfg.OpenRouter)

	// pipeline 控制器
	controller := pipeline.NewController(cfg, aggregator, rankClient, fastOptimizer, generativeOptimizer)

	// 整體請求超時，涵蓋最壞情況的探測 + 抓取 + 模型重試
	timeout := cfg.Pipeline.OverallTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeout),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
		}
	})

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, cacheManager, rankClient)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	apiGroup := router.Group("/api/v1")
	{
		handler := basketHandler.NewHandler(controller, aggregator)

		basketGroup := apiGroup.Group("/basket")
		{
			basketGroup.POST("/generate", handler.HandleGenerateBasket)
		}

		productsGroup := apiGroup.Group("/products")
		{
			productsGroup.POST("/search", handler.HandleSearchProducts)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Int("sources", len(clients)),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
