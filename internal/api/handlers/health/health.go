package health

import (
	"net/http"
	"runtime"
	"time"

	"pantryip/internal/core/cache"
	"pantryip/internal/core/pipeline"
	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理程序
// 就緒檢查會回報快速路徑與快取的即時狀態，但兩者都不是硬依賴：
// 它們掛掉時服務仍然就緒，只是走得慢
type Handler struct {
	config *config.Config
	cache  *cache.Manager
	probe  pipeline.Prober
}

// NewHandler 建立健康檢查處理程序
func NewHandler(cfg *config.Config, cacheManager *cache.Manager, probe pipeline.Prober) *Handler {
	return &Handler{
		config: cfg,
		cache:  cacheManager,
		probe:  probe,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogInfo("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器
func (h *Handler) ReadinessCheck(c *gin.Context) {
	fastPathReady := false
	if h.probe != nil {
		fastPathReady = h.probe.Ready(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "ready",
		"fast_path_ready": fastPathReady,
		"cache_available": h.cache.Available(),
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
