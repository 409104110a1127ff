package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"chuckle-chow/internal/core/ai/cache"
	"chuckle-chow/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查回應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Generator string                 `json:"generator"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     *cache.Stats           `json:"cache,omitempty"`
}

// StatsSource 可回報統計的快取，記憶體快取實作此介面
type StatsSource interface {
	GetStats() cache.Stats
}

// Check 就緒檢查，回傳錯誤表示尚未就緒
type Check func(ctx context.Context) error

// Handler 健康檢查處理器
type Handler struct {
	version   string
	generator string
	started   time.Time
	stats     StatsSource
	checks    map[string]Check
}

// NewHandler 建立處理器，stats 可為 nil
func NewHandler(version, generator string, stats StatsSource, checks map[string]Check) *Handler {
	return &Handler{
		version:   version,
		generator: generator,
		started:   time.Now(),
		stats:     stats,
		checks:    checks,
	}
}

// HealthCheck GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Generator: h.generator,
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
	if h.stats != nil {
		s := h.stats.GetStats()
		resp.Cache = &s
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)
	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck GET /ready，任何檢查失敗回 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			common.LogWarn("Readiness check failed", zap.String("check", name), zap.Error(err))
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck GET /live
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
