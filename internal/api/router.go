package api

import (
	"context"
	"net/http"
	"time"

	"chuckle-chow/internal/api/handlers/health"
	recipeHandler "chuckle-chow/internal/api/handlers/recipe"
	"chuckle-chow/internal/api/middleware"
	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/chef"
	"chuckle-chow/internal/core/ratings"
	"chuckle-chow/internal/infrastructure/config"
	"chuckle-chow/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 單一請求的處理上限
	timeoutDuration = 120 * time.Second
	// 預設請求體上限 (1MB)
	defaultMaxBodySize = 1 << 20
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Kitchen *chef.Kitchen
	Catalog *catalog.Catalog
	Ratings ratings.Store
	Stats   health.StatsSource
	Checks  map[string]health.Check
}

// Router 食譜服務的 gin 路由與需要關閉的資源
type Router struct {
	*gin.Engine
	dedup *middleware.Deduplicator
}

// Close 停止背景協程
func (r *Router) Close() {
	if r.dedup != nil {
		r.dedup.Stop()
	}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *Router {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.String("generator", cfg.Generator.Provider),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	origins := cfg.Server.AllowedOrigins
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = origins
	}
	router.Use(cors.New(corsCfg))

	maxBody := cfg.Server.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	router.Use(middleware.BodySizeLimit(maxBody))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	router.Use(dedup.Middleware())

	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeGatewayTimeout,
				Message: "Request timeout",
				Details: gin.H{"timeout": timeoutDuration.String()},
			})
		}
	})

	healthHandler := health.NewHandler(cfg.App.Version, cfg.Generator.Provider, deps.Stats, deps.Checks)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	h := recipeHandler.NewHandler(deps.Kitchen, deps.Catalog, deps.Ratings)
	router.GET("/api", h.Welcome)
	router.GET("/ingredients", h.Ingredients)
	router.POST("/generate_recipe", h.GenerateRecipe)
	router.POST("/elucidate_recipe", h.ElucidateRecipe)
	router.POST("/rate_recipe", h.RateRecipe)
	router.GET("/recipe_comments", h.RecipeComments)

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Int64("max_body_size", maxBody),
	)
	return &Router{Engine: router, dedup: dedup}
}
