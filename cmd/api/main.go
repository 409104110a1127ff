package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chuckle-chow/internal/api"
	"chuckle-chow/internal/api/handlers/health"
	"chuckle-chow/internal/core/ai/cache"
	"chuckle-chow/internal/core/ai/openrouter"
	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/chef"
	"chuckle-chow/internal/core/ratings"
	"chuckle-chow/internal/infrastructure/config"
	"chuckle-chow/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定，.env 由 config 讀取
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(common.LogOptions{
		Level:   cfg.LogLevel,
		File:    cfg.Log.File,
		Mode:    cfg.Log.Mode,
		Service: "chuckle-chow-api",
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("generator", cfg.Generator.Provider),
		zap.String("model", cfg.Generator.Model),
		zap.String("ratings_driver", cfg.Ratings.Driver),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	store, err := ratings.New(cfg.Ratings)
	if err != nil {
		common.LogFatal("Failed to initialize ratings store", zap.Error(err))
	}
	defer store.Close()

	gen, genCache, err := newGenerator(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize generator", zap.Error(err))
	}
	if genCache != nil {
		defer genCache.Close()
	}

	deps := api.Dependencies{
		Kitchen: chef.NewKitchen(gen, 0),
		Catalog: catalog.Default(),
		Ratings: store,
		Checks:  map[string]health.Check{},
	}
	if m, ok := genCache.(*cache.CacheManager); ok {
		deps.Stats = m
	}
	if cfg.Generator.Provider == "openrouter" {
		deps.Checks["generator"] = func(context.Context) error {
			if cfg.Generator.APIKey == "" {
				return errors.New("generator api key is not set")
			}
			return nil
		}
	}

	router := api.SetupRouter(cfg, deps)
	defer router.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

// newGenerator 依設定選擇生成器，只有模型生成器會用到快取
func newGenerator(cfg *config.Config) (chef.Generator, cache.Cache, error) {
	switch cfg.Generator.Provider {
	case "", "template":
		return chef.NewTemplateGenerator(chef.Options{Catalog: catalog.Default()}), nil, nil
	case "openrouter":
		c, err := cache.New(cfg.Cache)
		if err != nil {
			return nil, nil, err
		}
		llm := openrouter.NewClient(cfg.Generator)
		common.LogInfo("Using model generator", zap.String("model", llm.Model()))
		return chef.NewLLMGenerator(llm, c, 0), c, nil
	default:
		return nil, nil, fmt.Errorf("unknown generator provider %q", cfg.Generator.Provider)
	}
}
