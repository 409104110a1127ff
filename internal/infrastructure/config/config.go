package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	API         APIConfig       `mapstructure:"api"`
	Client      ClientConfig    `mapstructure:"client"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Server      ServerConfig    `mapstructure:"server"`
	Generator   GeneratorConfig `mapstructure:"generator"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Ratings     RatingsConfig   `mapstructure:"ratings"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Log         LogConfig       `mapstructure:"log"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// APIConfig 食譜服務位址
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	DevBaseURL string        `mapstructure:"dev_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"` // 0 表示不設逾時
}

// ClientConfig 用戶端行為設定
type ClientConfig struct {
	DebounceWait     time.Duration `mapstructure:"debounce_wait"`
	MaxIngredients   int           `mapstructure:"max_ingredients"`
	CopiedResetAfter time.Duration `mapstructure:"copied_reset_after"`
	AppURL           string        `mapstructure:"app_url"`
}

// StorageConfig 本地持久化設定
type StorageConfig struct {
	Driver     string `mapstructure:"driver"` // memory | file | redis | sqlite
	Path       string `mapstructure:"path"`
	RedisURL   string `mapstructure:"redis_url"`
	SQLitePath string `mapstructure:"sqlite_path"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// GeneratorConfig 開發服務的食譜生成設定
type GeneratorConfig struct {
	Provider  string        `mapstructure:"provider"` // template | openrouter
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"` // memory | redis
	RedisURL        string        `mapstructure:"redis_url"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RatingsConfig 評分儲存設定
type RatingsConfig struct {
	Driver     string `mapstructure:"driver"` // memory | redis | sqlite
	RedisURL   string `mapstructure:"redis_url"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LogConfig 日誌輸出設定
type LogConfig struct {
	File string `mapstructure:"file"`
	Mode string `mapstructure:"mode"`
}

// Options 載入選項
type Options struct {
	EnvFile string // 空字串表示 ".env"，檔案不存在時略過
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	return Load(Options{})
}

// Load 依選項載入設定，使用獨立的 viper 實例
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}

	// 加載 .env 文件，不存在時不視為錯誤
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"api.base_url":         "CHOW_API_BASE_URL",
		"api.dev_base_url":     "CHOW_DEV_API_BASE_URL",
		"storage.driver":       "CHOW_STORAGE_DRIVER",
		"storage.path":         "CHOW_STORAGE_PATH",
		"storage.redis_url":    "REDIS_URL",
		"ratings.redis_url":    "REDIS_URL",
		"generator.provider":   "GENERATOR_PROVIDER",
		"generator.api_key":    "OPENROUTER_API_KEY",
		"generator.model":      "OPENROUTER_MODEL",
		"generator.max_tokens": "MODEL_MAX_TOKENS",
		"cache.enabled":        "CACHE_ENABLED",
		"cache.driver":         "CACHE_DRIVER",
		"rate_limit.enabled":   "RATE_LIMIT_ENABLED",
		"rate_limit.requests":  "RATE_LIMIT_REQUESTS",
		"rate_limit.window":    "RATE_LIMIT_WINDOW",
		"server.port":          "PORT",
		"dedup_window":         "DEDUP_WINDOW",
		"log_level":            "LOG_LEVEL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// ResolveBaseURL 依執行環境選擇食譜服務位址
func (c *Config) ResolveBaseURL() string {
	if c.App.Env == "development" && c.API.DevBaseURL != "" {
		return strings.TrimRight(c.API.DevBaseURL, "/")
	}
	return strings.TrimRight(c.API.BaseURL, "/")
}

// MaskedAPIKey 回傳遮罩後的生成器金鑰，供日誌使用
func (c *Config) MaskedAPIKey() string {
	return maskAPIKey(c.Generator.APIKey)
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "production")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "chuckle-chow")

	// 食譜服務
	v.SetDefault("api.base_url", "https://chuckle-chow-backend.onrender.com")
	v.SetDefault("api.dev_base_url", "http://127.0.0.1:5000")
	v.SetDefault("api.timeout", "0s")

	// 用戶端行為
	v.SetDefault("client.debounce_wait", "500ms")
	v.SetDefault("client.max_ingredients", 7)
	v.SetDefault("client.copied_reset_after", "2s")
	v.SetDefault("client.app_url", "https://chuckle-and-chow.onrender.com/")

	// 本地儲存
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data/chow-state.json")
	v.SetDefault("storage.redis_url", "redis://localhost:6379/0")
	v.SetDefault("storage.sqlite_path", "data/chow.db")
	v.SetDefault("storage.key_prefix", "chow:")

	// 伺服器設定
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// 生成器設定
	v.SetDefault("generator.provider", "template")
	v.SetDefault("generator.model", "qwen/qwen-2.5-72b-instruct:free")
	v.SetDefault("generator.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("generator.max_tokens", 1000)
	v.SetDefault("generator.timeout", "60s")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/1")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 評分儲存
	v.SetDefault("ratings.driver", "memory")
	v.SetDefault("ratings.redis_url", "redis://localhost:6379/0")
	v.SetDefault("ratings.sqlite_path", "data/ratings.db")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 日誌
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.mode", "")
	v.SetDefault("log_level", "info")

	v.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.API.BaseURL == "" && config.API.DevBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if config.API.Timeout < 0 {
		return fmt.Errorf("invalid api timeout")
	}

	// 用戶端行為
	if config.Client.MaxIngredients <= 0 {
		return fmt.Errorf("invalid max ingredients")
	}
	if config.Client.DebounceWait < 0 {
		return fmt.Errorf("invalid debounce wait")
	}

	switch config.Storage.Driver {
	case "memory", "file", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Generator.Provider {
	case "template":
	case "openrouter":
		if config.Generator.APIKey == "" {
			return fmt.Errorf("generator api key is required for provider openrouter")
		}
	default:
		return fmt.Errorf("unknown generator provider %q", config.Generator.Provider)
	}

	switch config.Ratings.Driver {
	case "memory", "redis", "sqlite":
	default:
		return fmt.Errorf("unknown ratings driver %q", config.Ratings.Driver)
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.Driver != "memory" && config.Cache.Driver != "redis" {
			return fmt.Errorf("unknown cache driver %q", config.Cache.Driver)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
