package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Rank        RankConfig       `mapstructure:"rank"`
	Sources     SourcesConfig    `mapstructure:"sources"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Pipeline    PipelineConfig   `mapstructure:"pipeline"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// OpenRouterConfig 生成式模型（OpenRouter）配置
type OpenRouterConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	APIKey       string        `mapstructure:"api_key"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// RankConfig 排序推薦服務（快速路徑）配置
type RankConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout"`
	RecommendTimeout time.Duration `mapstructure:"recommend_timeout"`
}

// SourcesConfig 零售商來源配置
type SourcesConfig struct {
	Enabled      []string      `mapstructure:"enabled"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	NaivasURL    string        `mapstructure:"naivas_url"`
	QuickmartURL string        `mapstructure:"quickmart_url"`
	CarrefourURL string        `mapstructure:"carrefour_url"`
}

// CacheConfig 商品搜尋結果快取配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // redis 或 memory
	RedisAddr       string        `mapstructure:"redis_addr"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// PipelineConfig 購物籃 pipeline 配置
type PipelineConfig struct {
	PairDeadline   time.Duration `mapstructure:"pair_deadline"`   // 單一 (詞 × 來源) 的軟性期限
	OverallTimeout time.Duration `mapstructure:"overall_timeout"` // 整條 pipeline 的上限
	Workers        int           `mapstructure:"workers"`         // fan-out 併發上限
	BudgetMin      float64       `mapstructure:"budget_min"`
	BudgetMax      float64       `mapstructure:"budget_max"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在也沒關係）
	_ = godotenv.Load()

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	viper.BindEnv("openrouter.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("rank.base_url", "RANK_SERVICE_URL")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.backend", "CACHE_BACKEND")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "pantryip")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.idle_timeout", "120s")

	// OpenRouter 設定
	viper.SetDefault("openrouter.enabled", true)
	viper.SetDefault("openrouter.model", "google/gemini-2.0-flash-001")
	viper.SetDefault("openrouter.max_tokens", 2048)
	viper.SetDefault("openrouter.timeout", "60s")
	viper.SetDefault("openrouter.max_retries", 2)
	viper.SetDefault("openrouter.retry_backoff", "2s")

	// 排序服務設定
	viper.SetDefault("rank.base_url", "http://localhost:8000")
	viper.SetDefault("rank.probe_timeout", "2s")
	viper.SetDefault("rank.recommend_timeout", "8s")

	// 零售商來源設定
	viper.SetDefault("sources.enabled", []string{"naivas", "quickmart", "carrefour"})
	viper.SetDefault("sources.fetch_timeout", "5s")
	viper.SetDefault("sources.naivas_url", "https://naivas.online")
	viper.SetDefault("sources.quickmart_url", "https://www.quickmart.co.ke")
	viper.SetDefault("sources.carrefour_url", "https://www.carrefour.ke")

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.backend", "redis")
	viper.SetDefault("cache.redis_addr", "localhost:6379")
	viper.SetDefault("cache.ttl", "6h")
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.cleanup_interval", "10m")

	// pipeline 設定
	viper.SetDefault("pipeline.pair_deadline", "7s")
	viper.SetDefault("pipeline.overall_timeout", "90s")
	viper.SetDefault("pipeline.workers", 8)
	viper.SetDefault("pipeline.budget_min", 50)
	viper.SetDefault("pipeline.budget_max", 50000)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")

	// dedup window 預設
	viper.SetDefault("dedup_window", "1s")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.Backend != "redis" && config.Cache.Backend != "memory" {
			return fmt.Errorf("invalid cache backend: %s", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	// 驗證來源設定
	if len(config.Sources.Enabled) == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	if config.Sources.FetchTimeout <= 0 {
		return fmt.Errorf("invalid source fetch timeout")
	}

	// 驗證 pipeline 設定
	if config.Pipeline.PairDeadline <= 0 {
		return fmt.Errorf("invalid pipeline pair deadline")
	}
	if config.Pipeline.Workers <= 0 {
		return fmt.Errorf("invalid pipeline workers")
	}
	if config.Pipeline.BudgetMin <= 0 || config.Pipeline.BudgetMax <= config.Pipeline.BudgetMin {
		return fmt.Errorf("invalid budget bounds")
	}

	return nil
}
