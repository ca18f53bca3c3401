package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

// Config holds the full application configuration.
type Config struct {
	Env       string                  `yaml:"env" mapstructure:"env"`
	Log       LogConfig               `yaml:"log" mapstructure:"log"`
	Browser   BrowserConfig           `yaml:"browser" mapstructure:"browser"`
	Sources   map[string]SourceConfig `yaml:"sources" mapstructure:"sources"`
	Retry     RetryConfig             `yaml:"retry" mapstructure:"retry"`
	Extract   ExtractConfig           `yaml:"extract" mapstructure:"extract"`
	Cache     CacheConfig             `yaml:"cache" mapstructure:"cache"`
	Analysis  AnalysisConfig          `yaml:"analysis" mapstructure:"analysis"`
	Scoring   ScoringConfig           `yaml:"scoring" mapstructure:"scoring"`
	Batch     BatchConfig             `yaml:"batch" mapstructure:"batch"`
	Documents DocumentsConfig         `yaml:"documents" mapstructure:"documents"`
	Server    ServerConfig            `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// BrowserConfig configures the headless browser that drives county portals.
type BrowserConfig struct {
	RemoteURL         string  `yaml:"remote_url" mapstructure:"remote_url"`
	Headless          bool    `yaml:"headless" mapstructure:"headless"`
	Stealth           bool    `yaml:"stealth" mapstructure:"stealth"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// SourceConfig overrides one jurisdiction adapter's portal locations.
type SourceConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TaxBaseURL  string `yaml:"tax_base_url" mapstructure:"tax_base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the adapter operation timeout, zero when unset.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// RetryConfig configures retries around portal navigation.
type RetryConfig struct {
	Attempts  int `yaml:"attempts" mapstructure:"attempts"`
	BackoffMs int `yaml:"backoff_ms" mapstructure:"backoff_ms"`
}

// ExtractConfig configures record extraction.
type ExtractConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CacheConfig configures the result cache and its optional shared tier.
type CacheConfig struct {
	Backend           string `yaml:"backend" mapstructure:"backend"`
	DSN               string `yaml:"dsn" mapstructure:"dsn"`
	RedisURL          string `yaml:"redis_url" mapstructure:"redis_url"`
	TTLMinutes        int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	Capacity          int    `yaml:"capacity" mapstructure:"capacity"`
	SweepIntervalSecs int    `yaml:"sweep_interval_secs" mapstructure:"sweep_interval_secs"`
}

// TTL returns the entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// AnalysisConfig configures the document analyzer.
type AnalysisConfig struct {
	AnthropicKey        string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	Model               string `yaml:"model" mapstructure:"model"`
	TimeoutSecs         int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxChars            int    `yaml:"max_chars" mapstructure:"max_chars"`
	BreakerThreshold    int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int    `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// ScoringConfig configures rule-set overrides.
type ScoringConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// BatchConfig configures batch validation.
type BatchConfig struct {
	Size        int `yaml:"size" mapstructure:"size"`
	PauseMs     int `yaml:"pause_ms" mapstructure:"pause_ms"`
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// Pause returns the inter-group pause.
func (b BatchConfig) Pause() time.Duration {
	return time.Duration(b.PauseMs) * time.Millisecond
}

// DocumentsConfig locates property documents on disk.
type DocumentsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// AllowTierOverride honors ?pro=true on requests. Never enable in production.
	AllowTierOverride bool `yaml:"allow_tier_override" mapstructure:"allow_tier_override"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MOTIVATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.requests_per_second", 2.0)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.backoff_ms", 500)
	v.SetDefault("extract.timeout_secs", 90)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl_minutes", 60)
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.sweep_interval_secs", 300)
	v.SetDefault("analysis.model", "claude-haiku-4-5-20251001")
	v.SetDefault("analysis.timeout_secs", 30)
	v.SetDefault("analysis.max_chars", 60000)
	v.SetDefault("analysis.breaker_threshold", 5)
	v.SetDefault("analysis.breaker_cooldown_secs", 60)
	v.SetDefault("batch.size", 5)
	v.SetDefault("batch.pause_ms", 1000)
	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("documents.dir", "documents")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allow_tier_override", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes: "pipeline"
// (every command that scores leads) and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string
	switch mode {
	case "pipeline":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.AllowTierOverride && c.Env == "production" {
			errs = append(errs, "server.allow_tier_override must be false in production")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Batch.Size < 1 {
		errs = append(errs, "batch.size must be >= 1")
	}
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 50 {
		errs = append(errs, "batch.concurrency must be between 1 and 50")
	}
	if c.Batch.PauseMs < 0 {
		errs = append(errs, "batch.pause_ms must be >= 0")
	}
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheSQLite, CachePostgres:
		if c.Cache.DSN == "" {
			errs = append(errs, fmt.Sprintf("cache.dsn is required for backend %s", c.Cache.Backend))
		}
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			errs = append(errs, "cache.redis_url is required for backend redis")
		}
	default:
		errs = append(errs, fmt.Sprintf("cache.backend %q is not one of memory, sqlite, postgres, redis", c.Cache.Backend))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
