package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ListenAddr     string `mapstructure:"listen_addr"`
	RulesFile      string `mapstructure:"rules_file"`
	PublishersFile string `mapstructure:"publishers_file"`

	FetchTimeoutSeconds int64         `mapstructure:"fetch_timeout_seconds"`
	FetchTimeout        time.Duration `mapstructure:"-"`
	MaxBodyBytes        int64         `mapstructure:"max_body_bytes"`
	BatchMaxURLs        int           `mapstructure:"batch_max_urls"`
	BatchConcurrency    int           `mapstructure:"batch_concurrency"`

	RewriteBaseURL        string        `mapstructure:"rewrite_base_url"`
	RewriteAPIKey         string        `mapstructure:"rewrite_api_key"`
	RewriteModel          string        `mapstructure:"rewrite_model"`
	RewriteMaxTokens      int           `mapstructure:"rewrite_max_tokens"`
	RewriteMinChars       int           `mapstructure:"rewrite_min_chars"`
	RewriteTimeoutSeconds int64         `mapstructure:"rewrite_timeout_seconds"`
	RewriteTimeout        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "cdi-news-importer")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("rules_file", "")
	v.SetDefault("publishers_file", "")
	v.SetDefault("fetch_timeout_seconds", 15)
	v.SetDefault("max_body_bytes", int64(2<<20))
	v.SetDefault("batch_max_urls", 20)
	v.SetDefault("batch_concurrency", 8)
	v.SetDefault("rewrite_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("rewrite_api_key", "")
	v.SetDefault("rewrite_model", "llama-3.1-8b-instant")
	v.SetDefault("rewrite_max_tokens", 2000)
	v.SetDefault("rewrite_min_chars", 100)
	v.SetDefault("rewrite_timeout_seconds", 30)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/imports.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.FetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid fetch_timeout_seconds (must be positive seconds)")
	}
	cfg.FetchTimeout = time.Duration(cfg.FetchTimeoutSeconds) * time.Second

	if cfg.RewriteTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid rewrite_timeout_seconds (must be positive seconds)")
	}
	cfg.RewriteTimeout = time.Duration(cfg.RewriteTimeoutSeconds) * time.Second

	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("invalid max_body_bytes (must be positive)")
	}
	if cfg.BatchMaxURLs <= 0 {
		return nil, fmt.Errorf("invalid batch_max_urls (must be positive)")
	}
	if cfg.BatchConcurrency <= 0 {
		return nil, fmt.Errorf("invalid batch_concurrency (must be positive)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// RewriteEnabled reports whether the optional rewrite stage is configured.
func (c *Config) RewriteEnabled() bool {
	return c != nil && c.RewriteAPIKey != ""
}
