package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the search and verification service
type Config struct {
	General   GeneralConfig    `mapstructure:"general"`
	Server    ServerConfig     `mapstructure:"server"`
	Search    SearchConfig     `mapstructure:"search"`
	Dispatch  DispatchConfig   `mapstructure:"dispatch"`
	Match     MatchConfig      `mapstructure:"match"`
	Verify    VerifyConfig     `mapstructure:"verify"`
	Pipeline  PipelineConfig   `mapstructure:"pipeline"`
	Retailers []RetailerConfig `mapstructure:"retailers"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Sweep     SweepConfig      `mapstructure:"sweep"`
	Providers ProvidersConfig  `mapstructure:"providers"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address   string          `mapstructure:"address"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig contains per-IP rate limiting settings. Limits are
// enforced only when redis is configured.
type RateLimitConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	SearchPerMinute  int  `mapstructure:"search_per_minute"`
	DefaultPerMinute int  `mapstructure:"default_per_minute"`
}

// SearchConfig contains the Google Custom Search settings
type SearchConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	EngineID    string        `mapstructure:"engine_id"`
	Endpoint    string        `mapstructure:"endpoint"`
	PageSize    int           `mapstructure:"page_size"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Backoff     time.Duration `mapstructure:"backoff"`
}

func (s SearchConfig) Validate() error {
	if s.PageSize <= 0 || s.PageSize > 10 {
		return fmt.Errorf("search.page_size must be in 1..10 (Custom Search caps num at 10)")
	}
	if s.MaxAttempts <= 0 {
		return fmt.Errorf("search.max_attempts must be > 0")
	}
	return nil
}

// DispatchConfig bounds the per-retailer search fan-out
type DispatchConfig struct {
	MaxConcurrent    int           `mapstructure:"max_concurrent"`
	RetailerTimeout  time.Duration `mapstructure:"retailer_timeout"`
	AggregateTimeout time.Duration `mapstructure:"aggregate_timeout"`
}

func (d DispatchConfig) Validate() error {
	if d.MaxConcurrent <= 0 {
		return fmt.Errorf("dispatch.max_concurrent must be > 0")
	}
	if d.AggregateTimeout <= 0 {
		return fmt.Errorf("dispatch.aggregate_timeout must be > 0")
	}
	if d.RetailerTimeout <= 0 || d.RetailerTimeout > d.AggregateTimeout {
		return fmt.Errorf("dispatch.retailer_timeout must be > 0 and <= aggregate_timeout")
	}
	return nil
}

// MatchConfig tunes title matching
type MatchConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

func (m MatchConfig) Validate() error {
	if m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("match.threshold must be in [0,1]")
	}
	return nil
}

// VerifyConfig tunes link verification
type VerifyConfig struct {
	Workers        int           `mapstructure:"workers"`
	Attempts       int           `mapstructure:"attempts"`
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout"`
	Backoff        time.Duration `mapstructure:"backoff"`
	Deadline       time.Duration `mapstructure:"deadline"`
	UserAgent      string        `mapstructure:"user_agent"`
	FetchTitle     bool          `mapstructure:"fetch_title"`
}

func (v VerifyConfig) Validate() error {
	if v.Workers <= 0 {
		return fmt.Errorf("verify.workers must be > 0")
	}
	if v.Attempts <= 0 {
		return fmt.Errorf("verify.attempts must be > 0")
	}
	if v.AttemptTimeout <= 0 || v.Deadline <= 0 {
		return fmt.Errorf("verify.attempt_timeout and verify.deadline must be > 0")
	}
	return nil
}

// PipelineConfig caps the emitted result set
type PipelineConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

func (p PipelineConfig) Validate() error {
	if p.MaxResults <= 0 {
		return fmt.Errorf("pipeline.max_results must be > 0")
	}
	return nil
}

// RetailerConfig is one configured storefront, scoped by a site filter
type RetailerConfig struct {
	ID          string `mapstructure:"id"`
	DisplayName string `mapstructure:"display_name"`
	SiteFilter  string `mapstructure:"site_filter"`
}

// RedisConfig contains redis settings (rate limiting and sweep locks).
// Leaving host empty disables redis-backed features.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func (r RedisConfig) Validate() error {
	if r.Host != "" && r.Port == "" {
		return fmt.Errorf("redis.port required when redis.host is set")
	}
	return nil
}

// SweepConfig drives the periodic retailer availability sweep
type SweepConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ProvidersConfig carries optional third-party provider credentials.
// The LLM key is reserved for delegated title matching and is not
// consumed by the pipeline itself.
type ProvidersConfig struct {
	LLMAPIKey string `mapstructure:"llm_api_key"`
}

// LoadConfig loads config from file, with PRICEPILOT_* env overrides
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.rate_limit.enabled", true)
	viper.SetDefault("server.rate_limit.search_per_minute", 20)
	viper.SetDefault("server.rate_limit.default_per_minute", 100)
	viper.SetDefault("search.api_key", "")
	viper.SetDefault("search.engine_id", "")
	viper.SetDefault("search.endpoint", "https://www.googleapis.com/customsearch/v1")
	viper.SetDefault("search.page_size", 10)
	viper.SetDefault("search.timeout", 5*time.Second)
	viper.SetDefault("search.max_attempts", 2)
	viper.SetDefault("search.backoff", 300*time.Millisecond)
	viper.SetDefault("dispatch.max_concurrent", 5)
	viper.SetDefault("dispatch.retailer_timeout", 5*time.Second)
	viper.SetDefault("dispatch.aggregate_timeout", 8*time.Second)
	viper.SetDefault("match.threshold", 0.3)
	viper.SetDefault("verify.workers", 10)
	viper.SetDefault("verify.attempts", 2)
	viper.SetDefault("verify.attempt_timeout", 3*time.Second)
	viper.SetDefault("verify.backoff", 250*time.Millisecond)
	viper.SetDefault("verify.deadline", 6*time.Second)
	viper.SetDefault("verify.user_agent", "pricepilot/1.0 (+link verification)")
	viper.SetDefault("verify.fetch_title", true)
	viper.SetDefault("pipeline.max_results", 20)
	viper.SetDefault("sweep.enabled", false)
	viper.SetDefault("sweep.schedule", "@hourly")
	viper.SetDefault("sweep.timeout", 30*time.Second)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("PRICEPILOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
		// no config file: defaults plus env are enough to run
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if len(config.Retailers) == 0 {
		config.Retailers = DefaultRetailers()
	}

	if err := config.Search.Validate(); err != nil {
		panic(err)
	}
	if err := config.Dispatch.Validate(); err != nil {
		panic(err)
	}
	if err := config.Match.Validate(); err != nil {
		panic(err)
	}
	if err := config.Verify.Validate(); err != nil {
		panic(err)
	}
	if err := config.Pipeline.Validate(); err != nil {
		panic(err)
	}
	if err := config.Redis.Validate(); err != nil {
		panic(err)
	}
	return &config
}
