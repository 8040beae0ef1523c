// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Partner  PartnerConfig  `mapstructure:"partner"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

// FeedConfig holds FTP feed source settings.
type FeedConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Dir      string        `mapstructure:"dir"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PartnerConfig holds partner detail API settings.
type PartnerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// ScheduleConfig holds the nightly refresh schedule settings.
type ScheduleConfig struct {
	Expression      string        `mapstructure:"expression"` // standard 5-field cron
	Timezone        string        `mapstructure:"timezone"`   // IANA name, e.g. Europe/Madrid
	OnStartup       bool          `mapstructure:"on_startup"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DistributedLock bool          `mapstructure:"distributed_lock"`
}

// CacheConfig holds cache store settings. Namespaces maps each namespace
// name to its default entry TTL.
type CacheConfig struct {
	Backend    string                   `mapstructure:"backend"` // memory, redis
	KeyPrefix  string                   `mapstructure:"key_prefix"`
	Namespaces map[string]time.Duration `mapstructure:"namespaces"`
}

// RedisConfig holds Redis connection settings for the redis cache backend
// and distributed locking.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the host:port address for the Redis client.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "property-feed-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)

	// Feed defaults
	v.SetDefault("feed.host", "localhost")
	v.SetDefault("feed.port", 21)
	v.SetDefault("feed.user", "anonymous")
	v.SetDefault("feed.password", "")
	v.SetDefault("feed.dir", "/feeds")
	v.SetDefault("feed.timeout", "30s")

	// Partner defaults
	v.SetDefault("partner.base_url", "http://localhost:8081")
	v.SetDefault("partner.token", "")
	v.SetDefault("partner.timeout", "10s")
	v.SetDefault("partner.retry.max_attempts", 3)
	v.SetDefault("partner.retry.wait_time", "1s")
	v.SetDefault("partner.retry.max_wait_time", "5s")
	v.SetDefault("partner.circuit_breaker.max_requests", 3)
	v.SetDefault("partner.circuit_breaker.interval", "60s")
	v.SetDefault("partner.circuit_breaker.timeout", "30s")
	v.SetDefault("partner.circuit_breaker.failure_ratio", 0.5)

	// Schedule defaults: refresh every morning at 06:00 Madrid time.
	v.SetDefault("schedule.expression", "0 6 * * *")
	v.SetDefault("schedule.timezone", "Europe/Madrid")
	v.SetDefault("schedule.on_startup", true)
	v.SetDefault("schedule.timeout", "10m")
	v.SetDefault("schedule.distributed_lock", false)

	// Cache defaults
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.key_prefix", "property-feed")
	v.SetDefault("cache.namespaces.properties", "30m")
	v.SetDefault("cache.namespaces.images", "60m")
	v.SetDefault("cache.namespaces.campaign-content", "45m")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}
