package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Feed      FeedConfig      `mapstructure:"feed"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"` // debug, release, test
	LoginURL string `mapstructure:"login_url"`
	MediaDir string `mapstructure:"media_dir"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // sqlite, postgres
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"` // silent, error, warn, info
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FeedConfig 列表分页与首页缓存
type FeedConfig struct {
	PageSize     int           `mapstructure:"page_size"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	CacheBackend string        `mapstructure:"cache_backend"` // redis, memory
	CachePrefix  string        `mapstructure:"cache_prefix"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
	Cookie string        `mapstructure:"cookie"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.login_url", "/auth/login/")
	v.SetDefault("server.media_dir", "./media")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "yatube.db?_foreign_keys=on")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("feed.page_size", 10)
	v.SetDefault("feed.cache_ttl", 20*time.Second)
	v.SetDefault("feed.cache_backend", "memory")
	v.SetDefault("feed.cache_prefix", "yatube:page:")

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("jwt.cookie", "yatube_session")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.service_name", "yatube")

	v.SetDefault("rate_limit.rps", 5)
	v.SetDefault("rate_limit.burst", 20)
}

// Load 从 config.yaml 与 YATUBE_ 前缀环境变量加载配置
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if p := os.Getenv("YATUBE_CONFIG"); p != "" {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("YATUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 配置文件可选，缺失时使用默认值 + 环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验关键配置
func (c *Config) Validate() error {
	if c.Feed.PageSize < 1 {
		return fmt.Errorf("feed.page_size must be >= 1, got %d", c.Feed.PageSize)
	}
	if c.Feed.CacheTTL <= 0 {
		return fmt.Errorf("feed.cache_ttl must be positive, got %s", c.Feed.CacheTTL)
	}
	switch c.Feed.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown feed.cache_backend %q", c.Feed.CacheBackend)
	}
	if c.Feed.CacheBackend == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("feed.cache_backend=redis requires redis.enabled")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}

// Addr 返回 HTTP 监听地址
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }
