package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Source SourceConfig `mapstructure:"source"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Fetch  FetchConfig  `mapstructure:"fetch"`

	PipelineAPIKey string `mapstructure:"pipeline_api_key"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DBConfig selects the store backend. Driver is "postgres" or "sqlite";
// Path is only used by sqlite.
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
}

// SourceConfig describes the scraped finance website.
type SourceConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// FetchConfig holds the defaults for a fetch run.
type FetchConfig struct {
	Threads  int `mapstructure:"threads"`
	MaxPages int `mapstructure:"max_pages"`
}

var appConfig *Config

// Load reads configuration from .env file, environment variables, and defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	setDefaults(v)

	// "db.host" -> "DB_HOST"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v, v.AllKeys()...)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return &cfg, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "stocks")
	v.SetDefault("db.password", "stocks")
	v.SetDefault("db.name", "stocks")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "stocks.db")

	v.SetDefault("source.base_url", "https://www.nasdaq.com")
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("fetch.threads", 4)
	v.SetDefault("fetch.max_pages", 1)

	v.SetDefault("pipeline_api_key", "")
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be postgres or sqlite", c.DB.Driver)
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("SOURCE_TIMEOUT must be positive, got %v", c.Source.Timeout)
	}
	if c.Fetch.Threads < 1 {
		return fmt.Errorf("FETCH_THREADS must be at least 1, got %d", c.Fetch.Threads)
	}
	if c.Fetch.MaxPages < 0 {
		return fmt.Errorf("FETCH_MAX_PAGES must not be negative, got %d", c.Fetch.MaxPages)
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
