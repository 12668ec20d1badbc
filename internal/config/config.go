package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Policies applied when the startup sequencer runs out of attempts.
const (
	OnExhaustedDegrade = "degrade"
	OnExhaustedExit    = "exit"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Startup   StartupConfig
	Items     ItemsConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	PoolSize       int32
	AcquireTimeout time.Duration
	ConnectTimeout time.Duration
}

// StartupConfig controls the schema initialization retry loop.
type StartupConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	OnExhausted string
}

type ItemsConfig struct {
	// StrictReplace makes PUT reject an empty name the same way POST does.
	StrictReplace bool
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port of the Redis server.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "items")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_SIZE", 5)
	v.SetDefault("DB_ACQUIRE_TIMEOUT", 5)
	v.SetDefault("DB_CONNECT_TIMEOUT", 5)

	v.SetDefault("STARTUP_MAX_ATTEMPTS", 12)
	v.SetDefault("STARTUP_RETRY_DELAY", 2)
	v.SetDefault("STARTUP_ON_EXHAUSTED", OnExhaustedDegrade)

	v.SetDefault("ITEMS_STRICT_REPLACE", false)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("REDIS_PORT", "6379")

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Environment:     v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: time.Duration(v.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetInt("DB_PORT"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			SSLMode:        v.GetString("DB_SSLMODE"),
			PoolSize:       v.GetInt32("DB_POOL_SIZE"),
			AcquireTimeout: time.Duration(v.GetInt("DB_ACQUIRE_TIMEOUT")) * time.Second,
			ConnectTimeout: time.Duration(v.GetInt("DB_CONNECT_TIMEOUT")) * time.Second,
		},
		Startup: StartupConfig{
			MaxAttempts: v.GetInt("STARTUP_MAX_ATTEMPTS"),
			RetryDelay:  time.Duration(v.GetInt("STARTUP_RETRY_DELAY")) * time.Second,
			OnExhausted: strings.ToLower(strings.TrimSpace(v.GetString("STARTUP_ON_EXHAUSTED"))),
		},
		Items: ItemsConfig{
			StrictReplace: v.GetBool("ITEMS_STRICT_REPLACE"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.PoolSize < 1 {
		return fmt.Errorf("DB_POOL_SIZE must be at least 1, got %d", c.Database.PoolSize)
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("invalid DB_PORT: %d", c.Database.Port)
	}
	if c.Startup.MaxAttempts < 1 {
		return fmt.Errorf("STARTUP_MAX_ATTEMPTS must be at least 1, got %d", c.Startup.MaxAttempts)
	}
	if c.Startup.RetryDelay < 0 {
		return fmt.Errorf("STARTUP_RETRY_DELAY must not be negative")
	}
	switch c.Startup.OnExhausted {
	case OnExhaustedDegrade, OnExhaustedExit:
	default:
		return fmt.Errorf("STARTUP_ON_EXHAUSTED must be %q or %q, got %q", OnExhaustedDegrade, OnExhaustedExit, c.Startup.OnExhausted)
	}
	if c.RateLimit.UseRedis && c.Redis.Host == "" {
		return fmt.Errorf("RATE_LIMIT_USE_REDIS requires REDIS_HOST")
	}
	return nil
}
