package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Resilience ResilienceConfig `mapstructure:"resilience"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// CacheConfig controls the cache-aside read path. When Enabled is false the
// service talks to the store directly and Redis is never dialed.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// PolicyConfig holds the tunables for one named circuit-breaker +
// time-limiter pair.
type PolicyConfig struct {
	FailureRateThreshold float64       `mapstructure:"failure_rate_threshold"` // 0..1
	SlidingWindowSize    uint32        `mapstructure:"sliding_window_size"`
	OpenStateWait        time.Duration `mapstructure:"open_state_wait"`
	HalfOpenCalls        uint32        `mapstructure:"half_open_calls"`
	CallTimeout          time.Duration `mapstructure:"call_timeout"`
}

// ResilienceConfig holds the two policy pairs: wallet guards the read
// operations, record guards the write operations.
type ResilienceConfig struct {
	Wallet PolicyConfig `mapstructure:"wallet"`
	Record PolicyConfig `mapstructure:"record"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: YANKI.
// Nested keys use underscore: YANKI_DATABASE_HOST, YANKI_CACHE_ENABLED, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9081)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "yanki")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("resilience.wallet.failure_rate_threshold", 0.5)
	v.SetDefault("resilience.wallet.sliding_window_size", 10)
	v.SetDefault("resilience.wallet.open_state_wait", "30s")
	v.SetDefault("resilience.wallet.half_open_calls", 3)
	v.SetDefault("resilience.wallet.call_timeout", "2s")
	v.SetDefault("resilience.record.failure_rate_threshold", 0.5)
	v.SetDefault("resilience.record.sliding_window_size", 10)
	v.SetDefault("resilience.record.open_state_wait", "30s")
	v.SetDefault("resilience.record.half_open_calls", 3)
	v.SetDefault("resilience.record.call_timeout", "4s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: YANKI_DATABASE_HOST -> database.host
	v.SetEnvPrefix("YANKI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
