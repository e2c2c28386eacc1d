// Package common provides shared configuration and telemetry for the solar
// analysis applications.
package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds common configuration for all applications.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`

	ListenAddr string        `yaml:"listen_addr"`
	CacheSize  int           `yaml:"cache_size"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`

	ClickHouseHost     string `yaml:"clickhouse_host"`
	ClickHousePort     int    `yaml:"clickhouse_port"`
	ClickHouseDatabase string `yaml:"clickhouse_database"`
	ClickHouseUser     string `yaml:"clickhouse_user"`
	ClickHousePassword string `yaml:"clickhouse_password"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:            getEnv("SOLAR_DATA_DIR", "data"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ListenAddr:         getEnv("SOLAR_LISTEN_ADDR", ":8501"),
		CacheSize:          getEnvInt("SOLAR_CACHE_SIZE", 16),
		CacheTTL:           getEnvDuration("SOLAR_CACHE_TTL", 10*time.Minute),
		ClickHouseHost:     getEnv("CLICKHOUSE_HOST", "localhost"),
		ClickHousePort:     getEnvInt("CLICKHOUSE_PORT", 9000),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solar"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
	}
}

// LoadFile overlays a YAML file on top of the defaults. Keys missing from the
// file keep their default value.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load returns the environment defaults, overlaid with the YAML file at path
// when path is not empty.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no application can run with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data dir is required")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// ClickHouseAddr returns host:port of the ClickHouse native endpoint.
func (c *Config) ClickHouseAddr() string {
	return fmt.Sprintf("%s:%d", c.ClickHouseHost, c.ClickHousePort)
}

// NewLogger builds a logrus logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return log
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
