package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                 string        `mapstructure:"PORT"`
	Env                  string        `mapstructure:"ENV"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	LogFormat            string        `mapstructure:"LOG_FORMAT"`
	CORSOrigins          []string      `mapstructure:"CORS_ORIGINS"`
	RedisURL             string        `mapstructure:"REDIS_URL"`
	RedisStream          string        `mapstructure:"REDIS_STREAM"`
	RedisStreamMaxLen    int64         `mapstructure:"REDIS_STREAM_MAXLEN"`
	NotificationCapacity int           `mapstructure:"NOTIFICATION_CAPACITY"`
	SeedDemo             bool          `mapstructure:"SEED_DEMO"`
	ShutdownTimeout      time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT", "CORS_ORIGINS",
	"REDIS_URL", "REDIS_STREAM", "REDIS_STREAM_MAXLEN",
	"NOTIFICATION_CAPACITY", "SEED_DEMO", "SHUTDOWN_TIMEOUT",
}

// Load читает .env (если есть) и переменные окружения поверх значений по умолчанию
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "9091")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("REDIS_STREAM", "medidesk:events")
	v.SetDefault("REDIS_STREAM_MAXLEN", 10000)
	v.SetDefault("NOTIFICATION_CAPACITY", 200)
	v.SetDefault("SEED_DEMO", true)
	v.SetDefault("SHUTDOWN_TIMEOUT", "5s")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env не обязателен, но битый файл это ошибка
	if err := v.ReadInConfig(); err != nil && !isConfigNotFound(err) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitOrigins(v.GetString("CORS_ORIGINS"))
	return cfg, nil
}

func isConfigNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// Validate отсекает конфигурации, с которыми сервер не стартует
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.NotificationCapacity <= 0 {
		return fmt.Errorf("NOTIFICATION_CAPACITY must be > 0, got %d", c.NotificationCapacity)
	}
	if c.RedisStreamMaxLen < 0 {
		return fmt.Errorf("REDIS_STREAM_MAXLEN must be >= 0, got %d", c.RedisStreamMaxLen)
	}
	if c.RedisURL != "" && c.RedisStream == "" {
		return fmt.Errorf("REDIS_STREAM is required when REDIS_URL is set")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be \"json\" or \"console\", got %q", c.LogFormat)
	}
	return nil
}
