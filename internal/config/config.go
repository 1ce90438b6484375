package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	MarksheetCacheTTL time.Duration
	PassingPercentage float64
	IssuePlace        string
	ImportRateLimit   int
	ImportRateWindow  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MARKSHEET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Marksheet API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("passing_percentage", 33.0)
	v.SetDefault("issue_place", "")
	v.SetDefault("import_rate_limit", 5)
	v.SetDefault("import_rate_window", "1m")

	ttl, err := time.ParseDuration(v.GetString("cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid marksheet cache ttl: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("import_rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid import rate window: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		MarksheetCacheTTL: ttl,
		PassingPercentage: v.GetFloat64("passing_percentage"),
		IssuePlace:        v.GetString("issue_place"),
		ImportRateLimit:   v.GetInt("import_rate_limit"),
		ImportRateWindow:  window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.PassingPercentage < 0 || cfg.PassingPercentage > 100 {
		return Config{}, fmt.Errorf("passing percentage must be within [0, 100]")
	}

	return cfg, nil
}
