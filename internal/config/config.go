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
	NATSURL           string
	JWTSecret         string
	TokenTTL          time.Duration
	DashboardCacheTTL time.Duration
	GracePeriod       time.Duration
	OracleAPIKey      string
	OracleModel       string
	OracleBaseURL     string
	OracleMaxAttempts int
	OracleMinBackoff  time.Duration
	OracleMaxBackoff  time.Duration
	OracleCallTimeout time.Duration
	AdminName         string
	AdminEmail        string
	AdminPassword     string
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
	v.SetEnvPrefix("EXAMPORTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Exam Portal API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("grace.period", "30s")
	v.SetDefault("oracle.model", "gpt-4o-mini")
	v.SetDefault("oracle.max_attempts", 3)
	v.SetDefault("oracle.min_backoff", "1s")
	v.SetDefault("oracle.max_backoff", "30s")
	v.SetDefault("oracle.call_timeout", "60s")

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		OracleAPIKey:      v.GetString("oracle.api_key"),
		OracleModel:       v.GetString("oracle.model"),
		OracleBaseURL:     v.GetString("oracle.base_url"),
		OracleMaxAttempts: v.GetInt("oracle.max_attempts"),
		AdminName:         v.GetString("admin.name"),
		AdminEmail:        v.GetString("admin.email"),
		AdminPassword:     v.GetString("admin.password"),
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"token.ttl", &cfg.TokenTTL},
		{"dashboard.cache_ttl", &cfg.DashboardCacheTTL},
		{"grace.period", &cfg.GracePeriod},
		{"oracle.min_backoff", &cfg.OracleMinBackoff},
		{"oracle.max_backoff", &cfg.OracleMaxBackoff},
		{"oracle.call_timeout", &cfg.OracleCallTimeout},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.OracleMaxAttempts <= 0 {
		cfg.OracleMaxAttempts = 3
	}

	return cfg, nil
}
