package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/tier"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Server         ServerConfig      `json:"server"`
	Database       DatabaseConfig    `json:"database"`
	Redis          RedisConfig       `json:"redis"`
	Auth           AuthConfig        `json:"auth"`
	AI             AIConfig          `json:"ai"`
	Payments       PaymentsConfig    `json:"payments"`
	RateLimitTiers []RateLimiterTier `json:"rate_limit_tiers"`
	Usage          UsageConfig       `json:"usage"`
	Seed           SeedConfig        `json:"seed"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
	// IANA zone the daily token budget rolls over in
	Timezone       string   `json:"timezone"`
	AllowedOrigins []string `json:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver string `json:"driver"` // postgres or memory
	URL    string `json:"url"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AuthConfig struct {
	JWTSecret     string `json:"jwt_secret"`
	TokenTTLHours int    `json:"token_ttl_hours"`
}

type AIConfig struct {
	APIKeys        []string      `json:"api_keys"`
	BaseURL        string        `json:"base_url"`
	KeyStrategy    string        `json:"key_strategy"`
	TimeoutSeconds int           `json:"timeout_seconds"`
	Breaker        BreakerConfig `json:"circuit_breaker"`
}

type BreakerConfig struct {
	MaxFailures     int `json:"max_failures"`
	TimeoutSeconds  int `json:"timeout_seconds"`
	HalfOpenSuccess int `json:"half_open_success"`
}

type PaymentsConfig struct {
	StripeSecretKey string `json:"stripe_secret_key"`
	WebhookSecret   string `json:"webhook_secret"`
	AppURL          string `json:"app_url"`
	Currency        string `json:"currency"`
}

type RateLimiterTier struct {
	Name              string `json:"name"`
	RequestsPerMinute int    `json:"requests_per_minute"`
	Algorithm         string `json:"algorithm"`
}

type UsageConfig struct {
	BufferSize      int    `json:"buffer_size"`
	RetentionDays   int    `json:"retention_days"`
	CleanupSchedule string `json:"cleanup_schedule"`
}

type SeedConfig struct {
	Path    string `json:"path"`
	OnStart bool   `json:"on_start"`
}

// Load reads the JSON config at path if it exists, fills defaults and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	var config Config

	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := json.Unmarshal(file, &config); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Environment == "" {
		c.Server.Environment = "development"
	}
	if c.Database.Driver == "" {
		if c.Database.URL == "" {
			c.Database.Driver = "memory"
		} else {
			c.Database.Driver = "postgres"
		}
	}
	if c.Redis.Port == "" {
		c.Redis.Port = "6379"
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = defaultJWTSecret
	}
	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.openai.com/v1"
	}
	if c.AI.KeyStrategy == "" {
		c.AI.KeyStrategy = "round_robin"
	}
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = 60
	}
	if c.Payments.AppURL == "" {
		c.Payments.AppURL = "http://localhost:5000"
	}
	if c.Payments.Currency == "" {
		c.Payments.Currency = "inr"
	}
	if len(c.RateLimitTiers) == 0 {
		algorithms := map[models.Tier]string{
			models.TierFree:    "fixed_window",
			models.TierBasic:   "fixed_window",
			models.TierPro:     "sliding_window",
			models.TierPremium: "sliding_window",
		}
		for _, t := range []models.Tier{models.TierFree, models.TierBasic, models.TierPro, models.TierPremium} {
			c.RateLimitTiers = append(c.RateLimitTiers, RateLimiterTier{
				Name:              string(t),
				RequestsPerMinute: tier.Lookup(t).RequestsPerMinute,
				Algorithm:         algorithms[t],
			})
		}
	}
	if c.Usage.BufferSize <= 0 {
		c.Usage.BufferSize = 1000
	}
	if c.Usage.RetentionDays <= 0 {
		c.Usage.RetentionDays = 90
	}
	if c.Usage.CleanupSchedule == "" {
		c.Usage.CleanupSchedule = "0 3 * * *"
	}
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Environment, "ENVIRONMENT")
	setString(&c.Server.Timezone, "BUDGET_TIMEZONE")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.Driver, "STORAGE_DRIVER")
	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.AI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.Payments.StripeSecretKey, "STRIPE_SECRET_KEY")
	setString(&c.Payments.WebhookSecret, "STRIPE_WEBHOOK_SECRET")
	setString(&c.Payments.AppURL, "APP_URL")
	setString(&c.Seed.Path, "SEED_PATH")

	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		keys := make([]string, 0)
		for _, k := range strings.Split(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		c.AI.APIKeys = keys
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database url is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Database.Driver)
	}

	if c.IsProduction() && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Server.Timezone, err)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Location returns the timezone the daily budget resets in. Empty means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Server.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Server.Timezone)
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) GetRedisAddr() string {
	return r.Host + ":" + r.Port
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

func (a AIConfig) Enabled() bool {
	return len(a.APIKeys) > 0
}

func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RateLimitTier returns the limiter settings for a subscription tier, or nil.
func (c *Config) RateLimitTier(name string) *RateLimiterTier {
	for i := range c.RateLimitTiers {
		if c.RateLimitTiers[i].Name == name {
			return &c.RateLimitTiers[i]
		}
	}
	return nil
}
