package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const developmentJWTSecret = "smartbites-development-secret"

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Nutrition UpstreamConfig  `mapstructure:"nutrition"`
	Recipes   UpstreamConfig  `mapstructure:"recipes"`
	Search    SearchConfig    `mapstructure:"search"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Prompt    PromptConfig    `mapstructure:"prompt"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string      `mapstructure:"name" validate:"required"`
	Environment Environment `mapstructure:"environment" validate:"required,oneof=development test ci production"`
	LogLevel    string      `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat   string      `mapstructure:"log_format" validate:"oneof=json console"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port" validate:"required,numeric"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" validate:"min=1,dive,required"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	Host       string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name" validate:"required_if=Driver postgres"`
	SSLMode    string `mapstructure:"ssl_mode"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
}

// DSN builds the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	BcryptCost int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// UpstreamConfig describes a third-party HTTP API
type UpstreamConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type SearchConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency" validate:"gte=1"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

type OllamaConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Model   string        `mapstructure:"model" validate:"required"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type PromptConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DefaultPrompt  string `mapstructure:"default_prompt" validate:"required"`
}

type RateLimitConfig struct {
	SuggestionsPerHour int     `mapstructure:"suggestions_per_hour" validate:"gte=1"`
	AnonymousRPS       float64 `mapstructure:"anonymous_rps" validate:"gt=0"`
	AnonymousBurst     int     `mapstructure:"anonymous_burst" validate:"gte=1"`
}

type StorageConfig struct {
	ArchiveImages bool   `mapstructure:"archive_images"`
	S3Bucket      string `mapstructure:"s3_bucket" validate:"required_if=ArchiveImages true"`
	Region        string `mapstructure:"region"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig reads configuration from defaults, an optional config file,
// the environment and Docker secrets, then validates the result.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/smartbites")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.App.Environment = GetEnvironment()
	applySecrets(cfg)

	if cfg.Auth.JWTSecret == "" && cfg.App.Environment != Production {
		cfg.Auth.JWTSecret = developmentJWTSecret
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "smartbites")
	v.SetDefault("app.environment", string(Development))
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 150*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "smartbites")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "smartbites.db")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("nutrition.base_url", "https://api.nal.usda.gov/fdc/v1")
	v.SetDefault("nutrition.api_key", "")
	v.SetDefault("nutrition.timeout", 10*time.Second)

	v.SetDefault("recipes.base_url", "https://api.api-ninjas.com/v1")
	v.SetDefault("recipes.api_key", "")
	v.SetDefault("recipes.timeout", 10*time.Second)

	v.SetDefault("search.max_concurrency", 4)
	v.SetDefault("search.cache_ttl", time.Hour)

	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llava")
	v.SetDefault("ollama.timeout", 120*time.Second)

	v.SetDefault("prompt.currency_symbol", "₱")
	v.SetDefault("prompt.default_prompt", "Suggest a healthy meal for me.")

	v.SetDefault("rate_limit.suggestions_per_hour", 30)
	v.SetDefault("rate_limit.anonymous_rps", 0.5)
	v.SetDefault("rate_limit.anonymous_burst", 5)

	v.SetDefault("storage.archive_images", false)
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// bindLegacyEnv keeps the short variable names used by the deployment scripts working.
func bindLegacyEnv(v *viper.Viper) {
	aliases := map[string][]string{
		"database.host":     {"DATABASE_HOST", "DB_HOST"},
		"database.port":     {"DATABASE_PORT", "DB_PORT"},
		"database.user":     {"DATABASE_USER", "DB_USER"},
		"database.password": {"DATABASE_PASSWORD", "DB_PASSWORD"},
		"database.name":     {"DATABASE_NAME", "DB_NAME"},
		"database.ssl_mode": {"DATABASE_SSL_MODE", "DB_SSL_MODE"},
		"auth.jwt_secret":   {"AUTH_JWT_SECRET", "JWT_SECRET"},
		"nutrition.api_key": {"NUTRITION_API_KEY", "USDA_API_KEY"},
		"recipes.api_key":   {"RECIPES_API_KEY", "NINJAS_API_KEY"},
		"storage.s3_bucket": {"STORAGE_S3_BUCKET", "S3_BUCKET_NAME"},
		"storage.region":    {"STORAGE_REGION", "AWS_REGION"},
	}
	for key, envs := range aliases {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}
