package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("OLLAMA_MODEL", "llama3")
	t.Setenv("SEARCH_MAX_CONCURRENCY", "8")
	t.Setenv("NUTRITION_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.App.Environment)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "postgres", cfg.Database.Password)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "llama3", cfg.Ollama.Model)
	assert.Equal(t, 8, cfg.Search.MaxConcurrency)
	assert.Equal(t, 3*time.Second, cfg.Nutrition.Timeout)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "https://api.nal.usda.gov/fdc/v1", cfg.Nutrition.BaseURL)
	assert.Equal(t, "https://api.api-ninjas.com/v1", cfg.Recipes.BaseURL)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, 120*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "₱", cfg.Prompt.CurrencySymbol)
	assert.Equal(t, developmentJWTSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "usda_api_key"), []byte("usda-key"), 0o600))

	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", dir)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "from-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "usda-key", cfg.Nutrition.APIKey)
}

func TestValidateConfig(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	t.Run("should reject production without a jwt secret", func(t *testing.T) {
		prod := *cfg
		prod.App.Environment = Production
		prod.Auth.JWTSecret = developmentJWTSecret
		prod.Database.Password = "secret"

		err := ValidateConfig(&prod)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "auth.jwt_secret")
	})

	t.Run("should reject unknown database driver", func(t *testing.T) {
		bad := *cfg
		bad.Database.Driver = "mysql"

		err := ValidateConfig(&bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Driver")
	})

	t.Run("should require a bucket when archiving images", func(t *testing.T) {
		bad := *cfg
		bad.Storage.ArchiveImages = true
		bad.Storage.S3Bucket = ""

		assert.Error(t, ValidateConfig(&bad))
	})

	t.Run("should require at least one allowed origin", func(t *testing.T) {
		bad := *cfg
		bad.Server.AllowedOrigins = nil

		err := ValidateConfig(&bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AllowedOrigins")
	})
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("prod"))
	assert.Equal(t, Production, ParseEnvironment(" Production "))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment(""))
	assert.Equal(t, Development, ParseEnvironment("staging"))
}
