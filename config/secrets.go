package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultSecretsDir = "/run/secrets"

// applySecrets fills sensitive values from Docker secrets when the
// environment did not provide them.
func applySecrets(cfg *Config) {
	fill := func(dst *string, name string) {
		if *dst == "" {
			*dst = readSecret(name)
		}
	}

	fill(&cfg.Database.Password, "db_password")
	fill(&cfg.Auth.JWTSecret, "jwt_secret")
	fill(&cfg.Redis.Password, "redis_password")
	fill(&cfg.Redis.URL, "redis_url")
	fill(&cfg.Nutrition.APIKey, "usda_api_key")
	fill(&cfg.Recipes.APIKey, "ninjas_api_key")
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = defaultSecretsDir
	}
	data, err := os.ReadFile(filepath.Join(secretsDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
