package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = validator.New()

// ValidateConfig checks struct constraints plus the rules that depend on the environment
func ValidateConfig(cfg *Config) error {
	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, ValidationError{
				Field:   fe.Namespace(),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			}.Error())
		}
	}

	if cfg.App.Environment == Production {
		if cfg.Auth.JWTSecret == "" || cfg.Auth.JWTSecret == developmentJWTSecret {
			problems = append(problems, ValidationError{Field: "auth.jwt_secret", Message: "a jwt_secret secret is required in production"}.Error())
		}
		if cfg.Database.Driver == "postgres" && cfg.Database.Password == "" {
			problems = append(problems, ValidationError{Field: "database.password", Message: "a db_password secret is required in production"}.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
