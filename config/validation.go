package config

import (
	"fmt"
	"strconv"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the loaded configuration is usable.
func ValidateConfig(cfg *Config) error {
	if cfg.DBUser == "" {
		return ValidationError{Field: "DB_USER", Message: "database user is required"}
	}
	if cfg.DBName == "" {
		return ValidationError{Field: "DB_NAME", Message: "database name is required"}
	}
	if cfg.JWTSecret == "" {
		return ValidationError{Field: "JWT_SECRET", Message: "JWT secret is required"}
	}
	if IsProduction() && len(cfg.JWTSecret) < 32 {
		return ValidationError{Field: "JWT_SECRET", Message: "JWT secret must be at least 32 characters in production"}
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		return ValidationError{Field: "SERVER_PORT", Message: "server port must be numeric"}
	}
	if cfg.GeminiAPIKey != "" && cfg.GeminiModel == "" {
		return ValidationError{Field: "GEMINI_MODEL", Message: "model is required when a Gemini API key is set"}
	}
	return nil
}
