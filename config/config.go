// Package config provides configuration management for the todograph service.
// It handles loading and validation of configuration values from environment variables,
// with support for default values and collective error reporting.
// Every setting has a default so the service runs out of the box with the
// tutorial's values (port 3000, secret "secret", debug token for "Bob").
package config

import (
	"fmt"
	// `os` package provides operating system functionalities, like reading environment variables.
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/user/todograph-go/apperror"
)

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret         string `validate:"required"` // Secret key for signing and verifying JWTs
	DebugTokenEnabled bool   // Inject a signed token into every GraphQL request
	DebugTokenUser    string `validate:"required_if=DebugTokenEnabled true"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string        `validate:"required,numeric"` // Port for the HTTP server
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// GraphQLConfig holds settings of the GraphQL endpoints.
type GraphQLConfig struct {
	Pretty          bool
	GraphiQLEnabled bool
}

// StoreConfig points at an optional fixture file replacing the embedded one.
type StoreConfig struct {
	FixturePath string
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `validate:"oneof=debug info warn error dpanic panic fatal"`
	Development bool
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Auth    *AuthConfig    `validate:"required"`
	Server  *ServerConfig  `validate:"required"`
	GraphQL *GraphQLConfig `validate:"required"`
	Store   *StoreConfig   `validate:"required"`
	Log     *LogConfig     `validate:"required"`
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as a bool.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

// Helper function to get an optional environment variable parsed as time.Duration.
// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single ConfigError if any exist.
func LoadConfig() (*AppConfig, error) {
	// `errors` slice collects all parsing errors during config loading.
	var errors []string

	authConfig := &AuthConfig{
		JWTSecret:         getOptionalEnv("JWT_SECRET", "secret"),
		DebugTokenEnabled: getOptionalEnvBool("DEBUG_TOKEN_ENABLED", true, &errors),
		DebugTokenUser:    getOptionalEnv("DEBUG_TOKEN_USER", "Bob"),
	}

	serverConfig := &ServerConfig{
		// Note: Server port is kept as a string because it's used directly in the listen address (":3000").
		Port:            getOptionalEnv("PORT", "3000"),
		ShutdownTimeout: getOptionalEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second, &errors),
	}

	graphQLConfig := &GraphQLConfig{
		Pretty:          getOptionalEnvBool("GRAPHQL_PRETTY", true, &errors),
		GraphiQLEnabled: getOptionalEnvBool("GRAPHIQL_ENABLED", true, &errors),
	}

	storeConfig := &StoreConfig{
		FixturePath: getOptionalEnv("FIXTURE_PATH", ""),
	}

	logConfig := &LogConfig{
		Level:       strings.ToLower(getOptionalEnv("LOG_LEVEL", "info")),
		Development: getOptionalEnvBool("LOG_DEVELOPMENT", false, &errors),
	}

	if len(errors) > 0 {
		return nil, apperror.NewConfigError(fmt.Sprintf("configuration errors:\n- %s", strings.Join(errors, "\n- ")), nil)
	}

	cfg := &AppConfig{
		Auth:    authConfig,
		Server:  serverConfig,
		GraphQL: graphQLConfig,
		Store:   storeConfig,
		Log:     logConfig,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct-level constraints of the configuration.
// It is called by LoadConfig and again after command-line overrides are applied.
func (c *AppConfig) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return apperror.NewConfigError("configuration validation failed", err)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf(":%s", s.Port)
}
