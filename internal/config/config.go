package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"goportfolio/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Translator TranslatorConfig
	Geometry   GeometryConfig
	Validator  ValidatorConfig
	Metrics    MetricsConfig
	LogLevel   string
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory repository.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// TranslatorConfig holds constraint translation settings
type TranslatorConfig struct {
	Epsilon float64
}

// GeometryConfig bounds vertex enumeration
type GeometryConfig struct {
	MaxDimensions     int
	Tolerance         float64
	SingularTolerance float64
	MaxSubsets        int64
	Timeout           time.Duration
	Workers           int
}

// ValidatorConfig toggles optional validation passes
type ValidatorConfig struct {
	DetectCycles bool
}

// MetricsConfig holds Prometheus exposure settings
type MetricsConfig struct {
	Enabled bool
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "release",
		},
		Translator: TranslatorConfig{
			Epsilon: 0.01,
		},
		Geometry: GeometryConfig{
			MaxDimensions:     20,
			Tolerance:         1e-7,
			SingularTolerance: 1e-9,
			MaxSubsets:        5_000_000,
			Timeout:           30 * time.Second,
			Workers:           runtime.NumCPU(),
		},
		Validator: ValidatorConfig{
			DetectCycles: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		LogLevel: "INFO",
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	def := Default()
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", def.Server.Port),
			GinMode: getEnvOrDefault("GIN_MODE", def.Server.GinMode),
		},
		Translator: TranslatorConfig{
			Epsilon: getEnvFloatOrDefault("TRANSLATOR_EPSILON", def.Translator.Epsilon),
		},
		Geometry: GeometryConfig{
			MaxDimensions:     getEnvIntOrDefault("GEOMETRY_MAX_DIMENSIONS", def.Geometry.MaxDimensions),
			Tolerance:         getEnvFloatOrDefault("GEOMETRY_TOLERANCE", def.Geometry.Tolerance),
			SingularTolerance: getEnvFloatOrDefault("GEOMETRY_SINGULAR_TOLERANCE", def.Geometry.SingularTolerance),
			MaxSubsets:        int64(getEnvIntOrDefault("GEOMETRY_MAX_SUBSETS", int(def.Geometry.MaxSubsets))),
			Timeout:           getEnvDurationOrDefault("GEOMETRY_TIMEOUT", def.Geometry.Timeout),
			Workers:           getEnvIntOrDefault("GEOMETRY_WORKERS", def.Geometry.Workers),
		},
		Validator: ValidatorConfig{
			DetectCycles: getEnvBoolOrDefault("VALIDATOR_DETECT_CYCLES", def.Validator.DetectCycles),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBoolOrDefault("METRICS_ENABLED", def.Metrics.Enabled),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", def.LogLevel),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Translator.Epsilon <= 0 {
		return errors.ConfigInvalid("TRANSLATOR_EPSILON must be positive")
	}
	if config.Geometry.MaxDimensions < 1 {
		return errors.ConfigInvalid("GEOMETRY_MAX_DIMENSIONS must be at least 1")
	}
	if config.Geometry.Tolerance <= 0 || config.Geometry.SingularTolerance <= 0 {
		return errors.ConfigInvalid("geometry tolerances must be positive")
	}
	if config.Geometry.Workers < 1 {
		return errors.ConfigInvalid("GEOMETRY_WORKERS must be at least 1")
	}
	if config.Geometry.MaxSubsets < 0 {
		return errors.ConfigInvalid("GEOMETRY_MAX_SUBSETS cannot be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
