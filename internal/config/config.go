package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	JWT      JWTConfig
	Catalog  CatalogConfig
	Engine   EngineConfig
	MongoDB  MongoDBConfig
	InfluxDB InfluxDBConfig
	OpenAI   OpenAIConfig
	Email    EmailConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// JWTConfig holds JWT signing configuration
type JWTConfig struct {
	Secret string
}

// CatalogConfig holds the model catalog source configuration
type CatalogConfig struct {
	Path       string // optional JSON catalog file; empty = built-in defaults
	SchemaPath string
}

// EngineConfig holds default device constraints for the recommendation engine
type EngineConfig struct {
	MaxMemoryMB              float64
	BatteryOptimizationLevel int
	HistoryLimit             int
}

// MongoDBConfig holds MongoDB connection details
type MongoDBConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	AuthSource string // Database to authenticate against (default: admin)
}

// InfluxDBConfig holds InfluxDB connection details
type InfluxDBConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// OpenAIConfig holds OpenAI API configuration for the LLM task runner
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// EmailConfig holds SendGrid email configuration
type EmailConfig struct {
	APIKey    string
	FromEmail string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8086"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Catalog: CatalogConfig{
			Path:       getEnv("MODEL_CATALOG_PATH", ""),
			SchemaPath: getEnv("MODEL_CATALOG_SCHEMA_PATH", "schemas/model_catalog_schema.json"),
		},
		Engine: EngineConfig{
			MaxMemoryMB:              getEnvFloat("ENGINE_MAX_MEMORY_MB", 100),
			BatteryOptimizationLevel: getEnvInt("ENGINE_BATTERY_OPTIMIZATION_LEVEL", 0),
			HistoryLimit:             getEnvInt("ENGINE_HISTORY_LIMIT", 1000),
		},
		MongoDB: MongoDBConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Username:   getEnv("MONGODB_USERNAME", ""),
			Password:   getEnv("MONGODB_PASSWORD", ""),
			Host:       getEnv("MONGODB_HOST", ""),
			Port:       getEnv("MONGODB_PORT", "27017"),
			Database:   getEnv("MONGODB_DATABASE", "taskpilot"),
			AuthSource: getEnv("MONGODB_AUTH_SOURCE", "admin"),
		},
		InfluxDB: InfluxDBConfig{
			URL:    getEnv("INFLUXDB2_URL", ""),
			Token:  getEnv("INFLUXDB2_TOKEN", ""),
			Org:    getEnv("INFLUXDB2_ORG", ""),
			Bucket: getEnv("INFLUXDB2_BUCKET", ""),
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvFloat("OPENAI_TEMPERATURE", 0.3),
			MaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 0), // 0 means no limit
		},
		Email: EmailConfig{
			APIKey:    getEnv("SENDGRID_API_KEY", ""),
			FromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		},
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates that required configuration values are present
func ValidateConfig(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if config.Engine.MaxMemoryMB <= 0 {
		return fmt.Errorf("ENGINE_MAX_MEMORY_MB must be positive")
	}
	if config.Engine.BatteryOptimizationLevel < 0 {
		return fmt.Errorf("ENGINE_BATTERY_OPTIMIZATION_LEVEL must not be negative")
	}
	// InfluxDB is optional; when a URL is set the rest must be complete
	if config.InfluxDB.URL != "" {
		if config.InfluxDB.Token == "" {
			return fmt.Errorf("INFLUXDB2_TOKEN is required when INFLUXDB2_URL is set")
		}
		if config.InfluxDB.Bucket == "" {
			return fmt.Errorf("INFLUXDB2_BUCKET is required when INFLUXDB2_URL is set")
		}
		if config.InfluxDB.Org == "" {
			return fmt.Errorf("INFLUXDB2_ORG is required when INFLUXDB2_URL is set")
		}
	}
	return nil
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
