package config

import (
	"fmt"
	"os"
	"strconv"
)

// Catalog backend selectors.
const (
	CatalogMemory   = "memory"
	CatalogDynamoDB = "dynamodb"
	CatalogNeo4j    = "neo4j"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Catalog configuration
	CatalogBackend string
	DatasetPath    string // memory backend: optional JSON dataset to preload

	// DynamoDB catalog
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - record type scans

	// Neo4j catalog
	Neo4jURI      string
	Neo4jDatabase string
	Neo4jUsername string
	Neo4jPassword string

	// Simulation tuning file (YAML, hot-reloaded)
	TuningPath string

	// Logging
	LogLevel string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		CatalogBackend: getEnv("CATALOG_BACKEND", CatalogMemory),
		DatasetPath:    getEnv("DATASET_PATH", ""),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "kith"),
		IndexName:     getEnv("INDEX_NAME", "RecordTypeIndex"),

		Neo4jURI:      getEnv("NEO4J_URI", ""),
		Neo4jDatabase: getEnv("NEO4J_DATABASE", ""),
		Neo4jUsername: getEnv("NEO4J_USERNAME", ""),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", ""),

		TuningPath: getEnv("TUNING_PATH", ""),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.CatalogBackend {
	case CatalogMemory:
	case CatalogDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb catalog")
		}
	case CatalogNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("NEO4J_URI is required for the neo4j catalog")
		}
	default:
		return fmt.Errorf("unknown catalog backend %q", c.CatalogBackend)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
