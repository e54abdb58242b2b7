package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backend selectors accepted in STORE_BACKEND.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// DefaultConversationTimeout is the session window applied when
// CONVERSATION_TIMEOUT is unset.
const DefaultConversationTimeout = 3 * time.Hour

// Config stores all the configuration of the application.
// Values are loaded from environment variables with optional
// loading from a .env file via godotenv.
type Config struct {
	// Server settings
	ServerPort  string
	FrontendURL string

	// Session policy
	ConversationTimeout time.Duration

	// Store selection
	StoreBackend string

	// Mongo settings
	MongoURL string
	MongoDB  string

	// Postgres settings
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	// Redis settings
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string

	// Logging
	LogLevel  string
	LogPretty bool
}

// LoadConfig reads configuration from environment variables and .env file.
// It returns the loaded configuration or an error if required values are missing.
func LoadConfig() (*Config, error) {
	// Try to load .env file, but proceed even if it doesn't exist
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("No .env file found, using environment variables only")
		} else {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Environment loaded from .env file")
	}

	config := &Config{
		ServerPort:  getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),

		ConversationTimeout: getEnvAsDuration("CONVERSATION_TIMEOUT", DefaultConversationTimeout),

		StoreBackend: getEnv("STORE_BACKEND", BackendMongo),

		MongoURL: getEnv("MONGO_URL", ""),
		MongoDB:  getEnv("MONGO_DB", "conversations"),

		DBHost:     getEnv("DB_HOST", ""),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
	}

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the required configuration values are set and logs warnings
// for optional values that aren't set.
func (c *Config) Validate() error {
	var missingEnvs []string

	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURL == "" {
			missingEnvs = append(missingEnvs, "MONGO_URL")
		}
	case BackendPostgres:
		if c.DBHost == "" {
			missingEnvs = append(missingEnvs, "DB_HOST")
		}
		if c.DBUser == "" {
			missingEnvs = append(missingEnvs, "DB_USER")
		}
		if c.DBName == "" {
			missingEnvs = append(missingEnvs, "DB_NAME")
		}
	case BackendMemory:
		// nothing required; data does not survive a restart
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (expected mongo, postgres or memory)", c.StoreBackend)
	}

	if c.ConversationTimeout <= 0 {
		return fmt.Errorf("CONVERSATION_TIMEOUT must be positive, got %s", c.ConversationTimeout)
	}

	// Return error if any required env vars are missing
	if len(missingEnvs) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingEnvs, ", "))
	}

	// Log warnings for optional configurations
	if c.RedisHost == "" {
		log.Println("Warning: Redis configuration is incomplete, response caching will be disabled")
	}

	if c.FrontendURL == "" {
		log.Println("Warning: FRONTEND_URL is not set, CORS might not be configured correctly")
	}

	return nil
}

// GetDSN returns the PostgreSQL data source name (connection string)
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// GetRedisAddr returns the Redis address in the format host:port
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnv retrieves the value of the environment variable named by the key.
// If the variable is not present, the defaultValue is returned.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves the value of the environment variable named by the
// key as a time.Duration ("3h", "90m", ...). If the variable is not present or
// cannot be parsed, the defaultValue is returned.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves the value of the environment variable named by the key
// as a bool. If the variable is not present or cannot be parsed, the
// defaultValue is returned.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
