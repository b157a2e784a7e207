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

const (
	RemoteFirestore = "firestore"
	RemotePostgres  = "postgres"
	RemoteMemory    = "memory"

	LocalBolt  = "bolt"
	LocalRedis = "redis"

	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

type Config struct {
	Server   ServerConfig
	Remote   RemoteConfig
	Database DatabaseConfig
	Local    LocalConfig
	Sync     SyncConfig
	Worker   WorkerConfig
	App      AppConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// RemoteConfig selects the remote document store.
type RemoteConfig struct {
	Backend         string
	ProjectID       string
	CredentialsPath string
	Collection      string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// LocalConfig selects the durable key-value medium backing the cache and pending queues.
type LocalConfig struct {
	Backend   string
	BoltPath  string
	KeyPrefix string
	Redis     RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type SyncConfig struct {
	RemoteTimeout time.Duration
}

// WorkerConfig points the worker commands at a running api process.
type WorkerConfig struct {
	APIURL string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	port := getEnv("PORT", "8080")

	cfg := &Config{
		Server: ServerConfig{
			Port:           port,
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 50),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 100),
		},
		Remote: RemoteConfig{
			Backend:         strings.ToLower(getEnv("REMOTE_BACKEND", RemoteFirestore)),
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			Collection:      getEnv("FIRESTORE_COLLECTION", "projects"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "projectsync"),
		},
		Local: LocalConfig{
			Backend:   strings.ToLower(getEnv("LOCAL_BACKEND", LocalBolt)),
			BoltPath:  getEnv("LOCAL_BOLT_PATH", "projectsync.db"),
			KeyPrefix: getEnv("LOCAL_KEY_PREFIX", "projectsync"),
			Redis: RedisConfig{
				Host:     getEnv("REDIS_HOST", "localhost"),
				Port:     getEnvAsInt("REDIS_PORT", 6379),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
			},
		},
		Sync: SyncConfig{
			RemoteTimeout: getEnvAsDuration("SYNC_REMOTE_TIMEOUT", 10*time.Second),
		},
		Worker: WorkerConfig{
			APIURL: strings.TrimRight(getEnv("WORKER_API_URL", "http://localhost:"+port), "/"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", EnvDevelopment),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Remote.Backend {
	case RemoteFirestore:
		if c.Remote.ProjectID == "" {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore backend")
		}
		if c.Remote.Collection == "" {
			return fmt.Errorf("FIRESTORE_COLLECTION is required")
		}
	case RemotePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required for the postgres backend")
		}
	case RemoteMemory:
	default:
		return fmt.Errorf("unknown REMOTE_BACKEND %q", c.Remote.Backend)
	}

	switch c.Local.Backend {
	case LocalBolt:
		if c.Local.BoltPath == "" {
			return fmt.Errorf("LOCAL_BOLT_PATH is required for the bolt backend")
		}
	case LocalRedis:
		if c.Local.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown LOCAL_BACKEND %q", c.Local.Backend)
	}

	if c.Local.KeyPrefix == "" {
		return fmt.Errorf("LOCAL_KEY_PREFIX is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
