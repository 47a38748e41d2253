package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Request  RequestConfig
	Search   SearchConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// StorageConfig selects the Store implementation: "postgres" (default) or
// "memory" for a dependency-free demo run.
type StorageConfig struct {
	Driver string
}

type AuthConfig struct {
	JWTSecretKey string
	JWTExpiry    time.Duration
	// SupervisorCode is the shared access code exchanged for a dashboard
	// token at /api/auth/login.
	SupervisorCode string
}

// RequestConfig governs the help request lifecycle.
type RequestConfig struct {
	// Timeout is how long a pending request may wait for a supervisor
	// before it is forced to unresolved.
	Timeout time.Duration
	// SweepInterval is the cadence of the background timeout sweeper.
	SweepInterval time.Duration
}

// SearchConfig holds the knowledge search defaults; callers may override
// threshold and limit per query within the configured bounds.
type SearchConfig struct {
	DefaultThreshold float64
	DefaultLimit     int
	MaxLimit         int
}

func Load() (*Config, error) {
	// Try to load .env from the current directory or the project root;
	// fall back to plain environment variables (Docker/K8s).
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	requestTimeout, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_MINUTES", "30"))
	sweepInterval, _ := strconv.Atoi(getEnv("TIMEOUT_SWEEP_INTERVAL_SECONDS", "60"))
	threshold, _ := strconv.ParseFloat(getEnv("SEARCH_DEFAULT_THRESHOLD", "0.3"), 64)
	defaultLimit, _ := strconv.Atoi(getEnv("SEARCH_DEFAULT_LIMIT", "5"))
	maxLimit, _ := strconv.Atoi(getEnv("SEARCH_MAX_LIMIT", "20"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "frontdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "postgres"),
		},
		Auth: AuthConfig{
			JWTSecretKey:   getEnv("JWT_SECRET_KEY", "change-me-in-production"),
			JWTExpiry:      time.Duration(jwtExp) * time.Hour,
			SupervisorCode: getEnv("SUPERVISOR_ACCESS_CODE", ""),
		},
		Request: RequestConfig{
			Timeout:       time.Duration(requestTimeout) * time.Minute,
			SweepInterval: time.Duration(sweepInterval) * time.Second,
		},
		Search: SearchConfig{
			DefaultThreshold: threshold,
			DefaultLimit:     defaultLimit,
			MaxLimit:         maxLimit,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
