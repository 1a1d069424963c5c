package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"credpay-wallet/pkg/db"
)

// AppConfig holds all application-wide configuration.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	RedisAddr  string

	JWTSecret string
	JWTExpiry time.Duration

	KarmaBaseURL string
	KarmaAPIKey  string

	TxTimeout time.Duration

	LoginRatePerMinute int
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadConfig loads configuration from the environment, reading a .env file
// first when one is present.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load() // optional; real env vars win

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	jwtExpiry, err := time.ParseDuration(getEnv("JWT_EXPIRY", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}

	txTimeout, err := time.ParseDuration(getEnv("TX_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TX_TIMEOUT: %w", err)
	}

	loginRate, err := strconv.Atoi(getEnv("LOGIN_RATE_PER_MINUTE", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE: %w", err)
	}

	return &AppConfig{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DB: db.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "walletdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:          getEnv("JWT_SECRET_KEY", ""),
		JWTExpiry:          jwtExpiry,
		KarmaBaseURL:       getEnv("KARMA_API_URL", ""),
		KarmaAPIKey:        getEnv("KARMA_SECRET_KEY", ""),
		TxTimeout:          txTimeout,
		LoginRatePerMinute: loginRate,
	}, nil
}
