package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Sales  SalesConfig
}

type ServerConfig struct {
	Port string
}

type DBConfig struct {
	DSN string
}

type AuthConfig struct {
	JWTSecret string
}

// SalesConfig carries sale-lifecycle policy switches.
type SalesConfig struct {
	// RefundRestocksInventory controls whether a refund returns the sold
	// quantities to the sale's branch inventory.
	RefundRestocksInventory bool
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	refundRestocks, _ := strconv.ParseBool(getEnv("REFUND_RESTOCKS_INVENTORY", "false"))

	return Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		DB: DBConfig{
			DSN: getEnv("DATABASE_DSN", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Sales: SalesConfig{
			RefundRestocksInventory: refundRestocks,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
