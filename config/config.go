package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config groups everything the process reads from the environment.
type Config struct {
	DSN      string
	HTTPPort string

	JWTSecret string

	// PaymentHMACSecret is the shared secret used to verify gateway webhooks.
	PaymentHMACSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// ApplicationCooldown is how long a customer must wait after a rejected
	// driver application before resubmitting.
	ApplicationCooldown time.Duration
}

func Load() *Config {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0
	}
	ttlSecs, err := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "3600"))
	if err != nil {
		ttlSecs = 3600
	}
	cooldownDays, err := strconv.Atoi(getEnv("APPLICATION_COOLDOWN_DAYS", "30"))
	if err != nil {
		cooldownDays = 30
	}

	return &Config{
		DSN:                 getEnv("APP_DSN", "host=localhost user=postgres password=postgres dbname=spotless sslmode=disable"),
		HTTPPort:            getEnv("APP_PORT", "8080"),
		JWTSecret:           getEnv("JWT_SECRET", "dev-insecure-secret-change-me"),
		PaymentHMACSecret:   getEnv("PAYMENT_HMAC_SECRET", "dev-hmac-secret"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             redisDB,
		CacheTTL:            time.Duration(ttlSecs) * time.Second,
		ApplicationCooldown: time.Duration(cooldownDays) * 24 * time.Hour,
	}
}

func (c *Config) Addr() string { return fmt.Sprintf(":%s", c.HTTPPort) }

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
