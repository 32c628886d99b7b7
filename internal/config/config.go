package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	// Signing secret for issued access tokens.
	TokenSecret string

	// Default lifetime of a newly issued token. 0 means non-expiring.
	TokenTTLMinutes int

	// Optional redis for the login/register rate limiter.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string

	// Browser origins allowed to call the API.
	CORSOrigins []string
}

func Load() Config {
	// best effort; real env vars win over the .env file
	_ = godotenv.Load()

	return Config{
		Env:             getEnv("APP_ENV", "dev"),
		Port:            getEnvInt("PORT", 8080),
		DBURL:           buildDBURL(),
		TokenSecret:     getEnv("TOKEN_SECRET", "dev-only-secret"),
		TokenTTLMinutes: getEnvInt("TOKEN_TTL_MINUTES", 60),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		OTLPEndpoint:    getEnv("OTLP_ENDPOINT", ""),
		CORSOrigins:     getEnvList("CORS_ORIGINS", "http://localhost:3000"),
	}
}

// TokenTTL converts the configured minutes into a duration. Zero disables
// expiry entirely.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "pricehub")
	pass := getEnv("DB_PASSWORD", "pricehub")
	name := getEnv("DB_NAME", "pricehub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvList(key, fallback string) []string {
	raw := getEnv(key, fallback)

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
