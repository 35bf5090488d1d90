package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	DatabaseName         string
	RedisURL             string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string
	TokenTTL  time.Duration

	RateLimitPerMinute int
	RequestTimeout     time.Duration
	PurgeInterval      time.Duration
	LogLevel           string
}

// ErrMissing is returned (wrapped) when a required variable is unset.
var ErrMissing = errors.New("missing env")

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":"+getenv("PORT", getenv("port", "8080"))),
		DatabaseURL:          firstenv("MONGO_URI", "mongoURI", "DATABASE_URL"),
		DatabaseName:         getenv("DB_NAME", "bookapi"),
		RedisURL:             getenv("REDIS_URL", ""),
		CORSAllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
		JWTSecret:            firstenv("SECRET_KEY", "secretKey", "JWT_SECRET"),
		LogLevel:             strings.ToLower(getenv("LOG_LEVEL", "info")),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PurgeInterval, err = getDuration("PURGE_INTERVAL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("%w: MONGO_URI", ErrMissing)
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("%w: SECRET_KEY", ErrMissing)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// firstenv returns the first non-empty value among keys.
func firstenv(keys ...string) string {
	for _, k := range keys {
		if v := getenv(k, ""); v != "" {
			return v
		}
	}
	return ""
}

func getBool(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getInt(key string, def int) (int, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := getenv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
