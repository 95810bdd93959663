package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultJWTSecretKey signs tokens when JWT_SECRET_KEY is unset. Only for local development.
const DefaultJWTSecretKey = "my_super_secret_key"

// ErrDefaultJWTSecret is returned by CheckServe when a PostgreSQL deployment
// still uses DefaultJWTSecretKey.
var ErrDefaultJWTSecret = errors.New("JWT_SECRET_KEY must be set when DB_DRIVER=postgres")

// Config holds application, database, cache, messaging, gRPC and auth settings.
type Config struct {
	AppHost     string
	AppPort     string
	LogLevel    string
	LogEncoding string

	DBDriver   string
	SQLitePath string

	PGHost         string
	PGPort         int
	PGUser         string
	PGPassword     string
	PGDB           string
	PGMaxOpenConns int
	PGMaxIdleConns int

	// RedisHost empty disables the user cache.
	RedisHost         string
	RedisPort         int
	RedisDB           int
	RedisPassword     string
	RedisPoolSize     int
	RedisMinIdleConns int
	RedisCacheTTL     time.Duration

	// KafkaBrokers empty disables event publishing.
	KafkaBrokers []string
	KafkaTopic   string

	GRPCPort string

	JWTSecretKey string
	JWTExp       time.Duration
	BcryptCost   int

	RateLimitPerMinute int
	RateLimitBurst     int

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
	MaxBodyBytes      int64
}

// Load reads environment variables from the file at path (if it exists)
// and returns the configuration. Variables already set in the environment win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	var (
		cfg Config
		err error
	)

	getInt := func(key, defaultValue string) int {
		if err != nil {
			return 0
		}
		var v int
		v, err = strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			err = fmt.Errorf("parse %s: %w", key, err)
		}
		return v
	}

	getBool := func(key, defaultValue string) bool {
		if err != nil {
			return false
		}
		var v bool
		v, err = strconv.ParseBool(getEnv(key, defaultValue))
		if err != nil {
			err = fmt.Errorf("parse %s: %w", key, err)
		}
		return v
	}

	// Application config
	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("APP_PORT", "8080")
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.LogEncoding = getEnv("APP_LOG_ENCODING", "json")

	// Database config
	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", DriverSQLite))
	cfg.SQLitePath = getEnv("SQLITE_PATH", "./blog.db")
	cfg.PGHost = getEnv("POSTGRES_HOST", "localhost")
	cfg.PGPort = getInt("POSTGRES_PORT", "5432")
	cfg.PGUser = getEnv("POSTGRES_USER", "user")
	cfg.PGPassword = getEnv("POSTGRES_PASSWORD", "password")
	cfg.PGDB = getEnv("POSTGRES_DB", "blog")
	cfg.PGMaxOpenConns = getInt("POSTGRES_MAX_OPEN_CONNS", "16")
	cfg.PGMaxIdleConns = getInt("POSTGRES_MAX_IDLE_CONNS", "8")

	// Redis config
	cfg.RedisHost = getEnv("REDIS_HOST", "")
	cfg.RedisPort = getInt("REDIS_PORT", "6379")
	cfg.RedisDB = getInt("REDIS_DB", "0")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisPoolSize = getInt("REDIS_POOL_SIZE", "10")
	cfg.RedisMinIdleConns = getInt("REDIS_MIN_IDLE_CONNS", "2")
	cfg.RedisCacheTTL = time.Duration(getInt("REDIS_CACHE_TTL_SECOND", "60")) * time.Second

	// Kafka config
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", "blog-events")

	// gRPC config
	cfg.GRPCPort = getEnv("GRPC_PORT", "50051")

	// Auth config
	cfg.JWTSecretKey = getEnv("JWT_SECRET_KEY", DefaultJWTSecretKey)
	cfg.JWTExp = time.Duration(getInt("JWT_EXP_SECOND", "1800")) * time.Second
	cfg.BcryptCost = getInt("BCRYPT_COST", "10")

	// Rate limiting
	cfg.RateLimitPerMinute = getInt("RATE_LIMIT_PER_MINUTE", "30")
	cfg.RateLimitBurst = getInt("RATE_LIMIT_BURST", "10")
	cfg.TrustProxyHeaders = getBool("TRUST_PROXY_HEADERS", "false")

	// Request bodies
	cfg.MaxBodyBytes = int64(getInt("MAX_BODY_BYTES", "1048576"))

	if err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return &cfg, nil
}

// UsesDefaultJWTSecret reports whether tokens are signed with DefaultJWTSecretKey.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecretKey == DefaultJWTSecretKey
}

// CheckServe rejects settings that are unsafe for serving traffic.
func (c *Config) CheckServe() error {
	if c.DBDriver == DriverPostgres && c.UsesDefaultJWTSecret() {
		return ErrDefaultJWTSecret
	}
	return nil
}

// HTTPAddr returns the address the HTTP server listens on.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.AppHost, c.AppPort)
}

// GRPCAddr returns the address the gRPC health server listens on.
func (c *Config) GRPCAddr() string {
	return net.JoinHostPort(c.AppHost, c.GRPCPort)
}

// RedisAddr returns the Redis address.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDB)
	}
	return c.SQLitePath
}
