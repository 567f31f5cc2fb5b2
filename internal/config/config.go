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

// Config aggregates runtime configuration shared by every back-office process.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Gateway  GatewayConfig
	Services ServicesConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	AuditStream string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token and password parameters.
//
// JWTSecret must be identical in the gateway and every service.
type AuthConfig struct {
	JWTSecret         string
	TokenTTLHours     int
	BcryptCost        int
	SeedAdminEmail    string
	SeedAdminPassword string
}

// GatewayConfig configures the edge process.
type GatewayConfig struct {
	IdentityUpstream string
	EmployeeUpstream string
	BypassPrefixes   []string
	UpstreamTimeout  time.Duration
	AuditBufferSize  int
}

// ServicesConfig configures service-to-service calls.
type ServicesConfig struct {
	IdentityURL   string
	ClientTimeout time.Duration
}

// DefaultBypassPrefixes lists paths the gateway lets through without a token.
var DefaultBypassPrefixes = []string{
	"/api/v1/auth/",
	"/swagger-ui/",
	"/swagger-ui.html",
	"/v3/api-docs",
	"/auth/v3/api-docs",
	"/employee/v3/api-docs",
	"/webjars/",
	"/health/",
}

// ErrMissingSecret is returned when AUTH_JWT_SECRET is not set.
var ErrMissingSecret = errors.New("AUTH_JWT_SECRET is required")

// Load reads configuration from environment variables, applying defaults where possible.
// defaultPort is used when APP_PORT is unset so each process gets a distinct default.
func Load(defaultName, defaultPort string) (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", defaultName),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", defaultPort),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:        os.Getenv("REDIS_ADDR"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          redisDB,
			AuditStream: getEnv("REDIS_AUDIT_STREAM", "backoffice:audit"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("AUTH_JWT_SECRET"),
			TokenTTLHours:     getEnvAsInt("AUTH_TOKEN_TTL_HOURS", 24),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
			SeedAdminEmail:    getEnv("AUTH_SEED_ADMIN_EMAIL", "admin@company.com"),
			SeedAdminPassword: getEnv("AUTH_SEED_ADMIN_PASSWORD", "Admin@123"),
		},
		Gateway: GatewayConfig{
			IdentityUpstream: getEnv("GATEWAY_IDENTITY_UPSTREAM", "http://127.0.0.1:8081"),
			EmployeeUpstream: getEnv("GATEWAY_EMPLOYEE_UPSTREAM", "http://127.0.0.1:8082"),
			BypassPrefixes:   getEnvAsList("GATEWAY_BYPASS_PREFIXES", DefaultBypassPrefixes),
			UpstreamTimeout:  time.Duration(getEnvAsInt("GATEWAY_UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,
			AuditBufferSize:  getEnvAsInt("GATEWAY_AUDIT_BUFFER", 1024),
		},
		Services: ServicesConfig{
			IdentityURL:   getEnv("IDENTITY_SERVICE_URL", "http://127.0.0.1:8081"),
			ClientTimeout: time.Duration(getEnvAsInt("SERVICE_CLIENT_TIMEOUT_SECONDS", 10)) * time.Second,
		},
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, ErrMissingSecret
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the lifetime stamped into every issued token.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
