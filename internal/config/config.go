// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. A .env file in the working directory is loaded first if it
// exists; real environment variables always win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Supported values for StoreConfig.Driver.
const (
	DriverMariaDB = "mariadb"
	DriverMongo   = "mongo"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 3000).
	Port int

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	// Empty means the environment default.
	LogLevel string

	// APIPrefix is the path prefix all API routes are mounted under.
	APIPrefix string

	// CORSOrigins lists origins allowed to call the API cross-origin.
	CORSOrigins []string

	// TrustedProxies lists CIDRs whose X-Forwarded-For / X-Real-IP headers
	// are trusted when resolving the client IP.
	TrustedProxies []string

	// Store selects and configures the persistence backend.
	Store StoreConfig

	// Auth holds token and password hashing settings.
	Auth AuthConfig
}

// StoreConfig selects the backend and carries the settings for each.
type StoreConfig struct {
	// Driver is "mariadb" or "mongo".
	Driver string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Mongo holds MongoDB connection settings.
	Mongo MongoConfig
}

// DatabaseConfig holds MariaDB connection parameters. If DATABASE_URL is
// set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	User     string
	Password string
	Name     string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// MigrationsPath is the directory holding the *.up.sql / *.down.sql files.
	MigrationsPath string
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// fields using the driver's Config.FormatDSN() to safely handle special
// characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	// UPDATE ... reports matched rows, so an unchanged row is not "missing".
	cfg.ClientFoundRows = true
	// golang-migrate runs each migration file as a single Exec.
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// MongoConfig holds MongoDB connection parameters.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database holding the users and contacts collections.
	Database string

	// Timeout bounds the initial connect + ping.
	Timeout time.Duration
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// JWTSecret is the HMAC key used to sign bearer tokens.
	JWTSecret string

	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration

	// BcryptCost is the bcrypt work factor for password hashes.
	BcryptCost int
}

// Load reads configuration from the environment (and .env, if present) with
// sensible defaults. Returns an error if required variables are missing or
// invalid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnvInt("PORT", 3000),
		LogLevel:       getEnv("LOG_LEVEL", ""),
		APIPrefix:      strings.TrimRight(getEnv("API_PREFIX", "/api"), "/"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"*"}),
		TrustedProxies: getEnvList("TRUSTED_PROXIES", []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "fd00::/8"}),

		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", DriverMariaDB)),
			Database: DatabaseConfig{
				Host:            getEnv("DB_HOST", "localhost:3306"),
				User:            getEnv("DB_USER", "contactbook"),
				Password:        getEnv("DB_PASSWORD", "contactbook"),
				Name:            getEnv("DB_NAME", "contactbook"),
				dsnOverride:     getEnv("DATABASE_URL", ""),
				MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
				MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
				ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
				MigrationsPath:  getEnv("MIGRATIONS_PATH", "db/migrations"),
			},
			Mongo: MongoConfig{
				URI:      getEnv("MONGO_DB_URL", "mongodb://localhost:27017"),
				Database: getEnv("MONGO_DB_NAME", "db-contacts"),
				Timeout:  getEnvDuration("MONGO_TIMEOUT", 10*time.Second),
			},
		},

		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   getEnvDuration("JWT_TTL", time.Hour),
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
	}

	switch cfg.Store.Driver {
	case DriverMariaDB, DriverMongo:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMariaDB, DriverMongo, cfg.Store.Driver)
	}

	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive")
	}

	// Validate required fields in production. Case-insensitive check catches
	// common variants like "Production", "prod", etc.
	if cfg.IsProduction() {
		if cfg.Auth.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		if len(cfg.Auth.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
	}

	// Provide a dev-only default secret so local dev works without .env.
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-secret-key-do-not-use-in-production!!"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "1h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList reads a comma-separated env var, dropping empty items.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
