package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"haulage/internal/commons"
)

// ErrMissingJWTSecret means the API was configured without JWT_SECRET.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Auth     AuthConfig
	Order    OrderConfig
	Client   ClientConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	// Driver is "mysql" or "sqlite3".
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Bootstrap creates the first SUPER_ADMIN when no user with this email
	// exists. Empty email disables it.
	BootstrapEmail    string
	BootstrapPassword string
	BootstrapName     string
}

type OrderConfig struct {
	MaxRetryAttempts int
}

// ClientConfig configures the console: where the API lives and where the
// session is kept.
type ClientConfig struct {
	APIBaseURL string
	SessionDir string
	Timeout    time.Duration
	RateLimit  float64
	RateBurst  int
}

// Load reads configuration from, in increasing precedence: defaults, the
// YAML file named by CONFIG_FILE, a .env file in the working directory and
// the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "haulage")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "haulage")
	v.SetDefault("DB_PATH", "haulage.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "")
	v.SetDefault("BOOTSTRAP_ADMIN_NAME", "Super Admin")
	v.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("SESSION_DIR", ".haulage/session")
	v.SetDefault("CLIENT_TIMEOUT", "15s")
	v.SetDefault("CLIENT_RATE_LIMIT", 0)
	v.SetDefault("CLIENT_RATE_BURST", 5)

	if path := v.GetString("CONFIG_FILE"); path != "" {
		overrides, err := commons.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(overrides); err != nil {
			return nil, err
		}
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}
	tokenTTL, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		return nil, err
	}
	clientTimeout, err := time.ParseDuration(v.GetString("CLIENT_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DB_DRIVER"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			Path:            v.GetString("DB_PATH"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Auth: AuthConfig{
			JWTSecret:         v.GetString("JWT_SECRET"),
			TokenTTL:          tokenTTL,
			BootstrapEmail:    v.GetString("BOOTSTRAP_ADMIN_EMAIL"),
			BootstrapPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
			BootstrapName:     v.GetString("BOOTSTRAP_ADMIN_NAME"),
		},
		Order: OrderConfig{
			MaxRetryAttempts: v.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
		},
		Client: ClientConfig{
			APIBaseURL: v.GetString("API_BASE_URL"),
			SessionDir: v.GetString("SESSION_DIR"),
			Timeout:    clientTimeout,
			RateLimit:  v.GetFloat64("CLIENT_RATE_LIMIT"),
			RateBurst:  v.GetInt("CLIENT_RATE_BURST"),
		},
	}

	return cfg, nil
}

// RequireSecrets checks the settings the API server cannot start without.
// The console does not sign tokens and skips it.
func (c *Config) RequireSecrets() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}
