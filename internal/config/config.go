// Package config loads application configuration from environment variables
// for both the API service and the web client.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSecretLength is the minimum required length for signing secrets.
// HS256 needs at least 32 bytes of key material to be worth anything.
const MinSecretLength = 32

// API holds configuration for the API service.
type API struct {
	DBDriver   string `env:"JOBDESK_DB_DRIVER" envDefault:"sqlite"`
	DBPath     string `env:"JOBDESK_DB_PATH" envDefault:"./data/jobdesk.db"`
	MySQLDSN   string `env:"JOBDESK_MYSQL_DSN"`
	ServerHost string `env:"JOBDESK_API_HOST" envDefault:"localhost"`
	ServerPort int    `env:"JOBDESK_API_PORT" envDefault:"8000"`
	Env        string `env:"JOBDESK_ENV" envDefault:"development"`
	LogLevel   string `env:"JOBDESK_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"JOBDESK_UPLOADS_DIR" envDefault:"./uploads"`

	// Bearer token configuration
	TokenSecret string        `env:"JOBDESK_TOKEN_SECRET,required"`
	TokenTTL    time.Duration `env:"JOBDESK_TOKEN_TTL" envDefault:"30m"`

	// Seeding configuration
	DoSeed bool `env:"JOBDESK_DO_SEED" envDefault:"false"`
}

// Web holds configuration for the web client.
type Web struct {
	APIBaseURL    string        `env:"JOBDESK_API_URL" envDefault:"http://localhost:8000"`
	APITimeout    time.Duration `env:"JOBDESK_API_TIMEOUT" envDefault:"10s"`
	SessionDBPath string        `env:"JOBDESK_SESSION_DB_PATH" envDefault:"./data/sessions.db"`
	SessionSecret string        `env:"JOBDESK_SESSION_SECRET,required"`
	ServerHost    string        `env:"JOBDESK_WEB_HOST" envDefault:"localhost"`
	ServerPort    int           `env:"JOBDESK_WEB_PORT" envDefault:"5000"`
	Env           string        `env:"JOBDESK_ENV" envDefault:"development"`
	LogLevel      string        `env:"JOBDESK_LOG_LEVEL" envDefault:"info"`
}

// IsDevelopment returns true if the API service runs in development mode.
func (c API) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full API server address in host:port format.
func (c API) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseMySQL returns true if the MySQL store profile is configured.
func (c API) UseMySQL() bool {
	return c.DBDriver == "mysql" && c.MySQLDSN != ""
}

// IsDevelopment returns true if the web client runs in development mode.
func (c Web) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full web server address in host:port format.
func (c Web) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// LoadAPI parses environment variables into an API config.
func LoadAPI() (*API, error) {
	cfg := &API{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.TokenSecret) < MinSecretLength {
		return nil, fmt.Errorf("JOBDESK_TOKEN_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSecretLength, len(cfg.TokenSecret))
	}

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "mysql" {
		return nil, fmt.Errorf("JOBDESK_DB_DRIVER must be sqlite or mysql, got %q", cfg.DBDriver)
	}

	return cfg, nil
}

// LoadWeb parses environment variables into a Web config.
func LoadWeb() (*Web, error) {
	cfg := &Web{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSecretLength {
		return nil, fmt.Errorf("JOBDESK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSecretLength, len(cfg.SessionSecret))
	}

	return cfg, nil
}
