// Package config loads application settings from the environment.
// Defaults are applied for unset values and everything is validated on
// startup so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Search   SearchConfig
	Auth     AuthConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds every request through chi's Timeout middleware.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`

	// TrustedProxies lists proxy CIDRs or IPs whose X-Real-IP and
	// X-Forwarded-For headers are believed. Empty trusts nobody.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// URL accepts DATABASE_URL or DB_URL.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// MaxFileSize is the largest accepted upload in bytes (default: 50MB).
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"52428800"`

	// Timeout bounds one import, parsing and transaction included.
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`

	// PreviewRows is how many normalized rows a preview returns.
	PreviewRows int `env:"IMPORT_PREVIEW_ROWS" default:"5"`
}

// SearchConfig holds search settings.
type SearchConfig struct {
	// MaxResults caps the joined rows one search reads.
	MaxResults int `env:"SEARCH_MAX_RESULTS" default:"5000"`
}

// AuthConfig holds login and session settings.
type AuthConfig struct {
	// Users is a comma-separated list of "username:bcrypt-hash" pairs.
	Users []string `env:"AUTH_USERS" required:"true"`

	// SessionSecret signs the session cookie. At least 32 bytes.
	SessionSecret string `env:"SESSION_SECRET" required:"true"`

	SessionName   string        `env:"SESSION_NAME" default:"callcenter_session"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"12h"`

	// SecureCookie sets the Secure flag; disable only for plain-HTTP development.
	SecureCookie bool `env:"SESSION_SECURE_COOKIE" default:"true"`

	// LoginAttempts is how many sign-in posts one client may make per LoginWindow.
	LoginAttempts int           `env:"LOGIN_RATE_LIMIT" default:"10"`
	LoginWindow   time.Duration `env:"LOGIN_RATE_WINDOW" default:"1m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text (tinted on a terminal) or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
