// Package config provides centralized configuration management for the survey
// application. Settings come from environment variables (optionally seeded from
// a .env file by main) with defaults declared in struct tags, and the whole
// configuration is validated once on startup so misconfiguration fails fast.
package config

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds database connection settings.
//
// URL wins when set. Otherwise the DSN is assembled from the individual
// fields, which mirror the classic host/name/user/password/charset surface.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL" envAlt:"DB_URL"`
	Host     string `env:"DB_HOST" default:"localhost"`
	Port     int    `env:"DB_PORT" default:"5432"`
	Name     string `env:"DB_NAME" default:"survey"`
	User     string `env:"DB_USER" default:"survey"`
	Password string `env:"DB_PASSWORD"`

	// Charset is sent as the client_encoding connection parameter.
	Charset string `env:"DB_CHARSET" default:"UTF8"`
	SSLMode string `env:"DB_SSLMODE" default:"disable"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies embedded migrations on startup (default: true)
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// SessionConfig controls the session cookie and the backing store used for
// logins and flash messages.
type SessionConfig struct {
	CookieName string        `env:"SESSION_COOKIE" default:"survey_session"`
	TTL        time.Duration `env:"SESSION_TTL" default:"24h"`
	Secure     bool          `env:"SESSION_SECURE" default:"false"`

	// RedisURL selects the Redis backend when set; memory otherwise.
	RedisURL string `env:"REDIS_URL"`

	// SweepSchedule is the cron schedule for purging expired in-memory sessions.
	SweepSchedule string `env:"SESSION_SWEEP_SCHEDULE" default:"@every 10m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is how many requests may arrive back to back (default: 20)
	Burst int `env:"RATE_LIMIT_BURST" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// BcryptCost is the password hashing cost (default: 12)
	BcryptCost int `env:"SECURITY_BCRYPT_COST" default:"12"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DSN returns the connection string for the database.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}

	q := url.Values{}
	if c.Charset != "" {
		q.Set("client_encoding", c.Charset)
	}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// DatabaseName returns the database name for log output without exposing
// credentials.
func (c *DatabaseConfig) DatabaseName() string {
	if c.URL == "" {
		return c.Name
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
