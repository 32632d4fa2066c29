// Package config loads the run configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Dedup modes for the event writer.
const (
	DedupAppend = "append"
	DedupSkip   = "skip-duplicates"
)

// Validation errors.
var (
	ErrUnknownDriver    = errors.New("STORE_DRIVER must be one of: postgres, memory")
	ErrUnknownDedupMode = errors.New("DEDUP_MODE must be one of: append, skip-duplicates")
	ErrInvalidPageSize  = errors.New("TM_PAGE_SIZE must be between 1 and 200")
	ErrInvalidMaxPages  = errors.New("TM_MAX_PAGES must be at least 1")
	ErrInvalidLimit     = errors.New("MUSEUM_LIMIT must be at least 1")
	ErrInvalidTimeout   = errors.New("HTTP_TIMEOUT and STORE_TIMEOUT must be positive")
	ErrInvalidLogLevel  = errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
)

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	DSN      string `env:"POSTGRES_DSN"` // overrides the individual fields when set
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	Name     string `env:"DB_NAME" envDefault:"postgres"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// ConnString returns a postgres:// URL for pgx and goose.
func (c DBConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Redacted describes the connection target for logs. It accepts both the URL
// and the keyword/value DSN forms and never includes the password.
func (c DBConfig) Redacted() string {
	pc, err := pgconn.ParseConfig(c.ConnString())
	if err != nil {
		return "<invalid dsn>"
	}
	return fmt.Sprintf("postgres://%s@%s:%d/%s", pc.User, pc.Host, pc.Port, pc.Database)
}

// TicketmasterConfig configures the live-event source.
type TicketmasterConfig struct {
	APIKey   string `env:"TM_API_KEY"`
	BaseURL  string `env:"TM_BASE_URL" envDefault:"https://app.ticketmaster.com"`
	City     string `env:"TM_CITY" envDefault:"Chicago"`
	PageSize int    `env:"TM_PAGE_SIZE" envDefault:"10"`
	MaxPages int    `env:"TM_MAX_PAGES" envDefault:"1"`
}

// MuseumConfig configures the museum source.
type MuseumConfig struct {
	BaseURL   string `env:"MUSEUM_BASE_URL" envDefault:"https://api.artic.edu"`
	Limit     int    `env:"MUSEUM_LIMIT" envDefault:"5"`
	Status    string `env:"MUSEUM_STATUS" envDefault:"Running"`
	UserAgent string `env:"MUSEUM_USER_AGENT" envDefault:"AEP ETL Engine (eventplanner)"`
}

// Config is the explicit configuration handed to sources, the writer and the API.
type Config struct {
	Env       string `env:"PLANNER_ENV" envDefault:"development"`
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	Timezone  string `env:"TIMEZONE" envDefault:"America/Chicago"`

	StoreDriver  string        `env:"STORE_DRIVER" envDefault:"postgres"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`
	DedupMode    string        `env:"DEDUP_MODE" envDefault:"append"`
	DB           DBConfig

	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	Ticketmaster TicketmasterConfig
	Museum       MuseumConfig
	DealsFile    string `env:"DEALS_FILE"` // optional YAML list replacing the built-in deals

	// Read API
	APIKeys         []string      `env:"API_KEYS" envSeparator:","`
	RateLimitPerMin int           `env:"RATE_LIMIT_PER_MIN" envDefault:"20"`
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	CacheMaxSize    int           `env:"CACHE_MAX_SIZE" envDefault:"256"`
	RedisURL        string        `env:"REDIS_URL"` // optional shared cache
	CachePrefix     string        `env:"CACHE_PREFIX" envDefault:"planner:"`
}

// Load reads the optional dotenv files, parses the environment and validates the result.
// Variables already present in the environment win over dotenv values.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		return ErrUnknownDriver
	}
	switch c.DedupMode {
	case DedupAppend, DedupSkip:
	default:
		return ErrUnknownDedupMode
	}
	if c.Ticketmaster.PageSize < 1 || c.Ticketmaster.PageSize > 200 {
		return ErrInvalidPageSize
	}
	if c.Ticketmaster.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.Museum.Limit < 1 {
		return ErrInvalidLimit
	}
	if c.HTTPTimeout <= 0 || c.StoreTimeout <= 0 {
		return ErrInvalidTimeout
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// APIKeySet returns the allowed API keys as a set; empty means auth is disabled.
func (c *Config) APIKeySet() map[string]struct{} {
	m := make(map[string]struct{}, len(c.APIKeys))
	for _, k := range c.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			m[k] = struct{}{}
		}
	}
	return m
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string { return ":" + strconv.Itoa(c.Port) }
