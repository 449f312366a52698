// Package config provides configuration loading and management for the tender monitor.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	// zone database for minimal images without /usr/share/zoneinfo
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/sapo-cl/mercadopublico-monitor/internal/telemetry"
)

const (
	// StorageTypeDatabase keeps tenders in PostgreSQL
	StorageTypeDatabase = "database"

	// StorageTypeMemory keeps tenders in process memory; useful for development only
	StorageTypeMemory = "memory"
)

const (
	// EnvPrefix is the prefix of every environment variable read by the monitor
	EnvPrefix = "MP_MONITOR"

	// TicketEnvVar is the environment variable holding the API ticket
	TicketEnvVar = "MP_MONITOR_API_TICKET"

	// DatabasePasswordEnvVar is the environment variable holding the database password
	DatabasePasswordEnvVar = "MP_MONITOR_DATABASE_PASSWORD"

	// PlaceholderTicket is the value shipped in sample configuration. It is
	// rejected like an empty ticket.
	PlaceholderTicket = "YOUR_API_KEY_HERE"
)

const (
	defaultAPITimeout      = 30 * time.Second
	defaultSyncInterval    = time.Hour
	defaultCleanupInterval = 24 * time.Hour
	defaultDetailDelay     = 3 * time.Second
	defaultProgressEvery   = 50
	defaultTimezone        = "America/Santiago"
)

// ErrMissingTicket is returned when no usable API ticket is configured
var ErrMissingTicket = errors.New("mercado publico API ticket is not configured")

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path       string
	skipTicket bool
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// WithoutTicket skips ticket resolution. Only commands that never call the
// remote API, such as migrations, should use it.
func WithoutTicket() Option {
	return func(cfg *loaderConfig) error {
		cfg.skipTicket = true
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	MercadoPublico MercadoPublicoConfig `yaml:"mercadoPublico"`
	Sync           SyncConfig           `yaml:"sync"`
	Storage        StorageConfig        `yaml:"storage"`
	Database       *DatabaseConfig      `yaml:"database,omitempty"`
	Telemetry      *telemetry.Config    `yaml:"telemetry,omitempty"`

	// ticket is resolved once by LoadConfig
	ticket string
}

// MercadoPublicoConfig defines how the remote tender API is reached
type MercadoPublicoConfig struct {
	// BaseURL defaults to the public API root
	BaseURL string `yaml:"baseUrl,omitempty"`

	// TicketFile is the path to a file containing the API ticket.
	// When empty the ticket is read from MP_MONITOR_API_TICKET.
	TicketFile string `yaml:"ticketFile,omitempty"`

	// Timeout bounds every request (e.g. "30s")
	Timeout string `yaml:"timeout,omitempty"`

	UserAgent string `yaml:"userAgent,omitempty"`
}

// SyncConfig defines the synchronization schedule and pacing
type SyncConfig struct {
	// Interval between sync cycles. Hourly runs are aligned to the top of the hour.
	Interval string `yaml:"interval,omitempty"`

	// CleanupInterval between expired-tender purges. Daily runs are aligned to local midnight.
	CleanupInterval string `yaml:"cleanupInterval,omitempty"`

	// DetailDelay is the pause between two detail requests
	DetailDelay string `yaml:"detailDelay,omitempty"`

	// ProgressEvery controls how often enrichment progress is logged
	ProgressEvery int `yaml:"progressEvery,omitempty"`

	// Timezone the remote timestamps and the schedule are interpreted in
	Timezone string `yaml:"timezone,omitempty"`

	// StatusFile persists the last sync status across restarts. Empty disables persistence.
	StatusFile string `yaml:"statusFile,omitempty"`

	// RunOnStart triggers a cycle as soon as the service starts
	RunOnStart bool `yaml:"runOnStart,omitempty"`
}

// StorageConfig selects the tender store implementation
type StorageConfig struct {
	// Type is "database" (default) or "memory"
	Type string `yaml:"type,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// This is the recommended approach for production deployments
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the number of connections the pool keeps open when idle
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`

	// ConnectTimeout bounds the initial connection attempts (e.g., "10s")
	ConnectTimeout string `yaml:"connectTimeout,omitempty"`

	// AutoMigrate applies pending migrations when the server starts
	AutoMigrate bool `yaml:"autoMigrate,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from MP_MONITOR_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		password, err := readSecretFile(d.PasswordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}
		return password, nil
	}

	if envPassword := os.Getenv(DatabasePasswordEnvVar); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", DatabasePasswordEnvVar,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// GetConnMaxLifetime returns the parsed connection lifetime, or zero when unset
func (d *DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return parseDurationOr(d.ConnMaxLifetime, 0)
}

// GetConnectTimeout returns the parsed connect timeout, or zero when unset
func (d *DatabaseConfig) GetConnectTimeout() time.Duration {
	return parseDurationOr(d.ConnectTimeout, 0)
}

// LoadConfig loads and parses configuration from a YAML file and resolves the
// API ticket. It fails with ErrMissingTicket when no usable ticket is found.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if loaderCfg.skipTicket {
		return &config, nil
	}

	ticket, err := config.MercadoPublico.resolveTicket()
	if err != nil {
		return nil, err
	}
	config.ticket = ticket

	return &config, nil
}

// Ticket returns the API ticket resolved by LoadConfig
func (c *Config) Ticket() string {
	return c.ticket
}

// SetTicket overrides the resolved ticket. An unusable value returns ErrMissingTicket.
func (c *Config) SetTicket(ticket string) error {
	if !usableTicket(ticket) {
		return ErrMissingTicket
	}
	c.ticket = strings.TrimSpace(ticket)
	return nil
}

// GetStorageType returns the storage type, using "database" if not specified
func (c *Config) GetStorageType() string {
	if c.Storage.Type == "" {
		return StorageTypeDatabase
	}
	return c.Storage.Type
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := c.MercadoPublico.validate(); err != nil {
		return fmt.Errorf("mercadoPublico: %w", err)
	}

	if err := c.Sync.validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	switch c.GetStorageType() {
	case StorageTypeDatabase:
		if c.Database == nil {
			return fmt.Errorf("database configuration is required when storage.type is %q", StorageTypeDatabase)
		}
		if err := c.Database.validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("storage.type must be %q or %q, got %q", StorageTypeDatabase, StorageTypeMemory, c.Storage.Type)
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

func (m *MercadoPublicoConfig) validate() error {
	if m.BaseURL != "" {
		u, err := url.Parse(m.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("baseUrl must be an absolute URL, got %q", m.BaseURL)
		}
	}
	if err := validateDuration(m.Timeout, "timeout"); err != nil {
		return err
	}
	return nil
}

// GetTimeout returns the request timeout, defaulting to 30s
func (m *MercadoPublicoConfig) GetTimeout() time.Duration {
	return parseDurationOr(m.Timeout, defaultAPITimeout)
}

// resolveTicket reads the ticket from TicketFile, falling back to the environment
func (m *MercadoPublicoConfig) resolveTicket() (string, error) {
	var ticket string
	if m.TicketFile != "" {
		t, err := readSecretFile(m.TicketFile)
		if err != nil {
			return "", fmt.Errorf("failed to read ticket from file %s: %w", m.TicketFile, err)
		}
		ticket = t
	} else {
		ticket = os.Getenv(TicketEnvVar)
	}

	if !usableTicket(ticket) {
		return "", fmt.Errorf("%w: set mercadoPublico.ticketFile or %s", ErrMissingTicket, TicketEnvVar)
	}
	return strings.TrimSpace(ticket), nil
}

func (s *SyncConfig) validate() error {
	for field, value := range map[string]string{
		"interval":        s.Interval,
		"cleanupInterval": s.CleanupInterval,
		"detailDelay":     s.DetailDelay,
	} {
		if err := validateDuration(value, field); err != nil {
			return err
		}
	}
	if s.GetInterval() <= 0 || s.GetCleanupInterval() <= 0 {
		return fmt.Errorf("interval and cleanupInterval must be positive")
	}
	if s.ProgressEvery < 0 {
		return fmt.Errorf("progressEvery must not be negative, got %d", s.ProgressEvery)
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", s.Timezone, err)
		}
	}
	return nil
}

// GetInterval returns the sync interval, defaulting to one hour
func (s *SyncConfig) GetInterval() time.Duration {
	return parseDurationOr(s.Interval, defaultSyncInterval)
}

// GetCleanupInterval returns the cleanup interval, defaulting to 24 hours
func (s *SyncConfig) GetCleanupInterval() time.Duration {
	return parseDurationOr(s.CleanupInterval, defaultCleanupInterval)
}

// GetDetailDelay returns the pause between detail requests, defaulting to 3s.
// An explicit "0s" disables pacing.
func (s *SyncConfig) GetDetailDelay() time.Duration {
	return parseDurationOr(s.DetailDelay, defaultDetailDelay)
}

// GetProgressEvery returns the enrichment progress log period, defaulting to 50
func (s *SyncConfig) GetProgressEvery() int {
	if s.ProgressEvery == 0 {
		return defaultProgressEvery
	}
	return s.ProgressEvery
}

// GetLocation returns the configured time zone, defaulting to America/Santiago
func (s *SyncConfig) GetLocation() (*time.Location, error) {
	name := s.Timezone
	if name == "" {
		name = defaultTimezone
	}
	return time.LoadLocation(name)
}

func (d *DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("host is required")
	}
	if d.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if d.User == "" {
		return fmt.Errorf("user is required")
	}
	if d.Database == "" {
		return fmt.Errorf("database is required")
	}
	if err := validateDuration(d.ConnMaxLifetime, "connMaxLifetime"); err != nil {
		return err
	}
	return validateDuration(d.ConnectTimeout, "connectTimeout")
}

func usableTicket(ticket string) bool {
	ticket = strings.TrimSpace(ticket)
	return ticket != "" && !strings.EqualFold(ticket, PlaceholderTicket)
}

func readSecretFile(path string) (string, error) {
	// Use filepath.Clean to prevent path traversal attacks
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func validateDuration(value, field string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %q", field, value)
	}
	return nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
