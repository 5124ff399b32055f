package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Dashboard DashboardConfig `koanf:"dashboard"`
}

type ServerConfig struct {
	Host    string     `koanf:"host"`
	Port    int        `koanf:"port"`
	Mode    string     `koanf:"mode"`
	Timeout string     `koanf:"timeout"`
	CORS    CORSConfig `koanf:"cors"`
	// Metrics exposes GET /metrics when true.
	Metrics bool `koanf:"metrics"`
}

type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// DashboardConfig tunes the record screens.
type DashboardConfig struct {
	// PageSize is the default page size of every screen.
	PageSize int `koanf:"page_size"`
	// CertificationWarningDays is the due-soon window of training certifications.
	CertificationWarningDays int `koanf:"certification_warning_days"`
	// Locale is the BCP 47 tag used for string sorting.
	Locale string `koanf:"locale"`
	// ViewTTL is how long an idle view survives.
	ViewTTL string `koanf:"view_ttl"`
	// FetchTimeout bounds one remote collection load.
	FetchTimeout string `koanf:"fetch_timeout"`
	// Sources maps an entity name to the URL its records are fetched from.
	// Entities without a source are kept in the database.
	Sources map[string]string `koanf:"sources"`
}

// Default dashboard values applied by Validate.
const (
	DefaultPageSize                 = 10
	DefaultCertificationWarningDays = 90
	DefaultViewTTL                  = "30m"
	DefaultFetchTimeout             = "10s"
)

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and a double underscore as the
// hierarchy separator, so APP__DASHBOARD__PAGE_SIZE=25 overrides
// dashboard.page_size. Single underscores stay part of the key name.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks supported values and fills dashboard defaults.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	return c.validateDashboard()
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	// Whitespace-only durations mean unset.
	c.Server.Timeout = strings.TrimSpace(c.Server.Timeout)
	c.Server.CORS.MaxAge = strings.TrimSpace(c.Server.CORS.MaxAge)
	if err := optionalDuration("server.timeout", c.Server.Timeout); err != nil {
		return err
	}
	return optionalDuration("server.cors.max_age", c.Server.CORS.MaxAge)
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		path := strings.TrimSpace(c.Database.SQLite.Path)
		if path == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = path
	case "postgres":
		if err := c.validatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	c.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.Database.Pool.ConnMaxLifetime)
	return optionalDuration("database.pool.conn_max_lifetime", c.Database.Pool.ConnMaxLifetime)
}

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres
	pg.Host = strings.TrimSpace(pg.Host)
	pg.User = strings.TrimSpace(pg.User)
	pg.DBName = strings.TrimSpace(pg.DBName)
	pg.SSLMode = strings.TrimSpace(pg.SSLMode)

	switch {
	case pg.Host == "":
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	case pg.Port < 1 || pg.Port > 65535:
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	case pg.User == "":
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	case pg.DBName == "":
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	switch pg.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of disable, allow, prefer, require, verify-ca, verify-full", pg.SSLMode)
	}
	if c.Server.Mode == gin.ReleaseMode {
		switch pg.SSLMode {
		case "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of require, verify-ca, verify-full", pg.SSLMode, gin.ReleaseMode)
		}
	}
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

func (c *Config) validateDashboard() error {
	d := &c.Dashboard

	switch {
	case d.PageSize == 0:
		d.PageSize = DefaultPageSize
	case d.PageSize < 0 || d.PageSize > 100:
		return fmt.Errorf("invalid dashboard.page_size %d: must be between 1 and 100", d.PageSize)
	}

	switch {
	case d.CertificationWarningDays == 0:
		d.CertificationWarningDays = DefaultCertificationWarningDays
	case d.CertificationWarningDays < 0:
		return fmt.Errorf("invalid dashboard.certification_warning_days %d: must be positive", d.CertificationWarningDays)
	}

	d.Locale = strings.TrimSpace(d.Locale)
	if d.Locale != "" {
		if _, err := language.Parse(d.Locale); err != nil {
			return fmt.Errorf("invalid dashboard.locale %q: %w", d.Locale, err)
		}
	}

	d.ViewTTL = strings.TrimSpace(d.ViewTTL)
	if d.ViewTTL == "" {
		d.ViewTTL = DefaultViewTTL
	}
	if err := optionalDuration("dashboard.view_ttl", d.ViewTTL); err != nil {
		return err
	}

	d.FetchTimeout = strings.TrimSpace(d.FetchTimeout)
	if d.FetchTimeout == "" {
		d.FetchTimeout = DefaultFetchTimeout
	}
	if err := optionalDuration("dashboard.fetch_timeout", d.FetchTimeout); err != nil {
		return err
	}

	for entity, raw := range d.Sources {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid dashboard.sources.%s %q: must be an absolute http(s) URL", entity, raw)
		}
		d.Sources[entity] = u.String()
	}
	return nil
}

// LocaleTag returns the parsed dashboard locale. The zero tag selects the
// root collation.
func (d DashboardConfig) LocaleTag() language.Tag {
	tag, err := language.Parse(d.Locale)
	if err != nil {
		return language.Und
	}
	return tag
}

// CertificationWarning returns the due-soon window as a duration.
func (d DashboardConfig) CertificationWarning() time.Duration {
	return time.Duration(d.CertificationWarningDays) * 24 * time.Hour
}

// ViewTTLDuration returns the parsed view TTL, or the default when unparseable.
func (d DashboardConfig) ViewTTLDuration() time.Duration {
	return parseDurationOr(d.ViewTTL, DefaultViewTTL)
}

// FetchTimeoutDuration returns the parsed fetch timeout, or the default when unparseable.
func (d DashboardConfig) FetchTimeoutDuration() time.Duration {
	return parseDurationOr(d.FetchTimeout, DefaultFetchTimeout)
}

func parseDurationOr(v, fallback string) time.Duration {
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// optionalDuration accepts an empty value or a positive Go duration.
func optionalDuration(name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, v)
	}
	return nil
}
