package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // embedded zoneinfo for TIMEZONE

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/reconcile"
	"github.com/02loveslollipop/ac-installation-dashboard/services/dashboard/internal/source"
)

// Config holds environment-driven settings for the dashboard service.
type Config struct {
	Port        int
	BearerToken string

	Registry     source.Spec
	Progress     source.Spec
	SingleSource bool
	DatabaseURL  string

	Predicate      reconcile.Predicate
	Columns        reconcile.Columns
	DropMissingGeo bool

	RefreshInterval time.Duration
	CacheTTL        time.Duration
	RedisURL        string
	RequestTimeout  time.Duration
	Location        *time.Location

	LogLevel string
	LogJSON  bool

	ProfilePath string
}

// Profile is the optional YAML deployment profile named by DASHBOARD_PROFILE.
// Environment variables override whatever it sets.
type Profile struct {
	Registry        sourceProfile      `yaml:"registry"`
	Progress        sourceProfile      `yaml:"progress"`
	SingleSource    *bool              `yaml:"single_source"`
	StatusPredicate string             `yaml:"status_predicate"`
	DropMissingGeo  *bool              `yaml:"drop_missing_geo_before_metrics"`
	RefreshInterval *int               `yaml:"refresh_interval"`
	CacheTTL        string             `yaml:"cache_ttl"`
	Timezone        string             `yaml:"timezone"`
	Columns         *reconcile.Columns `yaml:"columns"`
}

type sourceProfile struct {
	URL   string `yaml:"url"`
	Sheet string `yaml:"sheet"`
	SQL   string `yaml:"sql"`
}

const (
	defaultPort            = 8080
	defaultRefreshInterval = 30 * time.Second
	defaultCacheTTL        = 30 * time.Second
	defaultRequestTimeout  = 15 * time.Second
	defaultTimezone        = "Asia/Riyadh"
)

// Load reads configuration from environment variables (optionally .env and a
// YAML profile).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:            defaultPort,
		Registry:        source.Spec{Name: "registry"},
		Progress:        source.Spec{Name: "progress"},
		Predicate:       reconcile.PredicateTimestamp,
		Columns:         reconcile.DefaultColumns(),
		DropMissingGeo:  true,
		RefreshInterval: defaultRefreshInterval,
		CacheTTL:        defaultCacheTTL,
		RequestTimeout:  defaultRequestTimeout,
		LogLevel:        "info",
		LogJSON:         true,
	}
	timezone := defaultTimezone

	if path := os.Getenv("DASHBOARD_PROFILE"); path != "" {
		cfg.ProfilePath = path
		p, err := LoadProfile(path)
		if err != nil {
			return cfg, err
		}
		tz, err := cfg.applyProfile(p)
		if err != nil {
			return cfg, err
		}
		if tz != "" {
			timezone = tz
		}
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	overrideString(&cfg.Registry.URL, "REGISTRY_URL")
	overrideString(&cfg.Registry.Sheet, "REGISTRY_SHEET")
	overrideString(&cfg.Registry.SQL, "REGISTRY_SQL")
	overrideString(&cfg.Progress.URL, "PROGRESS_URL")
	overrideString(&cfg.Progress.Sheet, "PROGRESS_SHEET")
	overrideString(&cfg.Progress.SQL, "PROGRESS_SQL")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&timezone, "TIMEZONE")

	if err := overrideBool(&cfg.SingleSource, "SINGLE_SOURCE"); err != nil {
		return cfg, err
	}
	if err := overrideBool(&cfg.DropMissingGeo, "DROP_MISSING_GEO_BEFORE_METRICS"); err != nil {
		return cfg, err
	}
	if err := overrideBool(&cfg.LogJSON, "LOG_JSON"); err != nil {
		return cfg, err
	}

	if predStr := os.Getenv("STATUS_PREDICATE"); predStr != "" {
		pred, err := reconcile.ParsePredicate(predStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid STATUS_PREDICATE: %w", err)
		}
		cfg.Predicate = pred
	}

	if intervalStr := os.Getenv("REFRESH_INTERVAL"); intervalStr != "" {
		secs, err := strconv.Atoi(intervalStr)
		if err != nil || secs < 0 {
			return cfg, fmt.Errorf("invalid REFRESH_INTERVAL: %s", intervalStr)
		}
		cfg.RefreshInterval = time.Duration(secs) * time.Second
	}

	if ttlStr := os.Getenv("CACHE_TTL"); ttlStr != "" {
		ttl, err := parseDuration(ttlStr)
		if err != nil {
			return cfg, fmt.Errorf("invalid CACHE_TTL: %s", ttlStr)
		}
		cfg.CacheTTL = ttl
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT"); timeoutStr != "" {
		timeout, err := parseDuration(timeoutStr)
		if err != nil || timeout <= 0 {
			return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT: %s", timeoutStr)
		}
		cfg.RequestTimeout = timeout
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return cfg, fmt.Errorf("invalid TIMEZONE: %s", timezone)
	}
	cfg.Location = loc

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadProfile parses a YAML deployment profile.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// applyProfile copies the profile onto cfg and returns its timezone, if any.
func (c *Config) applyProfile(p Profile) (string, error) {
	c.Registry.URL, c.Registry.Sheet, c.Registry.SQL = p.Registry.URL, p.Registry.Sheet, p.Registry.SQL
	c.Progress.URL, c.Progress.Sheet, c.Progress.SQL = p.Progress.URL, p.Progress.Sheet, p.Progress.SQL

	if p.SingleSource != nil {
		c.SingleSource = *p.SingleSource
	}
	if p.DropMissingGeo != nil {
		c.DropMissingGeo = *p.DropMissingGeo
	}
	if p.StatusPredicate != "" {
		pred, err := reconcile.ParsePredicate(p.StatusPredicate)
		if err != nil {
			return "", fmt.Errorf("profile status_predicate: %w", err)
		}
		c.Predicate = pred
	}
	if p.RefreshInterval != nil {
		if *p.RefreshInterval < 0 {
			return "", fmt.Errorf("profile refresh_interval: %d", *p.RefreshInterval)
		}
		c.RefreshInterval = time.Duration(*p.RefreshInterval) * time.Second
	}
	if p.CacheTTL != "" {
		ttl, err := parseDuration(p.CacheTTL)
		if err != nil {
			return "", fmt.Errorf("profile cache_ttl: %s", p.CacheTTL)
		}
		c.CacheTTL = ttl
	}
	if p.Columns != nil {
		c.Columns = mergeColumns(c.Columns, *p.Columns)
	}
	return p.Timezone, nil
}

func mergeColumns(base, over reconcile.Columns) reconcile.Columns {
	if over.ID != "" {
		base.ID = over.ID
	}
	if over.Latitude != "" {
		base.Latitude = over.Latitude
	}
	if over.Longitude != "" {
		base.Longitude = over.Longitude
	}
	if len(over.Timestamp) > 0 {
		base.Timestamp = over.Timestamp
	}
	if len(over.Region) > 0 {
		base.Region = over.Region
	}
	if over.Scope != "" {
		base.Scope = over.Scope
	}
	if over.Count != "" {
		base.Count = over.Count
	}
	return base
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Registry.URL == "" && c.Registry.SQL == "" {
		return errors.New("REGISTRY_URL or REGISTRY_SQL is required")
	}
	if !c.SingleSource && c.Progress.URL == "" && c.Progress.SQL == "" {
		return errors.New("PROGRESS_URL or PROGRESS_SQL is required unless SINGLE_SOURCE is set")
	}
	if c.UsesDatabase() && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for SQL sources")
	}
	if c.SingleSource && c.Predicate == reconcile.PredicateMembership {
		return errors.New("STATUS_PREDICATE=membership needs a progress source; unset SINGLE_SOURCE")
	}
	return nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UsesDatabase reports whether any configured source reads from Postgres.
func (c Config) UsesDatabase() bool {
	return c.Registry.SQL != "" || (!c.SingleSource && c.Progress.SQL != "")
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func overrideBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %s", key, v)
	}
	*dst = b
	return nil
}

// parseDuration accepts Go durations ("45s", "2m") or plain seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
