// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all pokedex configuration.
type Config struct {
	API     API     `yaml:"api"`
	Catalog Catalog `yaml:"catalog"`
	Session Session `yaml:"session"`
	Log     Log     `yaml:"log"`
}

// API holds backend connection settings.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Catalog holds paging and detail prefetch settings.
type Catalog struct {
	PageSize       int           `yaml:"page_size"`
	BatchSize      int           `yaml:"batch_size"`      // Detail requests per batch
	BatchDelay     time.Duration `yaml:"batch_delay"`     // Stagger between batch starts
	Lookahead      int           `yaml:"lookahead"`       // Entries prefetched from the page start
	FullSize       int           `yaml:"full_size"`       // Size of the complete catalog
	ListingCeiling int           `yaml:"listing_ceiling"` // Largest limit the listing accepts
}

// Session holds where the login token is stored.
type Session struct {
	Path string `yaml:"path"`

	// Token overrides the stored session. Only settable from the environment.
	Token string `yaml:"-"`
}

// Log holds logging settings.
type Log struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: API{
			BaseURL: "http://localhost:5000",
			Timeout: 20 * time.Second,
		},
		Catalog: Catalog{
			PageSize:       50,
			BatchSize:      25,
			BatchDelay:     200 * time.Millisecond,
			Lookahead:      150,
			FullSize:       1302,
			ListingCeiling: 1000,
		},
		Session: Session{
			Path: "~/.config/pokedex/session.json",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url cannot be empty")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("config: api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %v", c.API.Timeout)
	}
	for name, v := range map[string]int{
		"catalog.page_size":       c.Catalog.PageSize,
		"catalog.batch_size":      c.Catalog.BatchSize,
		"catalog.lookahead":       c.Catalog.Lookahead,
		"catalog.full_size":       c.Catalog.FullSize,
		"catalog.listing_ceiling": c.Catalog.ListingCeiling,
	} {
		if v <= 0 {
			return fmt.Errorf("config: %s must be positive, got %d", name, v)
		}
	}
	if c.Catalog.BatchDelay < 0 {
		return fmt.Errorf("config: catalog.batch_delay must be non-negative, got %v", c.Catalog.BatchDelay)
	}
	if c.Session.Path == "" {
		return errors.New("config: session.path cannot be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// envOverrides lists the supported environment variables. Unset variables
// leave their pointer nil.
type envOverrides struct {
	BaseURL     *string        `env:"POKEDEX_API_URL"`
	Timeout     *time.Duration `env:"POKEDEX_API_TIMEOUT"`
	PageSize    *int           `env:"POKEDEX_PAGE_SIZE"`
	SessionPath *string        `env:"POKEDEX_SESSION_PATH"`
	LogLevel    *string        `env:"POKEDEX_LOG_LEVEL"`
	LogFile     *string        `env:"POKEDEX_LOG_FILE"`
	Token       *string        `env:"POKEDEX_TOKEN"`
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: POKEDEX_API_URL, POKEDEX_API_TIMEOUT, POKEDEX_PAGE_SIZE,
// POKEDEX_SESSION_PATH, POKEDEX_LOG_LEVEL, POKEDEX_LOG_FILE, POKEDEX_TOKEN.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if o.BaseURL != nil && *o.BaseURL != "" {
		c.API.BaseURL = *o.BaseURL
	}
	if o.Timeout != nil {
		c.API.Timeout = *o.Timeout
	}
	if o.PageSize != nil {
		c.Catalog.PageSize = *o.PageSize
	}
	if o.SessionPath != nil && *o.SessionPath != "" {
		c.Session.Path = *o.SessionPath
	}
	if o.LogLevel != nil && *o.LogLevel != "" {
		c.Log.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		c.Log.File = *o.LogFile
	}
	if o.Token != nil {
		c.Session.Token = *o.Token
	}
	return nil
}

// ExpandHome replaces a leading "~/" in path with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	API     *rawAPI     `yaml:"api"`
	Catalog *rawCatalog `yaml:"catalog"`
	Session *rawSession `yaml:"session"`
	Log     *rawLog     `yaml:"log"`
}

type rawAPI struct {
	BaseURL *string        `yaml:"base_url"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawCatalog struct {
	PageSize       *int           `yaml:"page_size"`
	BatchSize      *int           `yaml:"batch_size"`
	BatchDelay     *time.Duration `yaml:"batch_delay"`
	Lookahead      *int           `yaml:"lookahead"`
	FullSize       *int           `yaml:"full_size"`
	ListingCeiling *int           `yaml:"listing_ceiling"`
}

type rawSession struct {
	Path *string `yaml:"path"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.API != nil {
		setIf(&c.API.BaseURL, layer.API.BaseURL)
		setIf(&c.API.Timeout, layer.API.Timeout)
	}
	if layer.Catalog != nil {
		setIf(&c.Catalog.PageSize, layer.Catalog.PageSize)
		setIf(&c.Catalog.BatchSize, layer.Catalog.BatchSize)
		setIf(&c.Catalog.BatchDelay, layer.Catalog.BatchDelay)
		setIf(&c.Catalog.Lookahead, layer.Catalog.Lookahead)
		setIf(&c.Catalog.FullSize, layer.Catalog.FullSize)
		setIf(&c.Catalog.ListingCeiling, layer.Catalog.ListingCeiling)
	}
	if layer.Session != nil {
		setIf(&c.Session.Path, layer.Session.Path)
	}
	if layer.Log != nil {
		setIf(&c.Log.Level, layer.Log.Level)
		setIf(&c.Log.File, layer.Log.File)
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
