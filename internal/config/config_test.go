package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "http://localhost:5000" {
		t.Errorf("default base url = %q, want %q", cfg.API.BaseURL, "http://localhost:5000")
	}
	if cfg.API.Timeout != 20*time.Second {
		t.Errorf("default timeout = %v, want %v", cfg.API.Timeout, 20*time.Second)
	}
	if cfg.Catalog.PageSize != 50 || cfg.Catalog.BatchSize != 25 || cfg.Catalog.Lookahead != 150 {
		t.Errorf("default catalog = %+v", cfg.Catalog)
	}
	if cfg.Catalog.BatchDelay != 200*time.Millisecond {
		t.Errorf("default batch delay = %v, want 200ms", cfg.Catalog.BatchDelay)
	}
	if cfg.Catalog.FullSize != 1302 || cfg.Catalog.ListingCeiling != 1000 {
		t.Errorf("default sizes = %d/%d, want 1302/1000", cfg.Catalog.FullSize, cfg.Catalog.ListingCeiling)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
api:
  base_url: https://pokedex.example.com
  timeout: 5s
catalog:
  page_size: 20
  batch_delay: 50ms
log:
  level: debug
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://pokedex.example.com" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.API.Timeout)
	}
	if cfg.Catalog.PageSize != 20 {
		t.Errorf("page size = %d, want 20", cfg.Catalog.PageSize)
	}
	if cfg.Catalog.BatchDelay != 50*time.Millisecond {
		t.Errorf("batch delay = %v, want 50ms", cfg.Catalog.BatchDelay)
	}
	// Unset fields keep defaults.
	if cfg.Catalog.BatchSize != 25 {
		t.Errorf("batch size = %d, want default 25", cfg.Catalog.BatchSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
api:
  base_ulr: http://x
`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load() should return error for unknown field 'base_ulr'")
	}
}

func TestLoad_TokenNotReadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
session:
  token: secret
`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLayered(cfgPath); err == nil {
		t.Fatal("session.token should be rejected as an unknown field")
	}
}

func TestLoad_LayeredPriority(t *testing.T) {
	// Setup: user config sets base url, project config overrides page size.
	userDir := t.TempDir()
	projectDir := t.TempDir()

	userCfg := filepath.Join(userDir, "config.yaml")
	if err := os.WriteFile(userCfg, []byte(`
api:
  base_url: http://user:5000
catalog:
  page_size: 10
`), 0o644); err != nil {
		t.Fatal(err)
	}

	projectCfg := filepath.Join(projectDir, "config.yaml")
	if err := os.WriteFile(projectCfg, []byte(`
catalog:
  page_size: 30
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	// Base URL from user config (project doesn't set it).
	if cfg.API.BaseURL != "http://user:5000" {
		t.Errorf("base url = %q, want %q", cfg.API.BaseURL, "http://user:5000")
	}
	// Page size from project config (overrides user).
	if cfg.Catalog.PageSize != 30 {
		t.Errorf("page size = %d, want 30", cfg.Catalog.PageSize)
	}
	// Timeout retains default when neither layer sets it.
	if cfg.API.Timeout != 20*time.Second {
		t.Errorf("timeout = %v, want default", cfg.API.Timeout)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "POKEDEX_API_URL overrides base url",
			envs: map[string]string{"POKEDEX_API_URL": "https://api.example.com"},
			check: func(t *testing.T, c Config) {
				if c.API.BaseURL != "https://api.example.com" {
					t.Errorf("base url = %q", c.API.BaseURL)
				}
			},
		},
		{
			name: "POKEDEX_API_TIMEOUT overrides timeout",
			envs: map[string]string{"POKEDEX_API_TIMEOUT": "30s"},
			check: func(t *testing.T, c Config) {
				if c.API.Timeout != 30*time.Second {
					t.Errorf("timeout = %v, want %v", c.API.Timeout, 30*time.Second)
				}
			},
		},
		{
			name: "POKEDEX_PAGE_SIZE overrides page size",
			envs: map[string]string{"POKEDEX_PAGE_SIZE": "12"},
			check: func(t *testing.T, c Config) {
				if c.Catalog.PageSize != 12 {
					t.Errorf("page size = %d, want 12", c.Catalog.PageSize)
				}
			},
		},
		{
			name: "POKEDEX_TOKEN sets session token",
			envs: map[string]string{"POKEDEX_TOKEN": "abc"},
			check: func(t *testing.T, c Config) {
				if c.Session.Token != "abc" {
					t.Errorf("token = %q, want abc", c.Session.Token)
				}
			},
		},
		{
			name: "log settings",
			envs: map[string]string{"POKEDEX_LOG_LEVEL": "warn", "POKEDEX_LOG_FILE": "/tmp/pokedex.log"},
			check: func(t *testing.T, c Config) {
				if c.Log.Level != "warn" || c.Log.File != "/tmp/pokedex.log" {
					t.Errorf("log = %+v", c.Log)
				}
			},
		},
		{
			name: "unset variables keep values",
			envs: map[string]string{},
			check: func(t *testing.T, c Config) {
				if c != DefaultConfig() {
					t.Errorf("config changed without env: %+v", c)
				}
			},
		},
		{
			name:    "invalid POKEDEX_API_TIMEOUT returns error",
			envs:    map[string]string{"POKEDEX_API_TIMEOUT": "notaduration"},
			wantErr: true,
		},
		{
			name:    "invalid POKEDEX_PAGE_SIZE returns error",
			envs:    map[string]string{"POKEDEX_PAGE_SIZE": "lots"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "empty base url",
			modify:  func(c *Config) { c.API.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "base url without scheme",
			modify:  func(c *Config) { c.API.BaseURL = "localhost:5000" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.API.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "zero page size",
			modify:  func(c *Config) { c.Catalog.PageSize = 0 },
			wantErr: true,
		},
		{
			name:    "negative batch size",
			modify:  func(c *Config) { c.Catalog.BatchSize = -1 },
			wantErr: true,
		},
		{
			name:   "zero batch delay",
			modify: func(c *Config) { c.Catalog.BatchDelay = 0 },
		},
		{
			name:    "negative batch delay",
			modify:  func(c *Config) { c.Catalog.BatchDelay = -time.Second },
			wantErr: true,
		},
		{
			name:    "empty session path",
			modify:  func(c *Config) { c.Session.Path = "" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/ash")

	got, err := ExpandHome("~/.config/pokedex/session.json")
	if err != nil {
		t.Fatalf("ExpandHome() error = %v", err)
	}
	if got != "/home/ash/.config/pokedex/session.json" {
		t.Errorf("ExpandHome() = %q", got)
	}

	got, _ = ExpandHome("/abs/session.json")
	if got != "/abs/session.json" {
		t.Errorf("absolute path changed: %q", got)
	}
	got, _ = ExpandHome("~other/x")
	if !strings.HasPrefix(got, "~other") {
		t.Errorf("~user form should be left alone, got %q", got)
	}
}

func TestLoad_CommentOnlyFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("# just a comment\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load(comment-only) error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(comment-only) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load(empty) error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(empty) = %+v, want defaults %+v", *cfg, want)
	}
}
