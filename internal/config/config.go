package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Endpoints holds the base URL of each remote service.
type Endpoints struct {
	Auth    string `yaml:"auth"`
	Assess  string `yaml:"assess"`
	Thyroid string `yaml:"thyroid"`
	Lung    string `yaml:"lung"`
	Brain   string `yaml:"brain"`
}

// SingleHost points every service at base, which is how the dev server
// is reached.
func SingleHost(base string) Endpoints {
	return Endpoints{Auth: base, Assess: base, Thyroid: base, Lung: base, Brain: base}
}

// Config is the application configuration.
type Config struct {
	Endpoints Endpoints `yaml:"endpoints"`

	// Timeout bounds each remote call. Zero means no client-side timeout;
	// requests then last until the transport resolves or the caller cancels.
	Timeout time.Duration `yaml:"timeout"`

	// DBPath overrides the default SQLite location.
	DBPath string `yaml:"db"`
}

// Default returns the configuration used when nothing is set: every
// service on its conventional local port.
func Default() Config {
	return Config{
		Endpoints: Endpoints{
			Auth:    "http://localhost:5000",
			Assess:  "http://localhost:5003",
			Thyroid: "http://localhost:5003",
			Lung:    "http://localhost:5004",
			Brain:   "http://localhost:5002",
		},
	}
}

// Load builds a Config in priority order (later wins):
//  1. Default()
//  2. YAML file at path, or DefaultPath() when path is empty
//  3. .env in the working directory (never overrides the real environment)
//  4. CARESCOPE_* environment variables
//
// A missing file is only an error when path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// DefaultPath returns $XDG_CONFIG_HOME/carescope/config.yaml, falling back
// to ~/.config/carescope/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv("CARESCOPE_CONFIG"); p != "" {
		return p, nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "carescope", "config.yaml"), nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	// Decode over a copy so unset keys keep their defaults.
	fileCfg := *cfg
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	*cfg = fileCfg
	return nil
}

func applyEnv(cfg *Config) error {
	if u := os.Getenv("CARESCOPE_BASE_URL"); u != "" {
		cfg.Endpoints = SingleHost(u)
	}

	overrides := []struct {
		env string
		dst *string
	}{
		{"CARESCOPE_AUTH_URL", &cfg.Endpoints.Auth},
		{"CARESCOPE_ASSESS_URL", &cfg.Endpoints.Assess},
		{"CARESCOPE_THYROID_URL", &cfg.Endpoints.Thyroid},
		{"CARESCOPE_LUNG_URL", &cfg.Endpoints.Lung},
		{"CARESCOPE_BRAIN_URL", &cfg.Endpoints.Brain},
		{"CARESCOPE_DB", &cfg.DBPath},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	if v := os.Getenv("CARESCOPE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CARESCOPE_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	return nil
}

// Validate checks that every endpoint is an absolute http(s) URL.
func (c Config) Validate() error {
	endpoints := []struct {
		name string
		raw  string
	}{
		{"auth", c.Endpoints.Auth},
		{"assess", c.Endpoints.Assess},
		{"thyroid", c.Endpoints.Thyroid},
		{"lung", c.Endpoints.Lung},
		{"brain", c.Endpoints.Brain},
	}
	for _, e := range endpoints {
		u, err := url.Parse(e.raw)
		if err != nil {
			return fmt.Errorf("%s endpoint: %w", e.name, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s endpoint %q must be an absolute http(s) URL", e.name, e.raw)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}
