package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TermConfig is the fallback term window used when the uploaded text carries
// no detectable date range. Dates are "YYYY-MM-DD". Empty fields mean the
// converter derives the window from the current year (Sep 1 .. Jan 26,
// anchored at Sep 4).
type TermConfig struct {
	Start  string `yaml:"start" json:"start"`
	End    string `yaml:"end" json:"end"`
	Anchor string `yaml:"anchor" json:"anchor"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the convert API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the convert API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone the schedule is expressed in
	// (e.g. "Europe/Vilnius"). It becomes the calendar's X-WR-TIMEZONE
	// and localizes event start/end instants.
	Timezone string `yaml:"timezone" json:"timezone"`

	// CalendarName is the X-WR-CALNAME of generated calendars.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// ProductID is the PRODID of generated calendars.
	ProductID string `yaml:"product_id" json:"product_id"`

	// LocationLabel is the fixed LOCATION stamped on every event.
	LocationLabel string `yaml:"location_label" json:"location_label"`

	// DefaultTerm is used when no term date range is found in the input.
	DefaultTerm TermConfig `yaml:"default_term" json:"default_term"`

	// MaxUploadBytes caps the request body size of the convert endpoint.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" json:"max_upload_bytes"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Timezone:       "Europe/Vilnius",
		CalendarName:   "Vilnius Tech Schedule",
		ProductID:      "-//vtechcal//Vilnius Tech Schedule//EN",
		LocationLabel:  "Vilnius Tech",
		DefaultTerm:    TermConfig{},
		MaxUploadBytes: 16 << 20,
		BasicAuth:      nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Vilnius"
	}
	if c.CalendarName == "" {
		c.CalendarName = "Vilnius Tech Schedule"
	}
	if c.ProductID == "" {
		c.ProductID = "-//vtechcal//Vilnius Tech Schedule//EN"
	}
	if c.LocationLabel == "" {
		c.LocationLabel = "Vilnius Tech"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 16 << 20
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600,
// parent directory created) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg alongside the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration to path atomically (temp file + rename)
// with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".vtechcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
