package types

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the connection settings for the target OGC API
// Processes endpoint. At most one authentication mode may be set.
type ServerConfig struct {
	BaseURL   string `yaml:"base_url"`
	AuthToken string `yaml:"auth_token,omitempty"`
	Username  string `yaml:"username,omitempty"`
	Password  string `yaml:"password,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"`

	// TimeoutSecs is the per-request HTTP timeout. It is unrelated to the
	// job monitoring timeout, which is a per-run orchestration setting.
	TimeoutSecs int `yaml:"timeout,omitempty"`
}

// AuthRequired reports whether any credential is configured.
func (c *ServerConfig) AuthRequired() bool {
	return c.AuthToken != "" || c.APIKey != "" || (c.Username != "" && c.Password != "")
}

// TesterConfig is the on-disk configuration file (patterns.yml).
type TesterConfig struct {
	Server      ServerConfig `yaml:"server"`
	PatternsDir string       `yaml:"patterns_dir,omitempty"`
	CacheDir    string       `yaml:"cache_dir,omitempty"`
}

const DefaultTimeoutSecs = 600

// LoadTesterConfig reads and validates a patterns.yml file.
func LoadTesterConfig(filename string) (*TesterConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var cfg TesterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}

	if err := ValidateServerConfig(&cfg.Server); err != nil {
		return nil, fmt.Errorf("validation error in %s: %w", filename, err)
	}

	return &cfg, nil
}

// ValidateServerConfig checks the server section and applies defaults.
func ValidateServerConfig(cfg *ServerConfig) error {
	var errs []string

	if cfg.BaseURL == "" {
		errs = append(errs, "field 'base_url' is required")
	} else {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("field 'base_url' %q is not a valid http(s) URL", cfg.BaseURL))
		}
	}

	if cfg.TimeoutSecs < 0 {
		errs = append(errs, "field 'timeout' cannot be negative")
	}
	if cfg.TimeoutSecs == 0 {
		cfg.TimeoutSecs = DefaultTimeoutSecs
	}

	modes := 0
	if cfg.AuthToken != "" {
		modes++
	}
	if cfg.APIKey != "" {
		modes++
	}
	if cfg.Username != "" || cfg.Password != "" {
		if cfg.Username == "" || cfg.Password == "" {
			errs = append(errs, "fields 'username' and 'password' must be set together")
		}
		modes++
	}
	if modes > 1 {
		errs = append(errs, "at most one of 'auth_token', 'api_key', or 'username'/'password' may be set")
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if len(errs) > 0 {
		return errors.New("server configuration validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
