package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createValidServerConfig() *ServerConfig {
	return &ServerConfig{
		BaseURL: "http://localhost:8080/ogc-api",
	}
}

func modifyServerConfig(cfg *ServerConfig, fn func(*ServerConfig)) *ServerConfig {
	fn(cfg)
	return cfg
}

func TestValidateServerConfig(t *testing.T) {
	tests := []struct {
		name        string
		config      *ServerConfig
		shouldError bool
		errContains string
	}{
		{
			name:        "Valid config",
			config:      createValidServerConfig(),
			shouldError: false,
		},
		{
			name:        "Missing base URL",
			config:      modifyServerConfig(createValidServerConfig(), func(c *ServerConfig) { c.BaseURL = "" }),
			shouldError: true,
			errContains: "field 'base_url' is required",
		},
		{
			name:        "Invalid base URL",
			config:      modifyServerConfig(createValidServerConfig(), func(c *ServerConfig) { c.BaseURL = "not a url" }),
			shouldError: true,
			errContains: "is not a valid http(s) URL",
		},
		{
			name:        "Non-http scheme",
			config:      modifyServerConfig(createValidServerConfig(), func(c *ServerConfig) { c.BaseURL = "ftp://server/ogc" }),
			shouldError: true,
			errContains: "is not a valid http(s) URL",
		},
		{
			name:        "Negative timeout",
			config:      modifyServerConfig(createValidServerConfig(), func(c *ServerConfig) { c.TimeoutSecs = -1 }),
			shouldError: true,
			errContains: "field 'timeout' cannot be negative",
		},
		{
			name: "Username without password",
			config: modifyServerConfig(createValidServerConfig(), func(c *ServerConfig) {
				c.Username = "alice"
			}),
			shouldError: true,
			errContains: "must be set together",
		},
		{
			name: "Multiple auth modes",
			config: modifyServerConfig(createValidServerConfig(), func(c *ServerConfig) {
				c.AuthToken = "tok"
				c.APIKey = "key"
			}),
			shouldError: true,
			errContains: "at most one of",
		},
		{
			name: "Token plus basic auth",
			config: modifyServerConfig(createValidServerConfig(), func(c *ServerConfig) {
				c.AuthToken = "tok"
				c.Username = "alice"
				c.Password = "secret"
			}),
			shouldError: true,
			errContains: "at most one of",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateServerConfig(tc.config)
			if tc.shouldError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateServerConfigDefaultsAndNormalization(t *testing.T) {
	cfg := &ServerConfig{BaseURL: "http://server.test/ogc-api///"}

	require.NoError(t, ValidateServerConfig(cfg))

	assert.Equal(t, "http://server.test/ogc-api", cfg.BaseURL, "trailing slashes are stripped")
	assert.Equal(t, DefaultTimeoutSecs, cfg.TimeoutSecs)
}

func TestAuthRequired(t *testing.T) {
	assert.False(t, (&ServerConfig{}).AuthRequired())
	assert.True(t, (&ServerConfig{AuthToken: "tok"}).AuthRequired())
	assert.True(t, (&ServerConfig{APIKey: "key"}).AuthRequired())
	assert.True(t, (&ServerConfig{Username: "a", Password: "b"}).AuthRequired())
	assert.False(t, (&ServerConfig{Username: "a"}).AuthRequired(), "basic auth needs both fields")
}

func TestLoadTesterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yml")
	content := `server:
  base_url: http://localhost:8080/ogc-api/
  auth_token: tok123
  timeout: 120
patterns_dir: data/patterns
cache_dir: temp/cwl
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadTesterConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/ogc-api", cfg.Server.BaseURL)
	assert.Equal(t, "tok123", cfg.Server.AuthToken)
	assert.Equal(t, 120, cfg.Server.TimeoutSecs)
	assert.Equal(t, "data/patterns", cfg.PatternsDir)
	assert.Equal(t, "temp/cwl", cfg.CacheDir)
}

func TestLoadTesterConfigMissingFile(t *testing.T) {
	_, err := LoadTesterConfig(filepath.Join(t.TempDir(), "nope.yml"))

	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadTesterConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yml")
	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0644))

	_, err := LoadTesterConfig(path)

	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadTesterConfigInvalidServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  base_url: \"\"\n"), 0644))

	_, err := LoadTesterConfig(path)

	assert.ErrorContains(t, err, "validation error")
}
