package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmislib/cmislib.go/pkg/constants"
	zlog "github.com/cmislib/cmislib.go/pkg/logger/zerolog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvURL, EnvUsername, EnvPassword, EnvRepository} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, constants.DefaultHTTPTimeout.String(), cfg.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, FormatText, cfg.Log.Format)
	assert.ErrorIs(t, cfg.Validate(), ErrNoURL)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
url: http://cmis.example/alfresco/s/cmis
username: admin
password: admin
repository: repo-1
timeout: 45s
log:
  level: debug
  format: zerolog
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://cmis.example/alfresco/s/cmis", cfg.URL)
	assert.Equal(t, "admin", cfg.Username)
	assert.Equal(t, "repo-1", cfg.Repository)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.Validate())

	conn, err := cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, conn.Timeout)
	assert.Equal(t, "admin", conn.Username)
	assert.Equal(t, "http://cmis.example", conn.BaseURL)
	assert.IsType(t, &zlog.ZerologHandler{}, conn.Logger)
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(writeConfig(t, "url: http://cmis.example/service\n"))
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultHTTPTimeout.String(), cfg.Timeout)
	assert.Equal(t, FormatText, cfg.Log.Format)
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadFile(writeConfig(t, "url: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvURL, "https://env.example/cmis")
	t.Setenv(EnvPassword, "from-env")

	cfg, err := LoadFile(writeConfig(t, "url: http://file.example/cmis\nusername: bob\npassword: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/cmis", cfg.URL)
	assert.Equal(t, "bob", cfg.Username)
	assert.Equal(t, "from-env", cfg.Password)
	assert.Empty(t, cfg.Repository)
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvURL, "http://env.example/cmis")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/cmis", cfg.URL)

	t.Setenv(EnvConfig, writeConfig(t, "repository: r2\n"))
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "r2", cfg.Repository)
	assert.Equal(t, "http://env.example/cmis", cfg.URL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		valid bool
	}{
		{"ok", func(*Config) {}, true},
		{"no url", func(c *Config) { c.URL = "" }, false},
		{"bad timeout", func(c *Config) { c.Timeout = "soon" }, false},
		{"empty timeout", func(c *Config) { c.Timeout = "" }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"upper level", func(c *Config) { c.Log.Level = "ERROR" }, true},
		{"json", func(c *Config) { c.Log.Format = FormatJSON }, true},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.URL = "http://cmis.example/service"
			tt.edit(cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestConnection_URLCredentials(t *testing.T) {
	cfg := Default()
	cfg.URL = "http://alice:pw@cmis.example/service"
	conn, err := cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, "alice", conn.Username)
	assert.Equal(t, "pw", conn.Password)

	cfg.Username, cfg.Password = "bob", "other"
	conn, err = cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, "bob", conn.Username)
	assert.Equal(t, "other", conn.Password)
}

func TestConnection_BadScheme(t *testing.T) {
	cfg := Default()
	cfg.URL = "ftp://cmis.example/service"
	_, err := cfg.Connection()
	require.Error(t, err)
}
