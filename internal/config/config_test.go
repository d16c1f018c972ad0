package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Zero(t, cfg.Server.WriteTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Gateway.DispatchMaxAttempts)
	assert.Equal(t, 600*time.Millisecond, cfg.Gateway.DispatchRetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "co", cfg.Gateway.DefaultCountry)
	assert.Equal(t, "/v1/pedidos/{id}/marcar-despachado", cfg.Gateway.OrderMarkDispatchedPath)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
gateway:
  base_url: https://gw.example
  dispatch_max_attempts: 5
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("LOGISTICS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://gw.example", cfg.Gateway.BaseURL)
	assert.Equal(t, 5, cfg.Gateway.DispatchMaxAttempts)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Database: DatabaseConfig{Driver: "sqlite", Path: "x.db"},
			Gateway:  GatewayConfig{BaseURL: "http://gw", DispatchMaxAttempts: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid sqlite", mutate: func(c *Config) {}},
		{name: "postgres without url", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "postgres with url", mutate: func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.URL = "postgres://localhost/db"
		}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "missing gateway", mutate: func(c *Config) { c.Gateway.BaseURL = " " }, wantErr: true},
		{name: "zero attempts", mutate: func(c *Config) { c.Gateway.DispatchMaxAttempts = 0 }, wantErr: true},
		{name: "negative write timeout", mutate: func(c *Config) { c.Server.WriteTimeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
