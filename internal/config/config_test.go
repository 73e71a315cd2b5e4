package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Endpoint.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Endpoint.Timeout)
	assert.Equal(t, StorageDriverFile, cfg.Storage.Driver)
	assert.Equal(t, DefaultStoragePath(), cfg.Storage.Path)
	assert.True(t, cfg.Refresh.SingleFlight)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ServerModeSTDIO, cfg.Server.Mode)
	assert.Equal(t, 8765, cfg.Server.Port)
}

func TestLoad_Sources(t *testing.T) {
	path := writeConfig(t, `
endpoint:
  base_url: https://api.dishom.test/
  timeout: 5s
  headers:
    X-Client: cli
storage:
  driver: memory
refresh:
  single_flight: false
server:
  mode: http
  port: 9000
`)

	tests := []struct {
		name    string
		env     map[string]string
		args    []string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "Config file",
			args: []string{"--config", path},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://api.dishom.test", cfg.Endpoint.BaseURL, "trailing slash is trimmed")
				assert.Equal(t, 5*time.Second, cfg.Endpoint.Timeout)
				assert.Equal(t, "cli", cfg.Endpoint.Headers["x-client"])
				assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
				assert.False(t, cfg.Refresh.SingleFlight)
				assert.Equal(t, ServerModeHTTP, cfg.Server.Mode)
				assert.Equal(t, 9000, cfg.Server.Port)
			},
		},
		{
			name: "Environment overrides the file",
			env:  map[string]string{"DISHOM_ENDPOINT_BASE_URL": "http://env.test", "DISHOM_SERVER_PORT": "9100"},
			args: []string{"--config", path},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://env.test", cfg.Endpoint.BaseURL)
				assert.Equal(t, 9100, cfg.Server.Port)
			},
		},
		{
			name: "Flags override everything",
			env:  map[string]string{"DISHOM_ENDPOINT_BASE_URL": "http://env.test"},
			args: []string{"--config", path, "--base-url", "http://flag.test", "--storage", "file", "--log-level", "debug"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://flag.test", cfg.Endpoint.BaseURL)
				assert.Equal(t, StorageDriverFile, cfg.Storage.Driver)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "Missing explicit config file",
			args:    []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")},
			wantErr: "failed to read config",
		},
		{
			name:    "Unknown storage driver",
			args:    []string{"--config", path, "--storage", "s3"},
			wantErr: "unsupported storage driver: s3",
		},
		{
			name:    "Unknown server mode",
			env:     map[string]string{"DISHOM_SERVER_MODE": "sse"},
			args:    []string{"--config", path},
			wantErr: "unsupported server mode: sse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load(newFlags(t, tt.args...))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "File driver without path",
			cfg:     Config{Storage: StorageConfig{Driver: StorageDriverFile}, Server: ServerConfig{Mode: ServerModeSTDIO}},
			wantErr: true,
		},
		{
			name:    "Redis driver without address",
			cfg:     Config{Storage: StorageConfig{Driver: StorageDriverRedis}, Server: ServerConfig{Mode: ServerModeSTDIO}},
			wantErr: true,
		},
		{
			name: "Memory driver",
			cfg:  Config{Storage: StorageConfig{Driver: StorageDriverMemory}, Server: ServerConfig{Mode: ServerModeHTTP}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetVersionInfo(t *testing.T) {
	assert.Equal(t, "dishom version dev, commit none, built at unknown", GetVersionInfo())
}
