package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
host: {{ .HOST }}
provider:
  url: {{ .PROVIDER_URL }}
  anonKey: {{ .PROVIDER_ANON_KEY }}
auth:
  mode: remote
store:
  timeout: 3s
cors:
  allowedOrigins:
    - http://localhost:3000
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	t.Setenv("HOST", "api.example.com")
	t.Setenv("PROVIDER_URL", "https://project.example.co")
	t.Setenv("PROVIDER_ANON_KEY", "anon-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "api.example.com", cfg.Host)
	assert.Equal(t, "https://project.example.co", cfg.Provider.URL)
	assert.Equal(t, "anon-key", cfg.Provider.AnonKey)
	assert.Equal(t, "/api", cfg.BasePath)
	assert.Equal(t, BackendRest, cfg.Store.Backend)
	assert.Equal(t, CredentialAnon, cfg.Store.CredentialMode)
	assert.Equal(t, 3*time.Second, cfg.Store.Timeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoadConfig_MissingPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse("basePath: v1/\n", nil)
	require.NoError(t, err)

	assert.Equal(t, "/v1", cfg.BasePath)
	assert.Equal(t, AuthRemote, cfg.Auth.Mode)
	assert.Equal(t, DefaultTimeout, cfg.Store.Timeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Parse(`
provider:
  url: https://project.example.co
  anonKey: anon
`, nil)
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:    "remote auth needs provider url",
			mutate:  func(c *Config) { c.Provider.URL = "" },
			wantErr: "provider.url is required for remote auth",
		},
		{
			name:    "local auth without secret must opt in",
			mutate:  func(c *Config) { c.Auth.Mode = AuthLocal },
			wantErr: "auth.allowUnverified",
		},
		{
			name:   "local auth with opt in",
			mutate: func(c *Config) { c.Auth.Mode = AuthLocal; c.Auth.AllowUnverified = true },
		},
		{
			name:   "local auth with secret",
			mutate: func(c *Config) { c.Auth.Mode = AuthLocal; c.Auth.JWTSecret = "s3cret" },
		},
		{
			name:    "service mode needs a key",
			mutate:  func(c *Config) { c.Store.CredentialMode = CredentialService },
			wantErr: "provider.serviceKey",
		},
		{
			name: "service key from secrets manager",
			mutate: func(c *Config) {
				c.Store.CredentialMode = CredentialService
				c.Provider.ServiceKeySecretID = "splitbook/service-key"
			},
		},
		{
			name:    "timeout is bounded",
			mutate:  func(c *Config) { c.Store.Timeout = time.Minute },
			wantErr: "store.timeout",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Store.Timeout = -time.Second },
			wantErr: "store.timeout",
		},
		{
			name:    "postgres needs a source",
			mutate:  func(c *Config) { c.Store.Backend = BackendPostgres },
			wantErr: "database.source",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "sqlite" },
			wantErr: "unknown store.backend",
		},
		{
			name:    "pulsar needs a topic",
			mutate:  func(c *Config) { c.Pulsar.URL = "pulsar://localhost:6650" },
			wantErr: "pulsar.topic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
