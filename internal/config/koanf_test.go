package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequired sets the variables without defaults and points CONFIG_PATH
// at an empty directory so no stray config.yaml is picked up.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENT_ID", "client-123")
	t.Setenv("SECRET_ID", "spotify-client-secret")
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "us-west1", cfg.GCP.Region)
	assert.False(t, cfg.Match.Enabled)
	assert.Equal(t, "https://accounts.spotify.com/api/token", cfg.SpotifyAuth.TokenURL)
	assert.Equal(t, time.Hour, cfg.SpotifyAuth.TokenTTL)
	assert.Equal(t, "client-123", cfg.SpotifyAuth.ClientID)
	assert.Equal(t, 3, cfg.Spotify.MaxRetries)
	assert.Equal(t, "sqlite", cfg.Secrets.Driver)
	assert.Equal(t, "latest", cfg.Secrets.VersionID)
	assert.Equal(t, "https://us-west1-aiplatform.googleapis.com", cfg.AIPlatformBaseURL())
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("PROJECT_ID", "spotifind-prod")
	t.Setenv("REGION", "europe-west4")
	t.Setenv("MATCH_SERVICE_ENABLED", "true")
	t.Setenv("SPOTIFY_READ_TIMEOUT", "2s")
	t.Setenv("SECRET_VERSION_ID", "7")
	t.Setenv("CLIENT_SECRET", "shh")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Environment)
	assert.Equal(t, "spotifind-prod", cfg.GCP.ProjectID)
	assert.True(t, cfg.Match.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Spotify.Timeouts.Read)
	assert.Equal(t, "7", cfg.Secrets.VersionID)
	assert.Equal(t, "shh", cfg.Secrets.Seed)
	assert.Equal(t, "https://europe-west4-aiplatform.googleapis.com", cfg.AIPlatformBaseURL())
}

func TestLoad_YAMLFile(t *testing.T) {
	setRequired(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
environment: staging
server:
  addr: ":9090"
match:
  api_base_url: "http://localhost:8081/"
spotify:
  max_retries: 5
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Spotify.MaxRetries)
	assert.Equal(t, "http://localhost:8081", cfg.AIPlatformBaseURL())
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	setRequired(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_ADDR", ":7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing client id",
			env:     map[string]string{"CLIENT_ID": ""},
			wantErr: "ClientID",
		},
		{
			name:    "unknown secret driver",
			env:     map[string]string{"SECRET_STORE_DRIVER": "vault"},
			wantErr: "Driver",
		},
		{
			name:    "match enabled without project",
			env:     map[string]string{"MATCH_SERVICE_ENABLED": "true"},
			wantErr: "gcp.project_id is required when match.enabled",
		},
		{
			name:    "secretmanager without project",
			env:     map[string]string{"SECRET_STORE_DRIVER": "secretmanager"},
			wantErr: "gcp.project_id is required for the secretmanager driver",
		},
		{
			name:    "sqlite without path",
			env:     map[string]string{"SECRET_STORE_PATH": ""},
			wantErr: "secrets.path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTimeoutConfig_HTTPClient(t *testing.T) {
	c := TimeoutConfig{Connect: time.Second, Read: 2 * time.Second}.HTTPClient()
	assert.Equal(t, 3*time.Second, c.Timeout)
}
