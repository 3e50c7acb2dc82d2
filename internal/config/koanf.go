package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/spotifind/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		GCP: GCPConfig{
			Region: "us-west1",
		},
		Match: MatchConfig{
			Enabled:          false,
			Timeouts:         TimeoutConfig{Connect: 3 * time.Second, Read: 10 * time.Second},
			BreakerTimeout:   30 * time.Second,
			BreakerThreshold: 5,
		},
		SpotifyAuth: AuthConfig{
			TokenURL: "https://accounts.spotify.com/api/token",
			Timeouts: TimeoutConfig{Connect: 3 * time.Second, Read: 5 * time.Second},
			TokenTTL: time.Hour,
		},
		Spotify: SpotifyConfig{
			BaseURL:      "https://api.spotify.com",
			Timeouts:     TimeoutConfig{Connect: 3 * time.Second, Read: 5 * time.Second},
			MaxRetries:   3,
			RetryBackoff: 500 * time.Millisecond,
		},
		Secrets: SecretsConfig{
			Driver:    "sqlite",
			Path:      "spotifind.db",
			BaseURL:   "https://secretmanager.googleapis.com",
			VersionID: "latest",
			Timeouts:  TimeoutConfig{Connect: 3 * time.Second, Read: 5 * time.Second},
		},
	}
}

// Load builds the configuration: defaults, then the YAML file if one is
// found, then environment variables. The result is validated.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"environment": "environment",

	"http_addr":             "server.addr",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"project_id":       "gcp.project_id",
	"region":           "gcp.region",
	"gcp_access_token": "gcp.access_token",

	"match_service_enabled":   "match.enabled",
	"match_api_base_url":      "match.api_base_url",
	"match_connect_timeout":   "match.timeouts.connect",
	"match_read_timeout":      "match.timeouts.read",
	"match_breaker_timeout":   "match.breaker_timeout",
	"match_breaker_threshold": "match.breaker_threshold",

	"client_id":                    "spotify_auth.client_id",
	"spotify_token_url":            "spotify_auth.token_url",
	"spotify_auth_connect_timeout": "spotify_auth.timeouts.connect",
	"spotify_auth_read_timeout":    "spotify_auth.timeouts.read",
	"spotify_token_ttl":            "spotify_auth.token_ttl",

	"spotify_base_url":        "spotify.base_url",
	"spotify_connect_timeout": "spotify.timeouts.connect",
	"spotify_read_timeout":    "spotify.timeouts.read",
	"spotify_max_retries":     "spotify.max_retries",
	"spotify_retry_backoff":   "spotify.retry_backoff",

	"secret_store_driver":   "secrets.driver",
	"secret_store_path":     "secrets.path",
	"secret_store_base_url": "secrets.base_url",
	"secret_id":             "secrets.secret_id",
	"secret_version_id":     "secrets.version_id",
	"client_secret":         "secrets.seed",
}

// envTransformFunc maps known variables to config paths; everything else is ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
