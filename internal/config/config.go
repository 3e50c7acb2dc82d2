// Package config loads service configuration from struct defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration.
type Config struct {
	Environment string        `koanf:"environment" validate:"required"`
	Server      ServerConfig  `koanf:"server"`
	Logging     LoggingConfig `koanf:"logging"`
	GCP         GCPConfig     `koanf:"gcp"`
	Match       MatchConfig   `koanf:"match"`
	SpotifyAuth AuthConfig    `koanf:"spotify_auth"`
	Spotify     SpotifyConfig `koanf:"spotify"`
	Secrets     SecretsConfig `koanf:"secrets"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RateLimitReqs   int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// GCPConfig identifies the cloud project hosting the index and the secret.
type GCPConfig struct {
	ProjectID   string `koanf:"project_id"`
	Region      string `koanf:"region" validate:"required"`
	AccessToken string `koanf:"access_token"`
}

// MatchConfig selects and configures the vector search backend.
type MatchConfig struct {
	// Enabled switches from the mock backend to the deployed index endpoint.
	Enabled bool `koanf:"enabled"`
	// APIBaseURL overrides https://{region}-aiplatform.googleapis.com.
	APIBaseURL       string        `koanf:"api_base_url" validate:"omitempty,url"`
	Timeouts         TimeoutConfig `koanf:"timeouts"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
	BreakerThreshold uint32        `koanf:"breaker_threshold" validate:"gt=0"`
}

// AuthConfig configures the client-credentials token fetch.
type AuthConfig struct {
	TokenURL string        `koanf:"token_url" validate:"required,url"`
	ClientID string        `koanf:"client_id" validate:"required"`
	Timeouts TimeoutConfig `koanf:"timeouts"`
	TokenTTL time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

type SpotifyConfig struct {
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	Timeouts     TimeoutConfig `koanf:"timeouts"`
	MaxRetries   int           `koanf:"max_retries" validate:"gte=1"`
	RetryBackoff time.Duration `koanf:"retry_backoff" validate:"gt=0"`
}

// SecretsConfig selects where the client secret is read from.
type SecretsConfig struct {
	Driver    string        `koanf:"driver" validate:"oneof=sqlite secretmanager"`
	Path      string        `koanf:"path"`
	BaseURL   string        `koanf:"base_url" validate:"omitempty,url"`
	SecretID  string        `koanf:"secret_id" validate:"required"`
	VersionID string        `koanf:"version_id" validate:"required"`
	Timeouts  TimeoutConfig `koanf:"timeouts"`
	// Seed, when set with the sqlite driver, is stored as a new secret
	// version at startup.
	Seed string `koanf:"seed"`
}

// TimeoutConfig bounds every outbound call: Connect covers the dial,
// Read covers waiting for response headers and the overall request.
type TimeoutConfig struct {
	Connect time.Duration `koanf:"connect" validate:"gt=0"`
	Read    time.Duration `koanf:"read" validate:"gt=0"`
}

// HTTPClient builds a client that enforces both timeouts.
func (t TimeoutConfig) HTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: t.Connect, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = t.Connect
	transport.ResponseHeaderTimeout = t.Read

	return &http.Client{
		Transport: transport,
		Timeout:   t.Connect + t.Read,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks struct constraints and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: %w", err)
	}

	if c.Match.Enabled && c.GCP.ProjectID == "" {
		return errors.New("config: gcp.project_id is required when match.enabled is true")
	}
	if c.Secrets.Driver == "secretmanager" && c.GCP.ProjectID == "" {
		return errors.New("config: gcp.project_id is required for the secretmanager driver")
	}
	if c.Secrets.Driver == "sqlite" && c.Secrets.Path == "" {
		return errors.New("config: secrets.path is required for the sqlite driver")
	}
	return nil
}

// AIPlatformBaseURL returns the regional endpoint used for index discovery.
func (c *Config) AIPlatformBaseURL() string {
	if c.Match.APIBaseURL != "" {
		return strings.TrimRight(c.Match.APIBaseURL, "/")
	}
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com", c.GCP.Region)
}
