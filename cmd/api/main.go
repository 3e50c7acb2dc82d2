package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/spotifind/internal/adapters/credentials"
	"github.com/ewilliams-labs/spotifind/internal/adapters/matching"
	"github.com/ewilliams-labs/spotifind/internal/adapters/rest"
	"github.com/ewilliams-labs/spotifind/internal/adapters/secrets"
	"github.com/ewilliams-labs/spotifind/internal/adapters/spotify"
	"github.com/ewilliams-labs/spotifind/internal/adapters/sqlite"
	"github.com/ewilliams-labs/spotifind/internal/config"
	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/core/response"
	"github.com/ewilliams-labs/spotifind/internal/core/services"
	"github.com/ewilliams-labs/spotifind/internal/logging"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Secret store
	var store ports.SecretStore
	switch cfg.Secrets.Driver {
	case "sqlite":
		db, err := sqlite.NewAdapter(cfg.Secrets.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Secrets.Path).Msg("failed to open secret store")
		}
		defer db.Close()
		if cfg.Secrets.Seed != "" {
			version, err := db.AddSecretVersion(ctx, cfg.GCP.ProjectID, cfg.Secrets.SecretID, []byte(cfg.Secrets.Seed))
			if err != nil {
				logging.Fatal().Err(err).Msg("failed to seed client secret")
			}
			logging.Info().Str("secret_id", cfg.Secrets.SecretID).Str("version", version).Msg("client secret seeded")
		}
		store = db
	case "secretmanager":
		store = secrets.NewClient(gcpHTTPClient(cfg.GCP.AccessToken, cfg.Secrets.Timeouts), cfg.Secrets.BaseURL)
	default:
		logging.Fatal().Str("driver", cfg.Secrets.Driver).Msg("unknown secret store driver")
	}

	// 3. Driven adapters
	tokens := credentials.NewCache(
		store,
		ports.SecretVersionName{
			Project: cfg.GCP.ProjectID,
			Secret:  cfg.Secrets.SecretID,
			Version: cfg.Secrets.VersionID,
		},
		cfg.SpotifyAuth.ClientID,
		cfg.SpotifyAuth.TokenURL,
		credentials.WithTTL(cfg.SpotifyAuth.TokenTTL),
		credentials.WithHTTPClient(cfg.SpotifyAuth.Timeouts.HTTPClient()),
	)

	spotifyClient := spotify.NewClient(
		cfg.Spotify.Timeouts.HTTPClient(),
		cfg.Spotify.BaseURL,
		tokens,
		spotify.WithRetry(cfg.Spotify.MaxRetries, cfg.Spotify.RetryBackoff),
	)

	matcher := matching.NewAggregator(cfg.Match.Enabled, matching.NewMockClient, func(ctx context.Context) (ports.MatchClient, error) {
		client, err := matching.NewIndexEndpointClient(ctx, matching.IndexEndpointConfig{
			APIBaseURL:       cfg.AIPlatformBaseURL(),
			ProjectID:        cfg.GCP.ProjectID,
			Region:           cfg.GCP.Region,
			Environment:      cfg.Environment,
			HTTPClient:       gcpHTTPClient(cfg.GCP.AccessToken, cfg.Match.Timeouts),
			BreakerTimeout:   cfg.Match.BreakerTimeout,
			BreakerThreshold: cfg.Match.BreakerThreshold,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	})

	// 4. Core logic
	factory := response.NewFactory()
	recommender := services.NewRecommender(spotifyClient, spotifyClient, matcher, factory)
	playlists := services.NewPlaylistOrchestrator(recommender, spotifyClient, factory)

	// 5. Driving adapter
	handler := rest.NewHandler(recommender, playlists, factory, rest.Options{
		RateLimitRequests: cfg.Server.RateLimitReqs,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("environment", cfg.Environment).
		Bool("match_service_enabled", cfg.Match.Enabled).
		Str("secret_store", cfg.Secrets.Driver).
		Msg("spotifind API is running")

	select {
	case err := <-serverErr:
		if err != nil {
			logging.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("shutdown error")
		}
	}
}

// gcpHTTPClient authenticates Google API calls with a static access token.
// Without a token the bare client is returned, which is what local emulators expect.
func gcpHTTPClient(accessToken string, timeouts config.TimeoutConfig) *http.Client {
	base := timeouts.HTTPClient()
	if accessToken == "" {
		return base
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))
	client.Timeout = base.Timeout
	return client
}
