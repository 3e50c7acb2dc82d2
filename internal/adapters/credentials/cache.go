// Package credentials obtains and caches the service-level Spotify bearer
// token used for app-scoped API calls.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/logging"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
)

// DefaultTTL is how long a fetched token is served from the cache. It does
// not follow the token's own expires_in.
const DefaultTTL = 3600 * time.Second

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var _ ports.TokenProvider = (*Cache)(nil)

// Cache is a single-slot token cache. The mutex is held across the secret
// read and the token request, so at most one fetch is in flight.
type Cache struct {
	store      ports.SecretStore
	secret     ports.SecretVersionName
	clientID   string
	tokenURL   string
	httpClient *http.Client
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	token     domain.BearerToken
	expiresAt time.Time
	valid     bool
}

type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithHTTPClient sets the client used for the token request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Cache) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewCache returns an empty cache; nothing is fetched until the first call.
func NewCache(store ports.SecretStore, secret ports.SecretVersionName, clientID, tokenURL string, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		secret:     secret,
		clientID:   clientID,
		tokenURL:   tokenURL,
		httpClient: http.DefaultClient,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBearerToken returns the cached token, fetching a new one when the slot
// is empty or expired. Failures leave the slot untouched.
func (c *Cache) GetBearerToken(ctx context.Context) (domain.BearerToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Before(c.expiresAt) {
		metrics.TokenCacheHits.Inc()
		return c.token, nil
	}

	secret, err := c.clientSecret(ctx)
	if err != nil {
		return domain.BearerToken{}, err
	}

	token, err := c.fetch(ctx, secret)
	if err != nil {
		metrics.TokenFetches.WithLabelValues("error").Inc()
		return domain.BearerToken{}, err
	}
	metrics.TokenFetches.WithLabelValues("success").Inc()

	c.token = token
	c.expiresAt = c.now().Add(c.ttl)
	c.valid = true
	return token, nil
}

// clientSecret reads the secret and verifies its CRC32C checksum.
func (c *Cache) clientSecret(ctx context.Context) (string, error) {
	payload, err := c.store.AccessSecretVersion(ctx, c.secret)
	if err != nil {
		metrics.TokenFetches.WithLabelValues("error").Inc()
		return "", fmt.Errorf("credentials: access secret %s: %w", c.secret, err)
	}

	if sum := crc32.Checksum(payload.Data, castagnoli); sum != payload.DataCRC32C {
		logging.Ctx(ctx).Warn().
			Str("secret", c.secret.String()).
			Uint32("expected_crc32c", payload.DataCRC32C).
			Uint32("computed_crc32c", sum).
			Msg("secret payload failed checksum verification")
		metrics.TokenFetches.WithLabelValues("integrity").Inc()
		return "", &domain.SecretIntegrityError{Name: c.secret.String(), Expected: payload.DataCRC32C, Actual: sum}
	}
	return string(payload.Data), nil
}

func (c *Cache) fetch(ctx context.Context, secret string) (domain.BearerToken, error) {
	cfg := clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: secret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	start := time.Now()
	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			metrics.RecordUpstream("spotify_auth", rerr.Response.StatusCode, time.Since(start))
			logging.Ctx(ctx).Warn().Int("status", rerr.Response.StatusCode).Msg("token request rejected")
			return domain.BearerToken{}, &domain.UpstreamError{Source: domain.SourceAuth, StatusCode: rerr.Response.StatusCode, Err: err}
		}
		metrics.RecordUpstream("spotify_auth", 0, time.Since(start))
		return domain.BearerToken{}, &domain.UpstreamError{Source: domain.SourceAuth, Err: err}
	}
	metrics.RecordUpstream("spotify_auth", http.StatusOK, time.Since(start))

	return domain.BearerToken{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   expiresIn(tok, start),
	}, nil
}

// expiresIn reports the token lifetime in seconds as sent by the server.
func expiresIn(tok *oauth2.Token, fetchedAt time.Time) int {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	case int:
		return v
	}
	if !tok.Expiry.IsZero() {
		return int(tok.Expiry.Sub(fetchedAt).Round(time.Second).Seconds())
	}
	return 0
}
