package spotify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
	"github.com/ewilliams-labs/spotifind/internal/worker"
)

// defaultBatchWorkers bounds concurrent /v1/tracks batch requests.
const defaultBatchWorkers = 4

// Client is an HTTP client for the Spotify Web API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	tokens      ports.TokenProvider
	maxRetries  int
	baseBackoff time.Duration
	batches     *worker.Pool
}

// compile-time interface assertions
var (
	_ ports.FeatureProvider       = (*Client)(nil)
	_ ports.TrackMetadataProvider = (*Client)(nil)
	_ ports.PlaylistService       = (*Client)(nil)
)

type Option func(*Client)

// WithRetry configures GET retries on 429 and 5xx responses.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseBackoff = baseBackoff
	}
}

// WithBatchWorkers sets how many metadata batches are fetched at once.
func WithBatchWorkers(n int) Option {
	return func(c *Client) {
		c.batches = worker.NewPool(n)
	}
}

// NewClient constructs a new Spotify client. tokens supplies the app
// credential for catalog lookups; playlist calls use the caller's token.
func NewClient(httpClient *http.Client, baseURL string, tokens ports.TokenProvider, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokens:      tokens,
		maxRetries:  defaultMaxRetries,
		baseBackoff: time.Duration(defaultBackoffMs) * time.Millisecond,
		batches:     worker.NewPool(defaultBatchWorkers),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// appRequest builds a request authorized with the service token.
func (c *Client) appRequest(ctx context.Context, method, url string) (*http.Request, error) {
	token, err := c.tokens.GetBearerToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: %w", err)
	}
	req.Header.Set("Authorization", token.Header())
	return req, nil
}

// userRequest builds a JSON request carrying the caller's Authorization value.
func (c *Client) userRequest(ctx context.Context, url, userToken string, body any) (*http.Request, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", userToken)
	return req, nil
}

// do sends req and turns anything other than an accepted status into an
// UpstreamError attributed to source. On success the caller owns resp.Body.
func (c *Client) do(req *http.Request, source domain.UpstreamSource, accepted ...int) (*http.Response, error) {
	start := time.Now()
	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		metrics.RecordUpstream("spotify", 0, time.Since(start))
		return nil, &domain.UpstreamError{Source: source, Err: err}
	}
	metrics.RecordUpstream("spotify", resp.StatusCode, time.Since(start))

	for _, code := range accepted {
		if resp.StatusCode == code {
			return resp, nil
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil, &domain.UpstreamError{
		Source:     source,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("spotify adapter: %s %s", req.Method, req.URL.Path),
	}
}
