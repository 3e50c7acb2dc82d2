// Package secrets reads secret versions from the Secret Manager REST API.
package secrets

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
)

var _ ports.SecretStore = (*Client)(nil)

// Client calls versions:access. The HTTP client is expected to carry the
// caller's OAuth2 credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type accessResponse struct {
	Name    string `json:"name"`
	Payload struct {
		Data string `json:"data"`
		// int64 encoded as a JSON string
		DataCrc32c string `json:"dataCrc32c"`
	} `json:"payload"`
}

// AccessSecretVersion fetches the payload and the checksum reported with it.
// The checksum is not verified here.
func (c *Client) AccessSecretVersion(ctx context.Context, name ports.SecretVersionName) (ports.SecretPayload, error) {
	url := fmt.Sprintf("%s/v1/%s:access", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.SecretPayload{}, fmt.Errorf("secrets adapter: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream("secretmanager", 0, time.Since(start))
		return ports.SecretPayload{}, fmt.Errorf("secrets adapter: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream("secretmanager", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ports.SecretPayload{}, fmt.Errorf("secrets adapter: status %d", resp.StatusCode)
	}

	var ar accessResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return ports.SecretPayload{}, fmt.Errorf("secrets adapter: decode: %w", err)
	}

	data, err := base64.StdEncoding.DecodeString(ar.Payload.Data)
	if err != nil {
		return ports.SecretPayload{}, fmt.Errorf("secrets adapter: decode payload: %w", err)
	}

	var checksum uint64
	if ar.Payload.DataCrc32c != "" {
		checksum, err = strconv.ParseUint(ar.Payload.DataCrc32c, 10, 32)
		if err != nil {
			return ports.SecretPayload{}, fmt.Errorf("secrets adapter: parse dataCrc32c: %w", err)
		}
	}

	return ports.SecretPayload{Data: data, DataCRC32C: uint32(checksum)}, nil
}
