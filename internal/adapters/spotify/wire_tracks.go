package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
)

// maxTracksPerRequest is the Web API limit for GET /v1/tracks.
const maxTracksPerRequest = 50

// GetAudioFeatures fetches the audio features of a single track.
func (c *Client) GetAudioFeatures(ctx context.Context, trackID string) (domain.FeatureRecord, error) {
	featuresURL := fmt.Sprintf("%s/v1/audio-features/%s", c.baseURL, url.PathEscape(trackID))
	req, err := c.appRequest(ctx, http.MethodGet, featuresURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, domain.SourceFeatures, http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("spotify adapter: features decode error: %w", err)
	}

	return mapFeaturesToDomain(raw), nil
}

// GetTracks hydrates track ids into metadata records, preserving order.
// Batches are fetched concurrently; ids Spotify does not know are skipped.
func (c *Client) GetTracks(ctx context.Context, trackIDs []string) ([]domain.Track, error) {
	var batches [][]string
	for start := 0; start < len(trackIDs); start += maxTracksPerRequest {
		end := min(start+maxTracksPerRequest, len(trackIDs))
		batches = append(batches, trackIDs[start:end])
	}

	results := make([][]domain.Track, len(batches))
	err := c.batches.Run(ctx, len(batches), func(ctx context.Context, i int) error {
		batch, err := c.getTrackBatch(ctx, batches[i])
		if err != nil {
			return err
		}
		results[i] = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	tracks := make([]domain.Track, 0, len(trackIDs))
	for _, batch := range results {
		tracks = append(tracks, batch...)
	}
	return tracks, nil
}

func (c *Client) getTrackBatch(ctx context.Context, ids []string) ([]domain.Track, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	tracksURL := fmt.Sprintf("%s/v1/tracks?%s", c.baseURL, query.Encode())

	req, err := c.appRequest(ctx, http.MethodGet, tracksURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, domain.SourceMetadata, http.StatusOK)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body tracksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("spotify adapter: tracks decode error: %w", err)
	}

	tracks := make([]domain.Track, 0, len(body.Tracks))
	for _, st := range body.Tracks {
		if st == nil {
			continue
		}
		tracks = append(tracks, mapTrackToDomain(*st))
	}
	return tracks, nil
}
