package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
)

// maxURIsPerRequest is the Web API limit for adding items to a playlist.
const maxURIsPerRequest = 100

// CreatePlaylist creates p in its owner's library and returns the new playlist id.
func (c *Client) CreatePlaylist(ctx context.Context, p domain.Playlist, userToken string) (string, error) {
	createURL := fmt.Sprintf("%s/v1/users/%s/playlists", c.baseURL, url.PathEscape(p.OwnerID))
	req, err := c.userRequest(ctx, createURL, userToken, createPlaylistRequest{
		Name:        p.Name,
		Description: p.Description,
		Public:      p.Public,
	})
	if err != nil {
		return "", err
	}

	resp, err := c.do(req, domain.SourcePlaylist, http.StatusOK, http.StatusCreated)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var created createPlaylistResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("spotify adapter: failed to decode playlist: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("spotify adapter: playlist response has no id")
	}

	return created.ID, nil
}

// AddTracks appends uris to the playlist in order.
func (c *Client) AddTracks(ctx context.Context, playlistID string, uris []string, userToken string) error {
	addURL := fmt.Sprintf("%s/v1/playlists/%s/tracks", c.baseURL, url.PathEscape(playlistID))

	for start := 0; start < len(uris); start += maxURIsPerRequest {
		end := min(start+maxURIsPerRequest, len(uris))
		req, err := c.userRequest(ctx, addURL, userToken, addTracksRequest{URIs: uris[start:end]})
		if err != nil {
			return err
		}

		resp, err := c.do(req, domain.SourcePlaylist, http.StatusOK, http.StatusCreated)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
	}
	return nil
}
