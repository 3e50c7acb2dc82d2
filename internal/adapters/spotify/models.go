package spotify

// spotifyTrack represents the Spotify API response for a track.
type spotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	URI         string          `json:"uri"`
	DurationMs  int             `json:"duration_ms"`
	Popularity  int             `json:"popularity"`
	PreviewURL  string          `json:"preview_url"`
	Artists     []spotifyArtist `json:"artists"`
	Album       spotifyAlbum    `json:"album"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name   string `json:"name"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// tracksResponse wraps GET /v1/tracks. Unknown ids come back as null.
type tracksResponse struct {
	Tracks []*spotifyTrack `json:"tracks"`
}

// createPlaylistRequest is the body of POST /v1/users/{user_id}/playlists.
type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type createPlaylistResponse struct {
	ID string `json:"id"`
}

// addTracksRequest represents the request body for adding tracks to a playlist.
type addTracksRequest struct {
	URIs []string `json:"uris"`
}
