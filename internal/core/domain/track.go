package domain

// Track represents a musical track in the domain layer.
// It is the hydrated metadata record returned by the bulk track lookup.
type Track struct {
	ID         string   `json:"id"`
	Title      string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	CoverURL   string   `json:"cover_url,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
	DurationMs int      `json:"duration_ms,omitempty"`
	ISRC       string   `json:"isrc,omitempty"` // International Standard Recording Code
	Popularity int      `json:"popularity,omitempty"`
	URI        string   `json:"uri,omitempty"`
}

// MatchNeighbor is a single result from the vector search backend.
// Ordering of a neighbor list is defined by the backend.
type MatchNeighbor struct {
	ID       string
	Distance float64
}

// Reco is one shaped recommendation entry. Track is only set when verbose
// output was requested and the metadata lookup succeeded.
type Reco struct {
	ID    string `json:"id"`
	Track *Track `json:"track,omitempty"`
}

// RecosFromNeighbors keeps only the neighbor ids, preserving order.
func RecosFromNeighbors(neighbors []MatchNeighbor) []Reco {
	recos := make([]Reco, 0, len(neighbors))
	for _, n := range neighbors {
		recos = append(recos, Reco{ID: n.ID})
	}
	return recos
}

// RecosFromTracks wraps hydrated tracks, preserving order.
func RecosFromTracks(tracks []Track) []Reco {
	recos := make([]Reco, 0, len(tracks))
	for i := range tracks {
		t := tracks[i]
		recos = append(recos, Reco{ID: t.ID, Track: &t})
	}
	return recos
}

// BearerToken is the service-level credential used for app-scoped calls.
type BearerToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Header renders the token as an Authorization header value.
func (t BearerToken) Header() string {
	return "Bearer " + t.AccessToken
}
