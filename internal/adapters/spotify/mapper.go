package spotify

import (
	"github.com/ewilliams-labs/spotifind/internal/core/domain"
)

// mapTrackToDomain converts a raw Spotify track to a clean Domain track.
func mapTrackToDomain(st spotifyTrack) domain.Track {
	artistNames := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artistNames = append(artistNames, a.Name)
	}

	coverURL := ""
	if len(st.Album.Images) > 0 {
		coverURL = st.Album.Images[0].URL
	}

	uri := st.URI
	if uri == "" {
		uri = domain.TrackURI(st.ID)
	}

	return domain.Track{
		ID:         st.ID,
		Title:      st.Name,
		Artists:    artistNames,
		Album:      st.Album.Name,
		CoverURL:   coverURL,
		PreviewURL: st.PreviewURL,
		DurationMs: st.DurationMs,
		ISRC:       st.ExternalIDs.ISRC,
		Popularity: st.Popularity,
		URI:        uri,
	}
}

// mapFeaturesToDomain keeps the numeric fields of an audio-features payload.
// Identifiers and links (id, uri, type, track_href, analysis_url) are dropped.
func mapFeaturesToDomain(raw map[string]any) domain.FeatureRecord {
	record := make(domain.FeatureRecord, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case float64:
			record[k] = n
		case int64:
			record[k] = float64(n)
		case uint64:
			record[k] = float64(n)
		}
	}
	return record
}
