package ports

import (
	"context"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
)

// FeatureProvider looks up the audio features of a track.
type FeatureProvider interface {
	GetAudioFeatures(ctx context.Context, trackID string) (domain.FeatureRecord, error)
}

// TrackMetadataProvider hydrates track ids into full metadata records.
type TrackMetadataProvider interface {
	GetTracks(ctx context.Context, trackIDs []string) ([]domain.Track, error)
}

// PlaylistService creates playlists on behalf of an end user. userToken is
// the caller's Authorization header value and is forwarded unchanged.
type PlaylistService interface {
	CreatePlaylist(ctx context.Context, p domain.Playlist, userToken string) (string, error)
	AddTracks(ctx context.Context, playlistID string, uris []string, userToken string) error
}

// TokenProvider supplies the service-level bearer credential.
type TokenProvider interface {
	GetBearerToken(ctx context.Context) (domain.BearerToken, error)
}
