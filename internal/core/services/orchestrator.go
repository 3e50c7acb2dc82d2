package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/core/response"
	"github.com/ewilliams-labs/spotifind/internal/logging"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
)

// PlaylistOrchestrator saves a recommendation as a playlist in the caller's library.
type PlaylistOrchestrator struct {
	recos     *Recommender
	playlists ports.PlaylistService
	factory   *response.Factory
}

// NewPlaylistOrchestrator constructs a PlaylistOrchestrator.
func NewPlaylistOrchestrator(recos *Recommender, playlists ports.PlaylistService, factory *response.Factory) *PlaylistOrchestrator {
	return &PlaylistOrchestrator{
		recos:     recos,
		playlists: playlists,
		factory:   factory,
	}
}

// CreatePlaylist runs the recommendation, creates a playlist owned by userID
// and fills it with the recommended tracks. userToken is the caller's
// Authorization value. The first failing step decides the envelope.
func (o *PlaylistOrchestrator) CreatePlaylist(ctx context.Context, userID, trackID, userToken, size string) response.Envelope {
	// 1. Recommend
	env := o.recos.GetRecos(ctx, trackID, size, false)
	if env.StatusCode != http.StatusOK {
		return env
	}
	body, ok := env.Body.(response.OKBody)
	if !ok {
		return o.factory.FromError(ctx, fmt.Errorf("service: unexpected body %T", env.Body), response.Request{TrackID: trackID})
	}
	req := response.Request{TrackID: trackID, Size: body.Request.Size, Recos: body.Recos}

	// 2. Build the playlist (pure domain logic)
	pl, err := domain.NewPlaylist(userID)
	if err != nil {
		return o.factory.FromError(ctx, err, req)
	}
	pl.AddRecos(body.Recos)

	// 3. Create it upstream
	playlistID, err := o.playlists.CreatePlaylist(ctx, *pl, userToken)
	if err != nil {
		return o.factory.FromError(ctx, err, req)
	}
	pl.ID = playlistID
	req.PlaylistID = playlistID

	// 4. Add the tracks
	if err := o.playlists.AddTracks(ctx, playlistID, pl.TrackURIs, userToken); err != nil {
		return o.factory.FromError(ctx, err, req)
	}

	created, err := o.factory.Build(http.StatusCreated, req)
	if err != nil {
		return o.factory.FromError(ctx, err, req)
	}

	metrics.PlaylistsCreated.Inc()
	logging.Ctx(ctx).Info().
		Str("user_id", userID).
		Str("track_id", trackID).
		Str("playlist_id", playlistID).
		Int("tracks", len(pl.TrackURIs)).
		Msg("playlist created")
	return created
}
