package services

import (
	"context"
	"net/http"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/core/response"
	"github.com/ewilliams-labs/spotifind/internal/logging"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
)

// Recommender turns a track id into an envelope of similar tracks.
type Recommender struct {
	features ports.FeatureProvider
	metadata ports.TrackMetadataProvider
	matcher  ports.MatchClientProvider
	factory  *response.Factory
}

// NewRecommender constructs a Recommender.
func NewRecommender(features ports.FeatureProvider, metadata ports.TrackMetadataProvider, matcher ports.MatchClientProvider, factory *response.Factory) *Recommender {
	return &Recommender{
		features: features,
		metadata: metadata,
		matcher:  matcher,
		factory:  factory,
	}
}

// GetRecos validates size, embeds the track's audio features, searches for
// size+1 neighbors and shapes the result. Every failure is converted to an
// envelope here; nothing is retried at this layer.
func (r *Recommender) GetRecos(ctx context.Context, trackID, size string, verbose bool) response.Envelope {
	env := r.getRecos(ctx, trackID, size, verbose)
	metrics.RecordRecommendation(env.StatusCode)
	return env
}

func (r *Recommender) getRecos(ctx context.Context, trackID, rawSize string, verbose bool) response.Envelope {
	req := response.Request{TrackID: trackID}

	// 1. Validate before touching any collaborator
	size, err := domain.ParseSize(rawSize)
	if err != nil {
		return r.factory.FromError(ctx, err, req)
	}
	req.Size = size

	// 2. Fetch features
	record, err := r.features.GetAudioFeatures(ctx, trackID)
	if err != nil {
		return r.factory.FromError(ctx, err, req)
	}

	// 3. Embed
	embedding, err := domain.ExtractEmbedding(record, domain.FeatureNames)
	if err != nil {
		return r.factory.FromError(ctx, err, req)
	}

	// 4. Search, asking for one extra neighbor in case the query track is returned
	client, err := r.matcher.GetClient(ctx)
	if err != nil {
		return r.factory.FromError(ctx, err, req)
	}
	neighbors, err := client.GetMatch(ctx, ports.MatchRequest{Query: embedding, NumNeighbors: size + 1})
	if err != nil {
		return r.factory.FromError(ctx, err, req)
	}
	req.Recos = domain.RecosFromNeighbors(neighbors)

	// 5. Hydrate
	if verbose && len(neighbors) > 0 {
		ids := make([]string, 0, len(neighbors))
		for _, n := range neighbors {
			ids = append(ids, n.ID)
		}
		tracks, err := r.metadata.GetTracks(ctx, ids)
		if err != nil {
			return r.factory.FromError(ctx, err, req)
		}
		req.Recos = domain.RecosFromTracks(tracks)
	}

	// 6. Shape
	env, err := r.factory.Build(http.StatusOK, req)
	if err != nil {
		return r.factory.FromError(ctx, err, req)
	}

	logging.Ctx(ctx).Debug().
		Str("track_id", trackID).
		Int("size", size).
		Int("neighbors", len(neighbors)).
		Bool("verbose", verbose).
		Msg("recommendations served")
	return env
}
