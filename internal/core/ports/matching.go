package ports

import (
	"context"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
)

// MatchRequest asks the vector search backend for the nearest neighbors of Query.
type MatchRequest struct {
	Query        domain.Embedding
	NumNeighbors int
}

// MatchClient is a handle to a vector search backend.
type MatchClient interface {
	GetMatch(ctx context.Context, req MatchRequest) ([]domain.MatchNeighbor, error)
}

// MatchClientProvider hands out the process-wide MatchClient.
type MatchClientProvider interface {
	GetClient(ctx context.Context) (MatchClient, error)
}
