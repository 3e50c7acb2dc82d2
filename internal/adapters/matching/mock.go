// Package matching provides the vector search backends and the aggregator
// that picks and memoizes one of them.
package matching

import (
	"context"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/core/ports"
)

var _ ports.MatchClient = (*MockClient)(nil)

var mockNeighbors = []domain.MatchNeighbor{
	{ID: "7C48cUjCGx14K5b41e9vTD", Distance: 1},
	{ID: "3x7gMvCsL1SS6THGwB55Pm", Distance: 2},
	{ID: "7sLQGgXFs4LaGAaDErPwOl", Distance: 5},
}

// MockClient answers every query with the same three neighbors. It is used
// for local development when no index is deployed.
type MockClient struct{}

func NewMockClient(context.Context) (ports.MatchClient, error) {
	return &MockClient{}, nil
}

func (m *MockClient) GetMatch(_ context.Context, _ ports.MatchRequest) ([]domain.MatchNeighbor, error) {
	out := make([]domain.MatchNeighbor, len(mockNeighbors))
	copy(out, mockNeighbors)
	return out, nil
}
