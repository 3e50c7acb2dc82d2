package matching

import (
	"context"
	"sync"

	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/logging"
	"github.com/ewilliams-labs/spotifind/internal/metrics"
)

// Constructor builds a concrete backend.
type Constructor func(ctx context.Context) (ports.MatchClient, error)

var _ ports.MatchClientProvider = (*Aggregator)(nil)

// Aggregator lazily constructs one backend and hands the same instance to
// every caller. Construction happens under the mutex, so concurrent first
// calls build it once. A failed construction is not remembered.
type Aggregator struct {
	enabled bool
	newMock Constructor
	newReal Constructor

	mu     sync.Mutex
	client ports.MatchClient
}

// NewAggregator selects the real backend when enabled is true, the mock otherwise.
func NewAggregator(enabled bool, newMock, newReal Constructor) *Aggregator {
	return &Aggregator{
		enabled: enabled,
		newMock: newMock,
		newReal: newReal,
	}
}

// GetClient returns the memoized backend, constructing it on first use.
func (a *Aggregator) GetClient(ctx context.Context) (ports.MatchClient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	backend, construct := "mock", a.newMock
	if a.enabled {
		backend, construct = "index_endpoint", a.newReal
	}

	client, err := construct(ctx)
	metrics.RecordMatchClientConstruction(backend, err)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("backend", backend).Msg("failed to construct match client")
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("backend", backend).Msg("match client ready")
	a.client = client
	return client, nil
}
