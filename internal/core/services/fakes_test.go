package services

import (
	"context"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/core/ports"
	"github.com/ewilliams-labs/spotifind/internal/core/response"
)

// --- Mocks ---

// mockFeatures is a lightweight mock of the feature provider.
type mockFeatures struct {
	record domain.FeatureRecord
	err    error

	calls     int
	calledFor string
}

func (m *mockFeatures) GetAudioFeatures(ctx context.Context, trackID string) (domain.FeatureRecord, error) {
	m.calls++
	m.calledFor = trackID
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

type mockMetadata struct {
	tracks []domain.Track
	err    error

	calls     int
	calledIDs []string
}

func (m *mockMetadata) GetTracks(ctx context.Context, ids []string) ([]domain.Track, error) {
	m.calls++
	m.calledIDs = ids
	if m.err != nil {
		return nil, m.err
	}
	return m.tracks, nil
}

// mockMatcher is both the provider and the client it hands out.
type mockMatcher struct {
	neighbors   []domain.MatchNeighbor
	err         error
	providerErr error

	calls   int
	lastReq ports.MatchRequest
}

func (m *mockMatcher) GetClient(ctx context.Context) (ports.MatchClient, error) {
	if m.providerErr != nil {
		return nil, m.providerErr
	}
	return m, nil
}

func (m *mockMatcher) GetMatch(ctx context.Context, req ports.MatchRequest) ([]domain.MatchNeighbor, error) {
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.neighbors, nil
}

type mockPlaylists struct {
	id        string
	createErr error
	addErr    error

	created     *domain.Playlist
	createToken string
	addedTo     string
	addedURIs   []string
	addCalls    int
}

func (m *mockPlaylists) CreatePlaylist(ctx context.Context, p domain.Playlist, userToken string) (string, error) {
	m.created = &p
	m.createToken = userToken
	if m.createErr != nil {
		return "", m.createErr
	}
	return m.id, nil
}

func (m *mockPlaylists) AddTracks(ctx context.Context, playlistID string, uris []string, userToken string) error {
	m.addCalls++
	m.addedTo = playlistID
	m.addedURIs = uris
	return m.addErr
}

// --- Fixtures ---

const queryTrackID = "3L4KmBO4Jb5w3aTAnxEYbk"

func fullFeatureRecord() domain.FeatureRecord {
	return domain.FeatureRecord{
		"danceability": 0.735, "energy": 0.578, "key": 5, "loudness": -11.84,
		"mode": 0, "speechiness": 0.0461, "acousticness": 0.514,
		"instrumentalness": 0.0902, "liveness": 0.159, "valence": 0.636,
		"tempo": 98.002,
	}
}

// sixNeighbors includes the query track itself, as a real index would.
func sixNeighbors() []domain.MatchNeighbor {
	return []domain.MatchNeighbor{
		{ID: queryTrackID, Distance: 0},
		{ID: "n1", Distance: 0.1},
		{ID: "n2", Distance: 0.2},
		{ID: "n3", Distance: 0.3},
		{ID: "n4", Distance: 0.4},
		{ID: "n5", Distance: 0.5},
	}
}

func newTestRecommender(f *mockFeatures, md *mockMetadata, mm *mockMatcher) *Recommender {
	return NewRecommender(f, md, mm, response.NewFactory())
}
