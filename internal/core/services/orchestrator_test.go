package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/core/response"
)

// TestPlaylistOrchestrator_CreatePlaylist verifies CreatePlaylist behavior.
func TestPlaylistOrchestrator_CreatePlaylist(t *testing.T) {
	type fields struct {
		features  mockFeatures
		matcher   mockMatcher
		playlists mockPlaylists
	}
	tests := []struct {
		name         string
		fields       fields
		size         string
		wantStatus   int
		wantCreated  bool
		wantAddCalls int
		wantLocation string
	}{
		{
			name: "Happy Path",
			fields: fields{
				features:  mockFeatures{record: fullFeatureRecord()},
				matcher:   mockMatcher{neighbors: sixNeighbors()},
				playlists: mockPlaylists{id: "7d2D2S200NyUE5KYs80PwO"},
			},
			size:         "3",
			wantStatus:   http.StatusCreated,
			wantCreated:  true,
			wantAddCalls: 1,
			wantLocation: "https://api.spotify.com/v1/playlists/7d2D2S200NyUE5KYs80PwO",
		},
		{
			name: "Invalid size short-circuits",
			fields: fields{
				features:  mockFeatures{record: fullFeatureRecord()},
				matcher:   mockMatcher{neighbors: sixNeighbors()},
				playlists: mockPlaylists{id: "pl"},
			},
			size:       "-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown track short-circuits",
			fields: fields{
				features:  mockFeatures{err: &domain.UpstreamError{Source: domain.SourceFeatures, StatusCode: 404}},
				playlists: mockPlaylists{id: "pl"},
			},
			size:       "5",
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Create rejected by user token",
			fields: fields{
				features:  mockFeatures{record: fullFeatureRecord()},
				matcher:   mockMatcher{neighbors: sixNeighbors()},
				playlists: mockPlaylists{createErr: &domain.UpstreamError{Source: domain.SourcePlaylist, StatusCode: 401}},
			},
			size:        "5",
			wantStatus:  http.StatusUnauthorized,
			wantCreated: true,
		},
		{
			name: "Add tracks forbidden",
			fields: fields{
				features:  mockFeatures{record: fullFeatureRecord()},
				matcher:   mockMatcher{neighbors: sixNeighbors()},
				playlists: mockPlaylists{id: "pl", addErr: &domain.UpstreamError{Source: domain.SourcePlaylist, StatusCode: 403}},
			},
			size:         "5",
			wantStatus:   http.StatusForbidden,
			wantCreated:  true,
			wantAddCalls: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			factory := response.NewFactory()
			recos := NewRecommender(&tc.fields.features, &mockMetadata{}, &tc.fields.matcher, factory)
			o := NewPlaylistOrchestrator(recos, &tc.fields.playlists, factory)

			env := o.CreatePlaylist(context.Background(), "wizzler", queryTrackID, "Bearer user-token", tc.size)

			if env.StatusCode != tc.wantStatus {
				t.Fatalf("status: got %d, want %d (body %+v)", env.StatusCode, tc.wantStatus, env.Body)
			}
			if got := env.Header("Location"); got != tc.wantLocation {
				t.Errorf("Location: got %q, want %q", got, tc.wantLocation)
			}
			if (tc.fields.playlists.created != nil) != tc.wantCreated {
				t.Errorf("create called: got %v, want %v", tc.fields.playlists.created != nil, tc.wantCreated)
			}
			if tc.fields.playlists.addCalls != tc.wantAddCalls {
				t.Errorf("add calls: got %d, want %d", tc.fields.playlists.addCalls, tc.wantAddCalls)
			}
		})
	}
}

func TestPlaylistOrchestrator_CreatePlaylist_Payload(t *testing.T) {
	factory := response.NewFactory()
	playlists := &mockPlaylists{id: "pl-1"}
	recos := NewRecommender(&mockFeatures{record: fullFeatureRecord()}, &mockMetadata{}, &mockMatcher{neighbors: sixNeighbors()}, factory)
	o := NewPlaylistOrchestrator(recos, playlists, factory)

	env := o.CreatePlaylist(context.Background(), "wizzler", queryTrackID, "Bearer user-token", "2")

	if env.StatusCode != http.StatusCreated {
		t.Fatalf("status: got %d", env.StatusCode)
	}
	if env.Body != (response.CreatedBody{}) {
		t.Errorf("body: got %+v", env.Body)
	}

	p := playlists.created
	if p.OwnerID != "wizzler" || p.Name != domain.DefaultPlaylistName || !p.Public {
		t.Errorf("playlist: got %+v", p)
	}
	if playlists.createToken != "Bearer user-token" {
		t.Errorf("token: got %q", playlists.createToken)
	}
	if playlists.addedTo != "pl-1" {
		t.Errorf("added to: got %q", playlists.addedTo)
	}
	if got := strings.Join(playlists.addedURIs, ","); got != "spotify:track:n1,spotify:track:n2" {
		t.Errorf("uris: got %s", got)
	}
}
