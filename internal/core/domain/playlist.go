package domain

import (
	"errors"
	"fmt"
)

const (
	DefaultPlaylistName        = "Spotifind playlist"
	DefaultPlaylistDescription = "Recommendations generated by spotifind"
)

// Playlist is a user playlist about to be created from a recommendation.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Public      bool
	TrackURIs   []string
}

// NewPlaylist prepares a public playlist owned by userID with the default name.
func NewPlaylist(userID string) (*Playlist, error) {
	if userID == "" {
		return nil, errors.New("domain: invalid argument")
	}
	return &Playlist{
		OwnerID:     userID,
		Name:        DefaultPlaylistName,
		Description: DefaultPlaylistDescription,
		Public:      true,
		TrackURIs:   []string{},
	}, nil
}

// AddRecos appends the track URI of every reco, skipping ids already present.
func (p *Playlist) AddRecos(recos []Reco) {
	seen := make(map[string]struct{}, len(p.TrackURIs)+len(recos))
	for _, uri := range p.TrackURIs {
		seen[uri] = struct{}{}
	}
	for _, r := range recos {
		uri := TrackURI(r.ID)
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}
		p.TrackURIs = append(p.TrackURIs, uri)
	}
}

// TrackURI formats a track id as a Spotify track URI.
func TrackURI(trackID string) string {
	return fmt.Sprintf("spotify:track:%s", trackID)
}
