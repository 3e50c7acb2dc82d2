// Package response builds the uniform envelope returned by every
// recommendation and playlist operation. Each envelope is produced by
// exactly one status-specific Builder chosen through a Factory.
package response

import (
	"net/http"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
)

// Header is a single response header.
type Header struct {
	Name  string
	Value string
}

// Envelope is the result of one request: status, JSON body and headers.
type Envelope struct {
	StatusCode int
	Body       any
	Headers    []Header
}

// HeaderMap returns the envelope headers as a fresh http.Header.
func (e Envelope) HeaderMap() http.Header {
	h := make(http.Header, len(e.Headers))
	for _, hdr := range e.Headers {
		h.Add(hdr.Name, hdr.Value)
	}
	return h
}

// Header returns the first value for name, or "".
func (e Envelope) Header(name string) string {
	return e.HeaderMap().Get(name)
}

// Request carries everything a builder may need. Builders ignore the
// fields they do not use.
type Request struct {
	TrackID    string
	Size       int
	Recos      []domain.Reco
	PlaylistID string
}

// ErrorBody is the body of every non-2xx envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// OKBody echoes the request alongside the shaped recommendations.
type OKBody struct {
	Request RequestEcho   `json:"request"`
	Recos   []domain.Reco `json:"recos"`
}

// RequestEcho repeats the track and size a recommendation was made for.
type RequestEcho struct {
	Track TrackRef `json:"track"`
	Size  int      `json:"size"`
}

// TrackRef identifies the query track.
type TrackRef struct {
	ID string `json:"id"`
}

// CreatedBody is intentionally empty; the resource is named by Location.
type CreatedBody struct{}
