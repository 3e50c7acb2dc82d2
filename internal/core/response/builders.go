package response

import (
	"fmt"
	"net/http"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
)

const (
	msgBadRequest   = "Bad request."
	msgUnauthorized = "Valid authentication credentials not provided."
	msgForbidden    = "Insufficient authentication credentials."
	msgNotFound     = "Invalid track id: %s"
	msgInternal     = "An unexpected error occurred. Please contact a contributor for assistance."

	playlistLocationFmt = "https://api.spotify.com/v1/playlists/%s"
)

// Builder turns a Request into an Envelope for one fixed status code.
type Builder interface {
	Build(req Request) Envelope
}

func errorEnvelope(status int, msg string) Envelope {
	return Envelope{
		StatusCode: status,
		Body:       ErrorBody{Message: msg, Status: status},
	}
}

// BadRequestBuilder reports a rejected size.
type BadRequestBuilder struct{}

func (BadRequestBuilder) Build(Request) Envelope {
	return errorEnvelope(http.StatusBadRequest, msgBadRequest)
}

// UnauthorizedBuilder reports missing or rejected credentials.
type UnauthorizedBuilder struct{}

func (UnauthorizedBuilder) Build(Request) Envelope {
	return errorEnvelope(http.StatusUnauthorized, msgUnauthorized)
}

// ForbiddenBuilder reports credentials without the required scope.
type ForbiddenBuilder struct{}

func (ForbiddenBuilder) Build(Request) Envelope {
	return errorEnvelope(http.StatusForbidden, msgForbidden)
}

// NotFoundBuilder names the track id that could not be resolved.
type NotFoundBuilder struct{}

func (NotFoundBuilder) Build(req Request) Envelope {
	return errorEnvelope(http.StatusNotFound, fmt.Sprintf(msgNotFound, req.TrackID))
}

// InternalServerErrorBuilder never leaks error detail into the body.
type InternalServerErrorBuilder struct{}

func (InternalServerErrorBuilder) Build(Request) Envelope {
	return errorEnvelope(http.StatusInternalServerError, msgInternal)
}

// CreatedBuilder points Location at the new playlist.
type CreatedBuilder struct{}

func (CreatedBuilder) Build(req Request) Envelope {
	return Envelope{
		StatusCode: http.StatusCreated,
		Body:       CreatedBody{},
		Headers: []Header{
			{Name: "Location", Value: fmt.Sprintf(playlistLocationFmt, req.PlaylistID)},
		},
	}
}

// OKBuilder drops any reco equal to the query track, then keeps the first
// req.Size of what remains.
type OKBuilder struct{}

func (OKBuilder) Build(req Request) Envelope {
	recos := make([]domain.Reco, 0, len(req.Recos))
	for _, r := range req.Recos {
		if r.ID == req.TrackID {
			continue
		}
		recos = append(recos, r)
	}
	if req.Size >= 0 && len(recos) > req.Size {
		recos = recos[:req.Size]
	}

	return Envelope{
		StatusCode: http.StatusOK,
		Body: OKBody{
			Request: RequestEcho{Track: TrackRef{ID: req.TrackID}, Size: req.Size},
			Recos:   recos,
		},
	}
}
