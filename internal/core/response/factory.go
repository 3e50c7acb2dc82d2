package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ewilliams-labs/spotifind/internal/core/domain"
	"github.com/ewilliams-labs/spotifind/internal/logging"
)

// UnsupportedStatusError is returned for a status code with no builder.
type UnsupportedStatusError struct {
	StatusCode int
}

func (e *UnsupportedStatusError) Error() string {
	return fmt.Sprintf("invalid or unsupported status code: %d", e.StatusCode)
}

// Factory selects a builder by status code.
type Factory struct {
	builders map[int]Builder
}

// NewFactory registers the seven supported builders.
func NewFactory() *Factory {
	return &Factory{
		builders: map[int]Builder{
			http.StatusOK:                  OKBuilder{},
			http.StatusCreated:             CreatedBuilder{},
			http.StatusBadRequest:          BadRequestBuilder{},
			http.StatusUnauthorized:        UnauthorizedBuilder{},
			http.StatusForbidden:           ForbiddenBuilder{},
			http.StatusNotFound:            NotFoundBuilder{},
			http.StatusInternalServerError: InternalServerErrorBuilder{},
		},
	}
}

// Builder returns the builder for status or an *UnsupportedStatusError.
func (f *Factory) Builder(status int) (Builder, error) {
	b, ok := f.builders[status]
	if !ok {
		return nil, &UnsupportedStatusError{StatusCode: status}
	}
	return b, nil
}

// Build is Builder(status).Build(req).
func (f *Factory) Build(status int, req Request) (Envelope, error) {
	b, err := f.Builder(status)
	if err != nil {
		return Envelope{}, err
	}
	return b.Build(req), nil
}

// FromError converts a failed operation into its envelope. The status comes
// from domain.StatusCode; an upstream status with no builder (429, 502, ...)
// is reported as a 500.
func (f *Factory) FromError(ctx context.Context, err error, req Request) Envelope {
	status := domain.StatusCode(err)
	log := logging.Ctx(ctx)

	b, buildErr := f.Builder(status)
	if buildErr != nil {
		var unsupported *UnsupportedStatusError
		if errors.As(buildErr, &unsupported) {
			log.Warn().Err(err).Int("upstream_status", unsupported.StatusCode).
				Msg("no builder for upstream status, responding 500")
		}
		b = InternalServerErrorBuilder{}
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("track_id", req.TrackID).Int("status", status).Msg("request failed")
	} else {
		log.Info().Err(err).Str("track_id", req.TrackID).Int("status", status).Msg("request rejected")
	}
	return b.Build(req)
}
