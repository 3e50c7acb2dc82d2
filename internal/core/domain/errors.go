package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidSize indicates a requested recommendation count was rejected.
	ErrInvalidSize = errors.New("domain: invalid size")
	// ErrMissingFeature indicates a feature record lacked a required key.
	ErrMissingFeature = errors.New("domain: missing feature")
	// ErrSecretIntegrity indicates a secret payload failed its checksum.
	ErrSecretIntegrity = errors.New("domain: secret integrity check failed")
	// ErrInvalidQuery indicates a vector query was rejected before the call.
	ErrInvalidQuery = errors.New("domain: invalid query")

	ErrUpstreamAuth     = errors.New("upstream auth error")
	ErrUpstreamSearch   = errors.New("upstream search error")
	ErrUpstreamMetadata = errors.New("upstream metadata error")
	ErrUpstreamFeatures = errors.New("upstream features error")
	ErrUpstreamPlaylist = errors.New("upstream playlist error")
)

// InvalidSizeError reports why a size string was rejected.
type InvalidSizeError struct {
	Raw    string
	Reason string
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid size %q: %s", e.Raw, e.Reason)
}

func (e *InvalidSizeError) Is(target error) bool {
	return target == ErrInvalidSize
}

// MissingFeatureError names the feature absent from a FeatureRecord.
type MissingFeatureError struct {
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing audio feature %q", e.Feature)
}

func (e *MissingFeatureError) Is(target error) bool {
	return target == ErrMissingFeature
}

// SecretIntegrityError is returned when a secret payload does not match the
// checksum delivered alongside it.
type SecretIntegrityError struct {
	Name     string
	Expected uint32
	Actual   uint32
}

func (e *SecretIntegrityError) Error() string {
	return fmt.Sprintf("secret %s: crc32c mismatch (expected %d, computed %d)", e.Name, e.Expected, e.Actual)
}

func (e *SecretIntegrityError) Is(target error) bool {
	return target == ErrSecretIntegrity
}

// InvalidQueryError is returned for vector queries that must not reach the backend.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + e.Reason
}

func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// UpstreamSource identifies the external collaborator that failed.
type UpstreamSource string

const (
	SourceAuth     UpstreamSource = "auth"
	SourceSearch   UpstreamSource = "search"
	SourceMetadata UpstreamSource = "metadata"
	SourceFeatures UpstreamSource = "features"
	SourcePlaylist UpstreamSource = "playlist"
)

// UpstreamError carries the status code returned by an external service.
// StatusCode is zero when the call failed before a response was received.
type UpstreamError struct {
	Source     UpstreamSource
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("upstream %s", e.Source)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	switch e.Source {
	case SourceAuth:
		return target == ErrUpstreamAuth
	case SourceSearch:
		return target == ErrUpstreamSearch
	case SourceMetadata:
		return target == ErrUpstreamMetadata
	case SourceFeatures:
		return target == ErrUpstreamFeatures
	case SourcePlaylist:
		return target == ErrUpstreamPlaylist
	}
	return false
}

// StatusCode maps an error to the HTTP status of the envelope that reports it.
// Upstream failures keep the upstream's own status; anything unrecognised,
// including transport failures without a status, is a 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if errors.Is(err, ErrInvalidSize) {
		return http.StatusBadRequest
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode != 0 {
		return upstream.StatusCode
	}

	return http.StatusInternalServerError
}
