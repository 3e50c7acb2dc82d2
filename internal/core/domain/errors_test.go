package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: http.StatusOK},
		{name: "invalid size", err: &InvalidSizeError{Raw: "-1", Reason: msgInvalidSizeType}, want: http.StatusBadRequest},
		{name: "wrapped invalid size", err: fmt.Errorf("service: %w", &InvalidSizeError{Raw: "x"}), want: http.StatusBadRequest},
		{name: "missing feature", err: &MissingFeatureError{Feature: "energy"}, want: http.StatusInternalServerError},
		{name: "upstream auth", err: &UpstreamError{Source: SourceAuth, StatusCode: http.StatusUnauthorized}, want: http.StatusUnauthorized},
		{name: "upstream features 404", err: fmt.Errorf("spotify adapter: %w", &UpstreamError{Source: SourceFeatures, StatusCode: http.StatusNotFound}), want: http.StatusNotFound},
		{name: "upstream transport failure", err: &UpstreamError{Source: SourceSearch, Err: errors.New("dial tcp: timeout")}, want: http.StatusInternalServerError},
		{name: "secret integrity", err: &SecretIntegrityError{Name: "s", Expected: 1, Actual: 2}, want: http.StatusInternalServerError},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusCode(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestUpstreamError_Is(t *testing.T) {
	tests := []struct {
		source UpstreamSource
		target error
	}{
		{SourceAuth, ErrUpstreamAuth},
		{SourceSearch, ErrUpstreamSearch},
		{SourceMetadata, ErrUpstreamMetadata},
		{SourceFeatures, ErrUpstreamFeatures},
		{SourcePlaylist, ErrUpstreamPlaylist},
	}

	for _, tc := range tests {
		err := fmt.Errorf("wrapped: %w", &UpstreamError{Source: tc.source, StatusCode: 503})
		if !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected errors.Is(%v)", tc.source, tc.target)
		}
		if tc.source != SourceAuth && errors.Is(err, ErrUpstreamAuth) {
			t.Fatalf("%s: unexpectedly matched ErrUpstreamAuth", tc.source)
		}
	}
}
