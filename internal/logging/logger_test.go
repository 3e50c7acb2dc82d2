package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		"DEBUG":    zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
		"":         zerolog.InfoLevel,
		"bogus":    zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestCtx_AddsRequestFields(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	require.Contains(t, out, `"request_id":"req-1"`)
	require.Contains(t, out, `"correlation_id":"corr-1"`)
	require.Contains(t, out, "hello")
}

func TestGenerateIDs(t *testing.T) {
	assert.Len(t, GenerateRequestID(), 36)
	assert.Len(t, GenerateCorrelationID(), 8)
	assert.NotEqual(t, GenerateRequestID(), GenerateRequestID())
}
