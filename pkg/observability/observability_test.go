package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p)

	// No exporters were created.
	assert.Nil(t, p.tracerProvider)
	assert.Nil(t, p.meterProvider)

	// Instruments still hand out usable (no-op) implementations.
	assert.NotNil(t, p.Tracer())
	assert.NotNil(t, p.Meter())

	ctx, done := p.TrackRequest(context.Background(), "checkout.request")
	assert.NotNil(t, ctx)
	done(errors.New("boom"))

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewNilConfigUsesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "nudged", cfg.ServiceName)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.True(t, cfg.Enabled)
}

func TestTrackRequestDisabledProviderDoesNotPanic(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	_, done := p.TrackRequest(context.Background(), "nudge.resolve")
	done(nil)
}
