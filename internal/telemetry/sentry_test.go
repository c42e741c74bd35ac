package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/cloo-solutions/cravings/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NoDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{}, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NotPanics(t, shutdown)
}

func TestStartSpan_WithoutSentry(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "recommend.Locations", SpanAttributes{
		SessionID: "sess-1",
		Operation: "locations",
	})
	require.NotNil(t, ctx)

	assert.NotPanics(t, func() {
		span.SetError(errors.New("boom"))
		span.End()
	})
}

func TestCaptureHelpers_WithoutSentry(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		CaptureError(ctx, errors.New("boom"))
		AddBreadcrumb(ctx, "search", "started")
	})
}

func TestSpan_NilInner(t *testing.T) {
	span := &Span{}
	assert.NotPanics(t, func() {
		span.SetError(errors.New("boom"))
		span.End()
	})
}
