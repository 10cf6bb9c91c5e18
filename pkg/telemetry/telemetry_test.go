package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	// given
	ctx := context.Background()

	// when
	tp, err := NewTracerProvider(ctx, "storefront-test", config.TelemetryConfig{Enabled: false})

	// then
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	_, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid(), "spans should carry valid ids even without an exporter")
}

func TestNewMeterProvider_ServesRecordedCounters(t *testing.T) {
	// given
	ctx := context.Background()
	metrics, err := NewMeterProvider("storefront-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = metrics.Provider.Shutdown(ctx) })

	counter, err := otel.Meter("test").Int64Counter("checkout_attempts")
	require.NoError(t, err)

	// when
	counter.Add(ctx, 3)
	rec := httptest.NewRecorder()
	metrics.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// then
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "checkout_attempts")
	assert.Contains(t, rec.Body.String(), "storefront-test")
}
