package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikerental/internal/config"
	"bikerental/internal/shared/testutil"
)

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		ServiceName:    "dash",
		TraceExporter:  "stdout",
		MetricsEnabled: false,
	})

	assert.Equal(t, "dash", cfg.ServiceName)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.False(t, cfg.EnableMetrics)
	assert.True(t, cfg.EnableTracing)

	defaults := OTelConfigFrom(config.TelemetryConfig{MetricsEnabled: true})
	assert.Equal(t, config.ServiceName, defaults.ServiceName)
	assert.Equal(t, "none", defaults.TraceExporter)
}

func TestOTelInitialization(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *OTelConfig
		wantErr bool
		metrics bool
	}{
		{
			name:    "defaults",
			cfg:     nil,
			metrics: true,
		},
		{
			name: "tracing only",
			cfg: &OTelConfig{
				ServiceName:   "test",
				TraceExporter: "none",
				EnableTracing: true,
				SampleRatio:   1,
			},
		},
		{
			name: "unknown exporter",
			cfg: &OTelConfig{
				ServiceName:   "test",
				TraceExporter: "jaeger",
				EnableTracing: true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			providers, err := InitializeOTel(tt.cfg, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			if tt.metrics {
				assert.NotNil(t, providers.MeterProvider)
				assert.NotNil(t, providers.PrometheusHTTP)
			} else {
				assert.Nil(t, providers.MeterProvider)
				assert.Nil(t, providers.PrometheusHTTP)
			}
		})
	}
}

func TestOTelInitialization_Repeated(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	for i := 0; i < 3; i++ {
		providers, err := InitializeOTel(DefaultOTelConfig(), logger)
		require.NoError(t, err)
		require.NoError(t, providers.Shutdown(context.Background()))
	}
}

func TestTraceCorrelation(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	ctx, span := providers.Tracer.Start(context.Background(), "select-view")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.Len(t, traceID, 32)
	assert.Equal(t, traceID, GetTraceID(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))

	RecordError(ctx, errors.New("aggregation failed"))
	RecordError(context.Background(), errors.New("no span"))
}

func TestDashboardMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(DefaultOTelConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = providers.Shutdown(context.Background()) })

	metrics, err := NewDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordHTTPRequest(ctx, http.MethodGet, "/api/views/{view}", http.StatusOK, 12*time.Millisecond)
	metrics.RecordDatasetLoad(ctx, "daily", 731, 40*time.Millisecond, nil)
	metrics.RecordDatasetLoad(ctx, "hourly", 0, time.Millisecond, errors.New("missing"))
	metrics.RecordCacheLookup(ctx, "daily", true)
	metrics.RecordCacheLookup(ctx, "daily", false)
	metrics.RecordAggregation(ctx, "season", 2*time.Millisecond, nil)
	metrics.RecordAggregation(ctx, "hour", time.Millisecond, errors.New("column missing"))
	metrics.RecordChartRender(ctx, "season", "png")

	w := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	for _, name := range []string{
		"http_requests_total",
		"dataset_loads_total",
		"table_cache_hits_total",
		"table_cache_misses_total",
		"aggregations_total",
		"aggregation_errors_total",
		"chart_renders_total",
		"go_goroutines",
	} {
		assert.Contains(t, body, name)
	}
}

func TestDashboardMetrics_NilSafe(t *testing.T) {
	var m *DashboardMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordHTTPRequest(ctx, http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.RecordDatasetLoad(ctx, "daily", 1, time.Millisecond, nil)
		m.RecordCacheLookup(ctx, "daily", true)
		m.RecordAggregation(ctx, "season", time.Millisecond, nil)
		m.RecordChartRender(ctx, "season", "svg")
	})

	noop := NoopDashboardMetrics()
	require.NotNil(t, noop)
	assert.NotPanics(t, func() {
		noop.RecordAggregation(ctx, "season", time.Millisecond, errors.New("x"))
	})
}
