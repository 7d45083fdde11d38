package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikerental/internal/shared/testutil"
	"bikerental/pkg/contracts/domain"
)

func loadedStatuses() []domain.TableStatus {
	return []domain.TableStatus{
		{Kind: domain.TableKindDaily, Source: "day.csv", Loaded: true, Rows: 731, Columns: 13, LoadedAt: time.Now()},
		{Kind: domain.TableKindHourly, Source: "hour.csv", Loaded: true, Rows: 17379, Columns: 14, LoadedAt: time.Now()},
	}
}

func TestHealthService_HealthAndLiveness(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	hs := NewHealthService("1.0.0", "https://example.com/repo", nil, nil, logger)

	health := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.0.0", health.Version)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	assert.True(t, logs.ContainsMessage("HealthService initialized"))
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []domain.TableStatus
		wantStatus string
		wantKey    string
		wantState  string
	}{
		{
			name:       "both tables loaded",
			statuses:   loadedStatuses(),
			wantStatus: "ready",
			wantKey:    "table_hourly",
			wantState:  "ready",
		},
		{
			name: "hourly failed",
			statuses: []domain.TableStatus{
				loadedStatuses()[0],
				{Kind: domain.TableKindHourly, Source: "hour.csv", Error: "open hour.csv: no such file"},
			},
			wantStatus: "not_ready",
			wantKey:    "table_hourly",
			wantState:  "not_ready",
		},
		{
			name: "daily not loaded yet",
			statuses: []domain.TableStatus{
				{Kind: domain.TableKindDaily, Source: "day.csv"},
				loadedStatuses()[1],
			},
			wantStatus: "not_ready",
			wantKey:    "table_daily",
			wantState:  "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := &MockTableReporter{}
			tables.On("TableStatuses").Return(tt.statuses)

			logger, _ := testutil.NewTestLogger(t)
			hs := NewHealthService("1.0.0", "", tables, nil, logger)

			status := hs.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)

			sh, ok := status.Services[tt.wantKey].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantState, sh.Status)
			assert.Contains(t, status.Services, "websocket")

			tables.AssertExpectations(t)
		})
	}
}

func TestHealthService_ReadinessWithoutReporter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.0.0", "", nil, nil, logger)

	assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)
}

func TestHealthService_SystemStats(t *testing.T) {
	tables := &MockTableReporter{}
	tables.On("TableStatuses").Return(loadedStatuses())
	tables.On("CacheStats").Return(domain.CacheStats{Entries: 2, Hits: 10, Misses: 2, Loads: 2})

	sessions := &MockSessionCounter{}
	sessions.On("SessionCount").Return(3)

	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.0.0", "", tables, sessions, logger)

	stats := hs.SystemStats(context.Background())
	assert.Len(t, stats.Tables, 2)
	assert.Equal(t, int64(10), stats.Cache.Hits)
	assert.Equal(t, 3, stats.WebSocketSessions)
	assert.NotEmpty(t, stats.GoVersion)

	detailed := hs.GetDetailedHealth(context.Background())
	assert.Contains(t, detailed, "readiness")
	assert.Contains(t, detailed, "stats")

	tables.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestHealthService_Version(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	plain := NewHealthService("1.0.0", "repo", nil, nil, logger).Version()
	assert.Equal(t, "1.0.0", plain["version"])
	assert.Equal(t, "v1", plain["api_version"])
	assert.Equal(t, "clean-v1", plain["data_format"])
	assert.NotContains(t, plain, "build_time")

	built := NewHealthServiceWithBuildInfo("1.0.0", "repo", "2026-10-19T10:00:00Z", "abc123", nil, nil, logger).Version()
	assert.Equal(t, "2026-10-19T10:00:00Z", built["build_time"])
	assert.Equal(t, "abc123", built["build_id"])
}

func TestHealthService_WithDashboardService(t *testing.T) {
	svc, _, _ := newSampleService(t)
	logger, _ := testutil.NewTestLogger(t)
	hs := NewHealthService("1.0.0", "", svc, nil, logger)

	assert.Equal(t, "not_ready", hs.ReadinessCheck(context.Background()).Status)

	mustLoad(t, svc)
	assert.Equal(t, "ready", hs.ReadinessCheck(context.Background()).Status)
}
