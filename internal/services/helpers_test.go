package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bikerental/internal/aggregation"
	"bikerental/internal/chart"
	"bikerental/internal/config"
	"bikerental/internal/dataset"
	"bikerental/internal/infrastructure"
	"bikerental/internal/shared/testutil"
	"bikerental/pkg/contracts/domain"
)

// MockTableReporter is a mock for the TableReporter interface
type MockTableReporter struct {
	mock.Mock
}

func (m *MockTableReporter) TableStatuses() []domain.TableStatus {
	args := m.Called()
	return args.Get(0).([]domain.TableStatus)
}

func (m *MockTableReporter) CacheStats() domain.CacheStats {
	args := m.Called()
	return args.Get(0).(domain.CacheStats)
}

// MockSessionCounter is a mock for the SessionCounter interface
type MockSessionCounter struct {
	mock.Mock
}

func (m *MockSessionCounter) SessionCount() int {
	return m.Called().Int(0)
}

// newSampleService builds a dashboard service over the sample fixtures.
func newSampleService(t *testing.T) (*DashboardService, Sources, *testutil.BufferedSlogHandler) {
	t.Helper()

	dailyPath, hourlyPath := testutil.WriteSampleDatasets(t, t.TempDir())
	return newServiceFor(t, Sources{Daily: dailyPath, Hourly: hourlyPath})
}

func newServiceFor(t *testing.T, sources Sources) (*DashboardService, Sources, *testutil.BufferedSlogHandler) {
	t.Helper()

	logger, logs := testutil.NewTestLogger(t)
	metrics := infrastructure.NoopDashboardMetrics()

	loader := dataset.NewLoader(config.DataConfig{Delimiter: ",", DetectTypes: true}, logger, metrics)
	cache := dataset.NewCache(loader, logger, metrics)
	selector := aggregation.NewSelector(logger, metrics)
	renderer := chart.NewRenderer(config.ChartConfig{Width: 640, Height: 400})

	svc := NewDashboardService(cache, selector, renderer, sources, metrics, logger)
	return svc, sources, logs
}

func mustLoad(t *testing.T, svc *DashboardService) {
	t.Helper()
	require.NoError(t, svc.LoadTables(context.Background()))
}
