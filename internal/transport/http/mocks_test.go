package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bikerental/internal/chart"
	apierrors "bikerental/internal/errors"
	"bikerental/internal/services"
	"bikerental/internal/shared/testutil"
	"bikerental/pkg/contracts/domain"
)

// MockDashboardService is a mock for DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Menu() []domain.MenuItem {
	return m.Called().Get(0).([]domain.MenuItem)
}

func (m *MockDashboardService) GetView(ctx context.Context, name string) (*domain.ViewResponse, error) {
	args := m.Called(ctx, name)
	if v := args.Get(0); v != nil {
		return v.(*domain.ViewResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardService) RenderChart(ctx context.Context, name string, format chart.Format, w io.Writer) error {
	return m.Called(ctx, name, format, w).Error(0)
}

func (m *MockDashboardService) GetTable(ctx context.Context, kind domain.TableKind, offset, limit int) (*domain.TablePage, error) {
	args := m.Called(ctx, kind, offset, limit)
	if v := args.Get(0); v != nil {
		return v.(*domain.TablePage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardService) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDashboardService) TableStatuses() []domain.TableStatus {
	return m.Called().Get(0).([]domain.TableStatus)
}

// MockHealthService is a mock for HealthServiceInterface
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}

func (m *MockHealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	return m.Called(ctx).Get(0).(map[string]interface{})
}

// MockReloadNotifier is a mock for ReloadNotifier
type MockReloadNotifier struct {
	mock.Mock
}

func (m *MockReloadNotifier) NotifyTablesReloaded(ctx context.Context, tables []domain.TableStatus) {
	m.Called(ctx, tables)
}

var testMenu = []domain.MenuItem{
	{Slug: "season", Title: "Jumlah Penyewaan berdasarkan Musim", Order: 1},
	{Slug: "year", Title: "Jumlah Penyewaan berdasarkan Tahun", Order: 2},
	{Slug: "hour", Title: "Jumlah Penyewaan berdasarkan Jam", Order: 3},
	{Slug: "weekday", Title: "Jumlah Penyewaan berdasarkan Hari dalam Minggu", Order: 4},
}

func seasonView() *domain.ViewResponse {
	return &domain.ViewResponse{
		View:         "season",
		Title:        "Jumlah Penyewaan berdasarkan Musim",
		Table:        domain.TableKindDaily,
		KeyColumn:    domain.ColumnSeason,
		ValueColumns: []string{domain.ColumnTotalRentals},
		Rows: []domain.AggregateRow{
			{Key: "3", Values: map[string]int64{domain.ColumnTotalRentals: 10643}},
			{Key: "1", Values: map[string]int64{domain.ColumnTotalRentals: 6423}},
		},
		Totals:   map[string]int64{domain.ColumnTotalRentals: 17066},
		ChartURL: "/api/views/season/chart",
	}
}

func newErrorHandler(t *testing.T) (*apierrors.ErrorHandler, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, logs := testutil.NewTestLogger(t)
	return apierrors.NewErrorHandler(logger, false), logs
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
