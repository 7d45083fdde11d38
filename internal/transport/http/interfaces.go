package http

import (
	"context"
	"io"

	"bikerental/internal/chart"
	"bikerental/internal/services"
	"bikerental/pkg/contracts/domain"
)

// DashboardServiceInterface is what the view, table and page handlers need
// from the dashboard service
type DashboardServiceInterface interface {
	Menu() []domain.MenuItem
	GetView(ctx context.Context, name string) (*domain.ViewResponse, error)
	RenderChart(ctx context.Context, name string, format chart.Format, w io.Writer) error
	GetTable(ctx context.Context, kind domain.TableKind, offset, limit int) (*domain.TablePage, error)
	Reload(ctx context.Context) error
	TableStatuses() []domain.TableStatus
}

// HealthServiceInterface defines the health endpoints' service
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
	GetDetailedHealth(ctx context.Context) map[string]interface{}
}

// ReloadNotifier is told about every successful table reload
type ReloadNotifier interface {
	NotifyTablesReloaded(ctx context.Context, tables []domain.TableStatus)
}
