package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"bikerental/internal/aggregation"
	"bikerental/internal/chart"
	"bikerental/internal/dataset"
	"bikerental/internal/infrastructure"
	"bikerental/pkg/contracts/domain"
)

// Sources locates the two datasets.
type Sources struct {
	Daily  string
	Hourly string
}

// For returns the source of kind.
func (s Sources) For(kind domain.TableKind) string {
	if kind == domain.TableKindHourly {
		return s.Hourly
	}
	return s.Daily
}

// DashboardService serves the menu, the views and the raw tables.
type DashboardService struct {
	cache    *dataset.Cache
	selector *aggregation.Selector
	renderer *chart.Renderer
	sources  Sources
	metrics  *infrastructure.DashboardMetrics
	logger   *slog.Logger
}

// NewDashboardService wires the service. metrics may be nil.
func NewDashboardService(
	cache *dataset.Cache,
	selector *aggregation.Selector,
	renderer *chart.Renderer,
	sources Sources,
	metrics *infrastructure.DashboardMetrics,
	logger *slog.Logger,
) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("DashboardService initialized",
		slog.String("daily_source", sources.Daily),
		slog.String("hourly_source", sources.Hourly))

	return &DashboardService{
		cache:    cache,
		selector: selector,
		renderer: renderer,
		sources:  sources,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "dashboard_service"),
	}
}

// LoadTables populates the cache with both tables. Startup treats an error
// as fatal.
func (s *DashboardService) LoadTables(ctx context.Context) error {
	var result *multierror.Error
	for _, kind := range []domain.TableKind{domain.TableKindDaily, domain.TableKindHourly} {
		table, err := s.cache.Get(ctx, kind, s.sources.For(kind))
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		s.logger.InfoContext(ctx, "table ready",
			slog.String("kind", string(kind)),
			slog.Int("rows", table.Nrow()))
	}
	return result.ErrorOrNil()
}

// Menu returns the view selector entries in order.
func (s *DashboardService) Menu() []domain.MenuItem {
	return aggregation.Menu()
}

// Compute resolves name and aggregates the view against its table.
func (s *DashboardService) Compute(ctx context.Context, name string) (*aggregation.Result, aggregation.ChartSpec, error) {
	view, err := aggregation.ParseViewKind(name)
	if err != nil {
		return nil, aggregation.ChartSpec{}, err
	}

	kind := view.Table()
	table, err := s.cache.Get(ctx, kind, s.sources.For(kind))
	if err != nil {
		return nil, aggregation.ChartSpec{}, err
	}

	var daily, hourly *dataset.Table
	if kind == domain.TableKindHourly {
		hourly = table
	} else {
		daily = table
	}
	return s.selector.Select(ctx, view, daily, hourly)
}

// GetView computes one view for display.
func (s *DashboardService) GetView(ctx context.Context, name string) (*domain.ViewResponse, error) {
	result, spec, err := s.Compute(ctx, name)
	if err != nil {
		return nil, err
	}

	return &domain.ViewResponse{
		View:         result.View.Slug(),
		Title:        spec.Title,
		Table:        result.Table,
		KeyColumn:    result.KeyColumn,
		ValueColumns: result.ValueColumns,
		Rows:         result.AggregateRows(),
		Totals:       result.Totals(),
		Chart:        spec.Meta(),
		ChartURL:     ChartURL(result.View),
		ComputedAt:   time.Now().UTC(),
	}, nil
}

// ChartURL is where the rendered image of view is served.
func ChartURL(view aggregation.ViewKind) string {
	return fmt.Sprintf("/api/views/%s/chart", view.Slug())
}

// RenderChart draws the chart of a view into w. Nothing is written on error.
func (s *DashboardService) RenderChart(ctx context.Context, name string, format chart.Format, w io.Writer) error {
	result, spec, err := s.Compute(ctx, name)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, spec, result, format); err != nil {
		s.logger.ErrorContext(ctx, "chart render failed",
			slog.String("view", result.View.Slug()),
			slog.String("error", err.Error()))
		return err
	}
	s.metrics.RecordChartRender(ctx, result.View.Slug(), string(format))

	_, err = buf.WriteTo(w)
	return err
}

// GetTable returns rows [offset, offset+limit) of a dataset. A zero limit
// returns every remaining row.
func (s *DashboardService) GetTable(ctx context.Context, kind domain.TableKind, offset, limit int) (*domain.TablePage, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, kind)
	}
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset and limit must not be negative", ErrInvalidInput)
	}

	table, err := s.cache.Get(ctx, kind, s.sources.For(kind))
	if err != nil {
		return nil, err
	}

	return &domain.TablePage{
		Kind:    kind,
		Title:   kind.Title(),
		Source:  table.Source(),
		Columns: table.Names(),
		Rows:    table.Page(offset, limit),
		Offset:  offset,
		Limit:   limit,
		Total:   table.Nrow(),
	}, nil
}

// Reload reads both sources again. A table whose reload fails keeps serving
// its previous contents. A table with no good contents is invalidated first,
// so a memoized load failure is dropped and the source is read afresh.
func (s *DashboardService) Reload(ctx context.Context) error {
	s.logger.InfoContext(ctx, "reloading tables")

	var result *multierror.Error
	for _, kind := range []domain.TableKind{domain.TableKindDaily, domain.TableKindHourly} {
		if err := s.reloadTable(ctx, kind); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		s.logger.WarnContext(ctx, "reload incomplete", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (s *DashboardService) reloadTable(ctx context.Context, kind domain.TableKind) error {
	source := s.sources.For(kind)
	if _, ok, err := s.cache.Lookup(kind, source); !ok || err != nil {
		s.cache.Invalidate(kind, source)
		_, err := s.cache.Get(ctx, kind, source)
		return err
	}
	_, err := s.cache.Reload(ctx, kind, source)
	return err
}

// ReleaseTables drops every cached table. Loads still in flight are not
// published.
func (s *DashboardService) ReleaseTables(ctx context.Context) {
	s.cache.InvalidateAll()
	s.logger.DebugContext(ctx, "tables released")
}

// TableStatuses reports both tables without loading anything.
func (s *DashboardService) TableStatuses() []domain.TableStatus {
	statuses := make([]domain.TableStatus, 0, 2)
	for _, kind := range []domain.TableKind{domain.TableKindDaily, domain.TableKindHourly} {
		source := s.sources.For(kind)
		table, ok, err := s.cache.Lookup(kind, source)
		switch {
		case !ok:
			statuses = append(statuses, domain.TableStatus{Kind: kind, Source: source})
		case err != nil:
			statuses = append(statuses, domain.TableStatus{Kind: kind, Source: source, Error: err.Error()})
		default:
			statuses = append(statuses, table.Status())
		}
	}
	return statuses
}

// CacheStats reports table cache activity.
func (s *DashboardService) CacheStats() domain.CacheStats {
	return s.cache.Stats()
}
