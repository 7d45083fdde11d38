package aggregation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bikerental/internal/dataset"
	"bikerental/internal/infrastructure"
)

// Selector runs view aggregations on behalf of the service layer.
type Selector struct {
	logger  *slog.Logger
	metrics *infrastructure.DashboardMetrics
	tracer  trace.Tracer
}

// NewSelector creates a selector. metrics may be nil.
func NewSelector(logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Selector {
	return &Selector{
		logger:  infrastructure.WithComponent(logger, "aggregation"),
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.MeterName),
	}
}

// Select aggregates view and returns the result with its chart metadata.
func (s *Selector) Select(ctx context.Context, view ViewKind, daily, hourly *dataset.Table) (*Result, ChartSpec, error) {
	ctx, span := s.tracer.Start(ctx, "aggregation.select", trace.WithAttributes(
		attribute.String("view", view.Slug()),
	))
	defer span.End()

	start := time.Now()
	result, err := Aggregate(view, daily, hourly)
	elapsed := time.Since(start)
	s.metrics.RecordAggregation(ctx, view.Slug(), elapsed, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "aggregation failed",
			slog.String("view", view.Slug()),
			slog.String("error", err.Error()))
		return nil, ChartSpec{}, err
	}

	span.SetAttributes(attribute.Int("aggregation.groups", len(result.Rows)))
	s.logger.DebugContext(ctx, "view aggregated",
		slog.String("view", view.Slug()),
		slog.Int("groups", len(result.Rows)),
		slog.Duration("duration", elapsed))

	return result, view.ChartSpec(), nil
}
