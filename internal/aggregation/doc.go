// Package aggregation computes the four dashboard views from the loaded
// rental tables.
//
// Each ViewKind names one grouped sum over one table together with the chart
// metadata used to draw it. Aggregate is a pure function of its inputs; the
// Selector wraps it with logging, tracing and metrics for the service layer.
//
//	result, spec, err := selector.Select(ctx, aggregation.BySeasonTotal, daily, hourly)
//
// A missing column or a non-numeric summed value fails the single view with
// an AGGREGATION error and never produces an empty group.
package aggregation
