// Package api contains API contract definitions for the bike rental dashboard.
// Version v1 represents the current stable API version.
package api

import (
	"bikerental/pkg/contracts/domain"
)

// Common request parameters

// PaginationRequest represents offset based pagination over table rows.
// A zero limit means every remaining row.
type PaginationRequest struct {
	Offset int `json:"offset" query:"offset" validate:"min=0"`
	Limit  int `json:"limit" query:"limit" validate:"min=0,max=100000"`
}

// View API Requests

// ViewRequest identifies an aggregate view
type ViewRequest struct {
	View string `json:"view" param:"view" validate:"required,max=64,viewname"`
}

// ChartRequest represents a request to render a view's chart
type ChartRequest struct {
	ViewRequest
	Format string `json:"format" query:"format" validate:"omitempty,oneof=png svg"`
}

// Table API Requests

// TableRequest represents a request for a page of a dataset
type TableRequest struct {
	PaginationRequest
	Kind string `json:"kind" param:"kind" validate:"required,oneof=daily hourly"`
}

// TableKind returns the requested dataset
func (r TableRequest) TableKind() domain.TableKind {
	return domain.TableKind(r.Kind)
}

// Dashboard page

// DashboardRequest represents the selected view on the dashboard page
type DashboardRequest struct {
	View string `json:"view" query:"view" validate:"omitempty,max=64,viewname"`
}

// WebSocket API Requests

// SelectViewRequest is the client message that selects a view in a session
type SelectViewRequest struct {
	Type string `json:"type" validate:"required,eq=select_view"`
	View string `json:"view" validate:"required,max=64,viewname"`
}

// Health API Requests

// HealthCheckRequest represents a health check request
type HealthCheckRequest struct {
	Verbose bool `json:"verbose" query:"verbose"`
}
