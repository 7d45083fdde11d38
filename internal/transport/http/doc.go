// Package http implements the HTTP handlers of the bike rental dashboard.
// Handlers are a thin layer over the dashboard and health services: they
// validate parameters, call the service and format the response.
//
// # Endpoints
//
//	GET  /                           dashboard page (html/template)
//	GET  /api/views                  the four selectable views
//	GET  /api/views/{view}           one computed view
//	GET  /api/views/{view}/chart     rendered chart, ?format=png|svg
//	GET  /api/tables                 load status of both datasets
//	GET  /api/tables/{kind}          rows of a dataset, ?offset=&limit=
//	POST /api/tables/reload          read both datasets again
//	POST /api/client-log             page script diagnostics
//	GET  /api/health[/ready|/live]   health probes
//	GET  /api/version                build information
//	GET  /metrics                    Prometheus scrape endpoint
//
// # Error Handling
//
// Failures are written as RFC 7807 problems by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/view-not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "unknown view: \"rainfall\"",
//	    "instance": "/api/views/rainfall",
//	    "trace_id": "..."
//	}
//
// Unknown views and tables answer 404, aggregation failures 422 and tables
// that could not be read 503. The dashboard page instead shows a failing
// view inline so the other views stay selectable.
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces declared in interfaces.go.
package http
