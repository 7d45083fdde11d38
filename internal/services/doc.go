// Package services implements the business logic layer of the dashboard. It
// sits between the transports (HTTP, WebSocket, CLI) and the dataset,
// aggregation and chart packages.
//
// # Services
//
// DashboardService runs one interaction at a time: a table cache lookup, one
// aggregation and, for images, one chart render. It also pages through the
// raw tables and reloads them on request.
//
// HealthService reports liveness, readiness (both tables loaded) and build
// information.
//
// # Common Service Pattern
//
// Services receive their collaborators and a *slog.Logger by injection:
//
//	svc := services.NewDashboardService(cache, selector, renderer, sources, metrics, logger)
//	if err := svc.LoadTables(ctx); err != nil {
//	    return err // startup aborts
//	}
//	view, err := svc.GetView(ctx, "season")
//
// # Error Handling
//
// Errors keep their cause. Dataset failures carry a DATA_LOAD AppError and
// view failures an AGGREGATION AppError; ErrUnknownView and ErrUnknownTable
// mark requests for names that do not exist. Transports translate these into
// problem responses or inline messages.
package services
