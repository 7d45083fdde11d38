package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "bikerental/internal/errors"
	mw "bikerental/internal/middleware"
	api "bikerental/pkg/contracts/api/v1"
)

// TableHandler serves the raw datasets and the reload operation
type TableHandler struct {
	service      DashboardServiceInterface
	notifier     ReloadNotifier
	validation   *mw.ValidationMiddleware
	params       *mw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewTableHandler creates a table handler. notifier may be nil.
func NewTableHandler(service DashboardServiceInterface, notifier ReloadNotifier, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *TableHandler {
	logger = logger.With(slog.String("component", "table_handler"))
	return &TableHandler{
		service:      service,
		notifier:     notifier,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		params:       mw.NewQueryParamValidator(logger, errorHandler),
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// Routes mounts under /api/tables
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListTables)
	r.With(mw.AuditLog(h.logger, "table_reload")).Post("/reload", h.Reload)
	r.Get("/{kind}", h.GetTable)

	return r
}

// ListTables handles GET /api/tables
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	statuses := h.service.TableStatuses()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   statuses,
		"count":  len(statuses),
	})
}

// GetTable handles GET /api/tables/{kind}?offset=&limit=
func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	offset, ok := h.params.ValidateInt(w, r, "offset", 0)
	if !ok {
		return
	}
	limit, ok := h.params.ValidateInt(w, r, "limit", 0)
	if !ok {
		return
	}

	req := api.TableRequest{
		PaginationRequest: api.PaginationRequest{Offset: offset, Limit: limit},
		Kind:              chi.URLParam(r, "kind"),
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page, err := h.service.GetTable(r.Context(), req.TableKind(), req.Offset, req.Limit)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to read table",
			slog.String("kind", req.Kind),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(req.Kind, err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   page,
	})
}

// Reload handles POST /api/tables/reload. Tables that fail to reload keep
// their previous contents and the failure is reported as a problem.
func (h *TableHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Reload(ctx); err != nil {
		h.logger.ErrorContext(ctx, "table reload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(ctx)),
		)
		h.errorHandler.HandleError(w, r, mapServiceError("tables", err))
		return
	}

	statuses := h.service.TableStatuses()
	if h.notifier != nil {
		h.notifier.NotifyTablesReloaded(ctx, statuses)
	}

	h.logger.InfoContext(ctx, "tables reloaded", slog.Int("tables", len(statuses)))
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   statuses,
	})
}
