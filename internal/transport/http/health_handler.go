package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "bikerental/internal/errors"
	"bikerental/internal/middleware"
	api "bikerental/pkg/contracts/api/v1"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service HealthServiceInterface
	params  *middleware.QueryParamValidator
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service HealthServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HealthHandler {
	logger = logger.With(slog.String("handler", "health"))
	return &HealthHandler{
		service: service,
		params:  middleware.NewQueryParamValidator(logger, errorHandler),
		logger:  logger,
	}
}

// Routes mounts under /api/health
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HealthCheck)
	r.Get("/ready", h.ReadinessCheck)
	r.Get("/live", h.LivenessCheck)
	return r
}

// HealthCheck handles GET /api/health. With verbose=true it also reports
// readiness, liveness and table statistics.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var req api.HealthCheckRequest
	verbose, ok := h.params.ValidateEnum(w, r, "verbose", []string{"true", "false", "1", "0"}, "false")
	if !ok {
		return
	}
	req.Verbose = verbose == "true" || verbose == "1"

	if req.Verbose {
		render.JSON(w, r, h.service.GetDetailedHealth(r.Context()))
		return
	}
	render.JSON(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck handles GET /api/health/ready. It answers 503 until both
// tables are loaded.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != "ready" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.LivenessCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}
