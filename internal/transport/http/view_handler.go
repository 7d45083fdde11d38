package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"bikerental/internal/aggregation"
	"bikerental/internal/chart"
	apierrors "bikerental/internal/errors"
	mw "bikerental/internal/middleware"
	"bikerental/internal/services"
	api "bikerental/pkg/contracts/api/v1"
)

type viewCtxKey struct{}

// ViewHandler serves the aggregate views and their charts
type ViewHandler struct {
	service       DashboardServiceInterface
	validation    *mw.ValidationMiddleware
	params        *mw.QueryParamValidator
	defaultFormat string
	logger        *slog.Logger
	errorHandler  *apierrors.ErrorHandler
}

// NewViewHandler creates a view handler. defaultFormat is used when a chart
// request has no format parameter.
func NewViewHandler(service DashboardServiceInterface, defaultFormat string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ViewHandler {
	if defaultFormat == "" {
		defaultFormat = string(chart.FormatPNG)
	}
	logger = logger.With(slog.String("component", "view_handler"))
	return &ViewHandler{
		service:       service,
		validation:    mw.NewValidationMiddleware(logger, errorHandler),
		params:        mw.NewQueryParamValidator(logger, errorHandler),
		defaultFormat: defaultFormat,
		logger:        logger,
		errorHandler:  errorHandler,
	}
}

// Routes mounts under /api/views
func (h *ViewHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.ListViews)

	r.Route("/{view}", func(r chi.Router) {
		r.Use(h.ViewCtx)
		r.With(render.SetContentType(render.ContentTypeJSON)).Get("/", h.GetView)
		r.Get("/chart", h.GetChart)
	})

	return r
}

// ViewCtx validates the view URL parameter and stores it in the context
func (h *ViewHandler) ViewCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := api.ViewRequest{View: chi.URLParam(r, "view")}
		if err := h.validation.ValidateStruct(req); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), viewCtxKey{}, req.View)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func viewFromContext(ctx context.Context) string {
	view, _ := ctx.Value(viewCtxKey{}).(string)
	return view
}

// ListViews handles GET /api/views
func (h *ViewHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	menu := h.service.Menu()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   menu,
		"count":  len(menu),
	})
}

// GetView handles GET /api/views/{view}
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	name := viewFromContext(r.Context())

	view, err := h.service.GetView(r.Context(), name)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to compute view",
			slog.String("view", name),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, mapServiceError(name, err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetChart handles GET /api/views/{view}/chart?format=png|svg
func (h *ViewHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := viewFromContext(r.Context())

	raw, ok := h.params.ValidateEnum(w, r, "format", []string{string(chart.FormatPNG), string(chart.FormatSVG)}, h.defaultFormat)
	if !ok {
		return
	}
	req := api.ChartRequest{ViewRequest: api.ViewRequest{View: name}, Format: raw}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := chart.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(name, err))
		return
	}

	// RenderChart writes nothing on failure, so the problem response can
	// still be sent after it returns an error
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	rw := &deferredWriter{ResponseWriter: w}
	if err := h.service.RenderChart(r.Context(), name, format, rw); err != nil {
		h.logger.WarnContext(r.Context(), "failed to render chart",
			slog.String("view", name),
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		w.Header().Del("Cache-Control")
		h.errorHandler.HandleError(w, r, mapServiceError(name, err))
		return
	}
	if !rw.wrote {
		w.WriteHeader(http.StatusOK)
	}
}

// deferredWriter records whether the body has been started
type deferredWriter struct {
	http.ResponseWriter
	wrote bool
}

func (w *deferredWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

// mapServiceError turns service sentinels into API errors for the view or
// table called name. AppErrors pass through and are mapped by the error
// handler.
func mapServiceError(name string, err error) error {
	switch {
	case errors.Is(err, services.ErrUnknownView):
		return apierrors.ViewNotFound(name, viewSlugs())
	case errors.Is(err, services.ErrUnknownTable):
		return apierrors.TableNotFound(name)
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.InvalidParameter("request", err.Error())
	case errors.Is(err, chart.ErrUnsupportedFormat):
		return apierrors.InvalidParameter("format", err.Error())
	case errors.Is(err, chart.ErrNothingToRender):
		return apierrors.NothingToPlot(name)
	default:
		return err
	}
}

func viewSlugs() []string {
	menu := aggregation.Menu()
	slugs := make([]string, len(menu))
	for i, item := range menu {
		slugs[i] = item.Slug
	}
	return slugs
}
