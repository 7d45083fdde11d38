package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	apierrors "bikerental/internal/errors"
	mw "bikerental/internal/middleware"
	"bikerental/internal/services"
	api "bikerental/pkg/contracts/api/v1"
	"bikerental/pkg/contracts/domain"
)

// Dashboard page text
const (
	PageTitle     = "Dashboard Analisis Penyewaan Sepeda"
	SidebarHeader = "Jumlah Penyewaan Sepeda"
	SelectPrompt  = "Pilih opsi:"
	PageFooter    = "Dashboard ini menampilkan analisis interaktif penyewaan sepeda."
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type tableSection struct {
	Title string
	Page  *domain.TablePage
	Error string
}

type pageData struct {
	Title         string
	SidebarHeader string
	Prompt        string
	Footer        string
	Menu          []domain.MenuItem
	Selected      string
	Tables        []tableSection
	ViewTitle     string
	ViewError     string
	ChartURL      string
}

// PageHandler renders the dashboard page
type PageHandler struct {
	service      DashboardServiceInterface
	validation   *mw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewPageHandler creates the handler for GET /
func NewPageHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	logger = logger.With(slog.String("component", "page_handler"))
	return &PageHandler{
		service:      service,
		validation:   mw.NewValidationMiddleware(logger, errorHandler),
		logger:       logger,
		errorHandler: errorHandler,
	}
}

// ServeHTTP handles GET /?view=<slug>. A view that fails to aggregate is
// reported inside the page and the rest of the page is still served.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := api.DashboardRequest{View: r.URL.Query().Get("view")}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	menu := h.service.Menu()
	data := pageData{
		Title:         PageTitle,
		SidebarHeader: SidebarHeader,
		Prompt:        SelectPrompt,
		Footer:        PageFooter,
		Menu:          menu,
		Selected:      req.View,
	}
	if data.Selected == "" && len(menu) > 0 {
		data.Selected = menu[0].Slug
	}

	for _, kind := range []domain.TableKind{domain.TableKindDaily, domain.TableKindHourly} {
		section := tableSection{Title: kind.Title()}
		page, err := h.service.GetTable(ctx, kind, 0, 0)
		if err != nil {
			h.logger.ErrorContext(ctx, "table unavailable for page",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
			section.Error = err.Error()
		} else {
			section.Page = page
		}
		data.Tables = append(data.Tables, section)
	}

	status := http.StatusOK
	view, err := h.service.GetView(ctx, data.Selected)
	switch {
	case err == nil:
		data.Selected = view.View
		data.ViewTitle = view.Title
		data.ChartURL = view.ChartURL
	case errors.Is(err, services.ErrUnknownView):
		status = http.StatusNotFound
		data.ViewError = err.Error()
	default:
		h.logger.WarnContext(ctx, "view failed on page",
			slog.String("view", data.Selected),
			slog.String("error", err.Error()))
		data.ViewTitle = titleOf(menu, data.Selected)
		data.ViewError = err.Error()
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(ctx, "failed to render dashboard page", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func titleOf(menu []domain.MenuItem, slug string) string {
	for _, item := range menu {
		if item.Slug == slug {
			return item.Title
		}
	}
	return slug
}
