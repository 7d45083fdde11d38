package websocket

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"bikerental/internal/config"
	"bikerental/internal/infrastructure"
	"bikerental/internal/middleware"
)

// Handler upgrades dashboard page connections into sessions
type Handler struct {
	hub            *Hub
	views          ViewProvider
	validate       *validator.Validate
	cfg            SessionConfig
	allowedOrigins []string
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewHandler creates the /ws handler
func NewHandler(hub *Hub, views ViewProvider, wsCfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:            hub,
		views:          views,
		validate:       middleware.NewValidator(),
		cfg:            SessionConfigFrom(wsCfg),
		allowedOrigins: allowedOrigins,
		logger:         logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  wsCfg.ReadBufferSize,
		WriteBufferSize: wsCfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin allows requests without an Origin header, same host requests
// and configured origins
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	h.logger.WarnContext(r.Context(), "websocket origin rejected",
		slog.String("origin", origin),
		slog.String("host", r.Host))
	return false
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.EnsureTraceID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.ErrorContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	session := NewSession(h.hub, NewConnectionWrapper(conn), h.views, h.validate, h.cfg,
		infrastructure.GetTraceID(ctx), h.logger)
	h.hub.Register(session)

	go session.WritePump()
	if err := session.SendMenu(); err != nil {
		h.logger.WarnContext(ctx, "failed to send menu", slog.String("error", err.Error()))
	}
	go session.ReadPump()
}
