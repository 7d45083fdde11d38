package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bikerental/internal/config"
	apierrors "bikerental/internal/errors"
	"bikerental/internal/infrastructure"
	"bikerental/internal/services"
	api "bikerental/pkg/contracts/api/v1"
	"bikerental/pkg/contracts/events"
)

const sendBufferSize = 16

// Error codes carried in error messages
const (
	CodeInvalidMessage     = "INVALID_MESSAGE"
	CodeUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"
	CodeViewNotFound       = "VIEW_NOT_FOUND"
	CodeAggregationFailed  = "AGGREGATION_FAILED"
	CodeDataUnavailable    = "DATA_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// SessionConfig holds the keep-alive and size limits of a session
type SessionConfig struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

// SessionConfigFrom converts the websocket section of the configuration
func SessionConfigFrom(cfg config.WebSocketConfig) SessionConfig {
	sc := SessionConfig{
		WriteWait:      cfg.WriteWait,
		PongWait:       cfg.PongWait,
		PingPeriod:     cfg.PingPeriod,
		MaxMessageSize: cfg.MaxMessageSize,
	}
	if sc.WriteWait <= 0 {
		sc.WriteWait = 10 * time.Second
	}
	if sc.PongWait <= 0 {
		sc.PongWait = config.WebSocketPongWait
	}
	if sc.PingPeriod <= 0 || sc.PingPeriod >= sc.PongWait {
		sc.PingPeriod = sc.PongWait * 9 / 10
	}
	if sc.MaxMessageSize <= 0 {
		sc.MaxMessageSize = config.WebSocketMaxMessageSize
	}
	return sc
}

// Session is one dashboard connection. Messages are handled one at a time on
// the read loop, so the interactions of a session never overlap; replies go
// through a buffered queue drained by the write loop.
type Session struct {
	id         string
	traceID    string
	remoteAddr string

	hub      *Hub
	conn     Connection
	views    ViewProvider
	validate *validator.Validate
	cfg      SessionConfig

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	connectedAt      time.Time
	messagesReceived atomic.Int64
	messagesSent     atomic.Int64

	logger *slog.Logger
}

// NewSession creates a session on conn. traceID ties its log records to the
// upgrade request.
func NewSession(hub *Hub, conn Connection, views ViewProvider, validate *validator.Validate, cfg SessionConfig, traceID string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	id := uuid.New().String()
	if traceID == "" {
		traceID = id
	}

	return &Session{
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		hub:         hub,
		conn:        conn,
		views:       views,
		validate:    validate,
		cfg:         cfg,
		send:        make(chan []byte, sendBufferSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.session"),
			slog.String("session_id", id),
		),
	}
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

func (s *Session) context() context.Context {
	return infrastructure.WithTraceID(context.Background(), s.traceID)
}

func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Send queues v for the write loop, waiting while the queue is full
func (s *Session) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	select {
	case <-s.done:
		return services.ErrWebSocketClosed
	default:
	}
	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return services.ErrWebSocketClosed
	}
}

// trySend queues data unless the queue is full or the session is closed
func (s *Session) trySend(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// SendMenu sends the view selector; it is the first message of a session
func (s *Session) SendMenu() error {
	msg := events.MenuMessage{BaseMessage: s.base(events.MessageTypeMenu, "")}
	msg.Data.Title = "Dashboard Analisis Penyewaan Sepeda"
	msg.Data.Header = "Jumlah Penyewaan Sepeda"
	msg.Data.Prompt = "Pilih opsi:"
	msg.Data.Items = s.views.Menu()
	if len(msg.Data.Items) > 0 {
		msg.Data.Default = msg.Data.Items[0].Slug
	}
	return s.Send(msg)
}

// ReadPump handles client messages until the connection fails or closes
func (s *Session) ReadPump() {
	ctx := s.context()
	defer func() {
		s.logger.InfoContext(ctx, "session read loop stopped",
			slog.Duration("connection_duration", time.Since(s.connectedAt)),
			slog.Int64("messages_received", s.messagesReceived.Load()))
		s.hub.Unregister(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.logger.WarnContext(ctx, "unexpected websocket close", slog.String("error", err.Error()))
			}
			return
		}
		s.messagesReceived.Add(1)

		if err := s.handleMessage(ctx, message); err != nil {
			// Only a closed session stops the loop
			return
		}
	}
}

// handleMessage answers one client message. Interaction failures are sent
// back as error messages; only a failure to queue the reply is returned.
func (s *Session) handleMessage(ctx context.Context, raw []byte) error {
	var msg events.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return s.sendError(ctx, "", "", CodeInvalidMessage, "message is not valid JSON", nil)
	}

	switch msg.Type {
	case events.MessageTypeSelectView:
		req := api.SelectViewRequest{Type: string(msg.Type), View: msg.View}
		if err := s.validate.Struct(req); err != nil {
			return s.sendError(ctx, msg.ID, msg.View, CodeInvalidMessage, "select_view needs a view name", err.Error())
		}
		return s.selectView(ctx, msg)

	case events.MessageTypePing:
		return s.Send(s.base(events.MessageTypePong, msg.ID))

	default:
		return s.sendError(ctx, msg.ID, "", CodeUnknownMessageType,
			fmt.Sprintf("unsupported message type %q", msg.Type), nil)
	}
}

func (s *Session) selectView(ctx context.Context, msg events.ClientMessage) error {
	start := time.Now()
	view, err := s.views.GetView(ctx, msg.View)
	if err != nil {
		code, message := classify(err)
		s.logger.WarnContext(ctx, "view selection failed",
			slog.String("view", msg.View),
			slog.String("code", code),
			slog.String("error", err.Error()))
		return s.sendError(ctx, msg.ID, msg.View, code, message, nil)
	}

	s.logger.DebugContext(ctx, "view selected",
		slog.String("view", view.View),
		slog.Duration("duration", time.Since(start)))

	return s.Send(events.ViewMessage{
		BaseMessage: s.base(events.MessageTypeView, ""),
		RequestID:   msg.ID,
		Data:        view,
	})
}

func (s *Session) sendError(ctx context.Context, requestID, view, code, message string, details interface{}) error {
	err := s.Send(events.ErrorMessage{
		BaseMessage: s.base(events.MessageTypeError, ""),
		RequestID:   requestID,
		Error: events.ErrorPayload{
			Code:    code,
			Message: message,
			View:    view,
			Details: details,
		},
	})
	if err != nil {
		s.logger.DebugContext(ctx, "error reply dropped", slog.String("code", code))
	}
	return err
}

func (s *Session) base(t events.MessageType, id string) events.BaseMessage {
	return events.BaseMessage{
		ID:        id,
		Type:      t,
		Timestamp: time.Now().UTC(),
		SessionID: s.id,
	}
}

// classify maps a view failure to an error code and a message that is safe
// to show in the page
func classify(err error) (code, message string) {
	switch {
	case errors.Is(err, services.ErrUnknownView):
		return CodeViewNotFound, err.Error()
	case apierrors.IsAggregationError(err):
		return CodeAggregationFailed, err.Error()
	case apierrors.IsDataLoadError(err):
		return CodeDataUnavailable, err.Error()
	default:
		return CodeInternal, "the view could not be computed"
	}
}

// WritePump drains the send queue and keeps the connection alive with pings
func (s *Session) WritePump() {
	ticker := time.NewTicker(s.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
		_ = s.conn.Close()
		s.logger.DebugContext(s.context(), "session write loop stopped",
			slog.Int64("messages_sent", s.messagesSent.Load()))
	}()

	for {
		select {
		case message := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.DebugContext(s.context(), "write failed", slog.String("error", err.Error()))
				return
			}
			s.messagesSent.Add(1)

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.DebugContext(s.context(), "ping failed", slog.String("error", err.Error()))
				return
			}

		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
