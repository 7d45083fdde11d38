package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"bikerental/internal/infrastructure"
	"bikerental/pkg/contracts/domain"
	"bikerental/pkg/contracts/events"
)

// Hub tracks the open sessions. Sessions never talk to each other; the hub
// only counts them, fans out server notices and closes them on shutdown.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]struct{}
	stopped  bool

	totalSessions int64

	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger
}

// NewHub creates an empty hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		sessions: make(map[*Session]struct{}),
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "websocket.hub")),
	}
}

// Register adds a session. A stopped hub closes the session immediately.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		s.close()
		return
	}
	h.sessions[s] = struct{}{}
	h.totalSessions++
	count := len(h.sessions)
	h.mu.Unlock()

	ctx := s.context()
	if h.metrics != nil {
		h.metrics.WebSocketSessions.Add(ctx, 1)
	}
	h.logger.InfoContext(ctx, "session registered",
		slog.String("session_id", s.id),
		slog.String("remote_addr", s.remoteAddr),
		slog.Int("active_sessions", count))
}

// Unregister removes and closes a session. Calling it twice is harmless.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	delete(h.sessions, s)
	count := len(h.sessions)
	h.mu.Unlock()

	s.close()
	if !ok {
		return
	}

	ctx := s.context()
	if h.metrics != nil {
		h.metrics.WebSocketSessions.Add(ctx, -1)
	}
	h.logger.InfoContext(ctx, "session unregistered",
		slog.String("session_id", s.id),
		slog.Duration("duration", time.Since(s.connectedAt)),
		slog.Int("active_sessions", count))
}

// SessionCount returns the number of open sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Broadcast queues v on every session without blocking. Sessions whose
// buffer is full miss the message. It returns how many sessions got it.
func (h *Hub) Broadcast(v interface{}) int {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to marshal broadcast", slog.String("error", err.Error()))
		return 0
	}

	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range sessions {
		if s.trySend(data) {
			delivered++
			continue
		}
		h.logger.WarnContext(s.context(), "session buffer full, broadcast dropped",
			slog.String("session_id", s.id))
	}

	h.logger.Debug("broadcast sent",
		slog.Int("sessions", len(sessions)),
		slog.Int("delivered", delivered),
		slog.Int("size", len(data)))
	return delivered
}

// NotifyTablesReloaded tells every session that the tables changed
func (h *Hub) NotifyTablesReloaded(ctx context.Context, tables []domain.TableStatus) {
	msg := events.TablesReloadedMessage{
		BaseMessage: events.BaseMessage{
			Type:      events.MessageTypeTablesReloaded,
			Timestamp: time.Now().UTC(),
		},
		Data: tables,
	}
	delivered := h.Broadcast(msg)
	h.logger.InfoContext(ctx, "reload notice broadcast", slog.Int("sessions", delivered))
}

// Stop closes every session and refuses new ones
func (h *Hub) Stop() {
	h.mu.Lock()
	h.stopped = true
	total := h.totalSessions
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		h.Unregister(s)
	}
	h.logger.Info("hub stopped",
		slog.Int("closed_sessions", len(sessions)),
		slog.Int64("total_sessions", total))
}
