package websocket

import (
	"context"
	"time"

	"bikerental/pkg/contracts/domain"
)

// Connection is the part of *websocket.Conn a session uses. It allows the
// session loops to be tested without a network.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// ViewProvider answers the interactions of a session
type ViewProvider interface {
	Menu() []domain.MenuItem
	GetView(ctx context.Context, name string) (*domain.ViewResponse, error)
}
