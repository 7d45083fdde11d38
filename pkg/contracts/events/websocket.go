// Package events contains the message contracts of the dashboard's WebSocket
// session.
package events

import (
	"time"

	"bikerental/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Server to client
	MessageTypeMenu  MessageType = "menu"
	MessageTypeView  MessageType = "view"
	MessageTypeError MessageType = "error"

	// MessageTypeTablesReloaded is broadcast to every session after a reload
	MessageTypeTablesReloaded MessageType = "tables_reloaded"

	// Client to server
	MessageTypeSelectView MessageType = "select_view"
	MessageTypePing       MessageType = "ping"
	MessageTypePong       MessageType = "pong"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"session_id,omitempty"`
}

// ClientMessage is any message sent by the browser
type ClientMessage struct {
	ID   string      `json:"id,omitempty"`
	Type MessageType `json:"type"`
	View string      `json:"view,omitempty"`
}

// MenuMessage lists the selectable views, sent once on connect
type MenuMessage struct {
	BaseMessage
	Data struct {
		Title   string            `json:"title"`
		Header  string            `json:"header"`
		Prompt  string            `json:"prompt"`
		Items   []domain.MenuItem `json:"items"`
		Default string            `json:"default"`
	} `json:"data"`
}

// ViewMessage answers a select_view request
type ViewMessage struct {
	BaseMessage
	RequestID string               `json:"request_id,omitempty"`
	Data      *domain.ViewResponse `json:"data"`
}

// ErrorPayload describes a failed interaction
type ErrorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	View    string      `json:"view,omitempty"`
	Details interface{} `json:"details,omitempty"`
	Fatal   bool        `json:"fatal"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	BaseMessage
	RequestID string       `json:"request_id,omitempty"`
	Error     ErrorPayload `json:"error"`
}

// TablesReloadedMessage tells open sessions that the tables were read again
// and the selected view should be requested anew.
type TablesReloadedMessage struct {
	BaseMessage
	Data []domain.TableStatus `json:"data"`
}
