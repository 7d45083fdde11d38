package services

import (
	"errors"

	"bikerental/internal/aggregation"
)

// Dashboard service errors
var (
	// View errors
	ErrUnknownView = aggregation.ErrUnknownView

	// Table errors
	ErrUnknownTable = errors.New("unknown table")

	// WebSocket errors
	ErrWebSocketClosed = errors.New("websocket connection closed")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
