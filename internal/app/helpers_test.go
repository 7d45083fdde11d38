package app

import (
	"log/slog"

	"bikerental/internal/shared/testutil"
)

func slogFrom(h *testutil.BufferedSlogHandler) *slog.Logger {
	return slog.New(h)
}
