package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"bikerental/pkg/contracts"
	"bikerental/pkg/contracts/domain"
)

// TableReporter exposes dataset state without triggering loads.
type TableReporter interface {
	TableStatuses() []domain.TableStatus
	CacheStats() domain.CacheStats
}

// SessionCounter reports open WebSocket sessions.
type SessionCounter interface {
	SessionCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	repoURL   string
	buildTime string
	buildID   string
	tables    TableReporter
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds     float64              `json:"uptime_seconds"`
	Tables            []domain.TableStatus `json:"tables"`
	Cache             domain.CacheStats    `json:"cache"`
	WebSocketSessions int                  `json:"websocket_sessions"`
	GoVersion         string               `json:"go_version"`
	OS                string               `json:"os"`
	Arch              string               `json:"arch"`
}

// NewHealthService creates a health service. sessions may be nil.
func NewHealthService(version, repoURL string, tables TableReporter, sessions SessionCounter, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, repoURL, "", "", tables, sessions, logger)
}

// NewHealthServiceWithBuildInfo creates a health service with build information
func NewHealthServiceWithBuildInfo(version, repoURL, buildTime, buildID string, tables TableReporter, sessions SessionCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:   version,
		repoURL:   repoURL,
		buildTime: buildTime,
		buildID:   buildID,
		tables:    tables,
		sessions:  sessions,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck is ready once both tables are loaded without error.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	for _, ts := range hs.tableStatuses() {
		status.Services["table_"+string(ts.Kind)] = checkTableHealth(ts)
	}
	status.Services["websocket"] = hs.checkWebSocketHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"api_version":  contracts.APIVersion,
		"data_format":  contracts.DataFormatVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"repo_url":     hs.repoURL,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// SystemStats returns dataset and runtime statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Tables:        hs.tableStatuses(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.tables != nil {
		stats.Cache = hs.tables.CacheStats()
	}
	if hs.sessions != nil {
		stats.WebSocketSessions = hs.sessions.SessionCount()
	}
	return stats
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     hs.SystemStats(ctx),
	}
}

func (hs *HealthService) tableStatuses() []domain.TableStatus {
	if hs.tables == nil {
		return []domain.TableStatus{
			{Kind: domain.TableKindDaily},
			{Kind: domain.TableKindHourly},
		}
	}
	return hs.tables.TableStatuses()
}

func checkTableHealth(ts domain.TableStatus) ServiceHealth {
	switch {
	case ts.Error != "":
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("%s table failed to load: %s", ts.Kind, ts.Error)}
	case !ts.Loaded:
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("%s table not loaded", ts.Kind)}
	default:
		return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%d rows from %s", ts.Rows, ts.Source)}
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	return ServiceHealth{
		Status:  "ready",
		Message: "WebSocket service is healthy",
		Uptime:  time.Since(hs.startTime).String(),
	}
}
