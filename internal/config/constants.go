package config

import "time"

// Application constants
const (
	// Application Info
	AppName     = "Bike Rental Dashboard"
	ServiceName = "bike-rental-dashboard"

	// Configuration sources
	EnvPrefix     = "BIKE"
	ConfigFileEnv = "BIKE_CONFIG_FILE"
	EnvFileName   = ".env"

	// Server
	DefaultPort           = 8080
	DefaultRequestTimeout = 30 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Datasets (relative to the working directory or the executable)
	DefaultDataDir    = "data"
	DefaultDailyPath  = "data/day_clean.csv"
	DefaultHourlyPath = "data/hour_clean.csv"

	// Charts, 10x6 inches at 100 dpi
	DefaultChartWidth  = 1000
	DefaultChartHeight = 600
	MinChartDimension  = 100

	// WebSocket
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketMaxMessageSize  = 4096

	// Log Settings
	DefaultLogLevel = "info"
	DefaultLogsDir  = "logs"
	DefaultLogFile  = "logs/dashboard.log"

	// Endpoints
	APIBasePath       = "/api"
	HealthEndpoint    = "/api/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
