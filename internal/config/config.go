package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apierrors "bikerental/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Chart     ChartConfig     `yaml:"chart" envconfig:"CHART"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DataConfig locates the two rental datasets
type DataConfig struct {
	DailyPath   string `yaml:"daily_path" envconfig:"DAILY_PATH"`
	HourlyPath  string `yaml:"hourly_path" envconfig:"HOURLY_PATH"`
	Delimiter   string `yaml:"delimiter" envconfig:"DELIMITER"`
	DetectTypes bool   `yaml:"detect_types" envconfig:"DETECT_TYPES"`
}

// ChartConfig contains chart rendering configuration
type ChartConfig struct {
	Width         int    `yaml:"width" envconfig:"WIDTH"`
	Height        int    `yaml:"height" envconfig:"HEIGHT"`
	DefaultFormat string `yaml:"default_format" envconfig:"DEFAULT_FORMAT"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE"`
	WriteWait       time.Duration `yaml:"write_wait" envconfig:"WRITE_WAIT"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and BIKE_* environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()

	// Load from config file if exists
	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apierrors.NewConfigError("failed to load config from file "+configFile, err)
		}
	}

	if err := loadDotEnv(EnvFileName); err != nil {
		return nil, apierrors.NewConfigError("failed to load "+EnvFileName, err)
	}

	// Environment variables take precedence over the file
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apierrors.NewConfigError("failed to load config from env", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, apierrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadDotEnv exports variables from path without overriding the real
// environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// normalize applies the fixed logging format and lower-cases enums
func (c *Config) normalize() {
	// Always JSON
	c.Logging.Format = "json"

	if c.Logging.Output == "" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Chart.DefaultFormat = strings.ToLower(c.Chart.DefaultFormat)
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("server read timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("server write timeout must be positive"))
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one allowed origin must be specified when CORS is enabled"))
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		result = multierror.Append(result, fmt.Errorf("rate limit rps and burst must be positive"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid log level: %q", c.Logging.Level))
	}
	switch c.Logging.Output {
	case "console", "stdout", "file", "both":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid log output: %q", c.Logging.Output))
	}

	if c.Data.DailyPath == "" {
		result = multierror.Append(result, fmt.Errorf("daily dataset path is required"))
	}
	if c.Data.HourlyPath == "" {
		result = multierror.Append(result, fmt.Errorf("hourly dataset path is required"))
	}
	if len([]rune(c.Data.Delimiter)) != 1 {
		result = multierror.Append(result, fmt.Errorf("delimiter must be a single character, got %q", c.Data.Delimiter))
	}

	if c.Chart.Width < MinChartDimension || c.Chart.Height < MinChartDimension {
		result = multierror.Append(result, fmt.Errorf("chart size must be at least %dx%d", MinChartDimension, MinChartDimension))
	}
	if c.Chart.DefaultFormat != "png" && c.Chart.DefaultFormat != "svg" {
		result = multierror.Append(result, fmt.Errorf("invalid chart format: %q", c.Chart.DefaultFormat))
	}

	if c.WebSocket.PingPeriod >= c.WebSocket.PongWait {
		result = multierror.Append(result, fmt.Errorf("websocket ping period must be shorter than pong wait"))
	}

	switch c.Telemetry.TraceExporter {
	case "", "none", "stdout":
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported trace exporter: %q", c.Telemetry.TraceExporter))
	}

	return result.ErrorOrNil()
}

// DelimiterRune returns the configured field separator as a rune
func (d DataConfig) DelimiterRune() rune {
	r := []rune(d.Delimiter)
	if len(r) != 1 {
		return ','
	}
	return r[0]
}

// Address returns the listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            DefaultPort,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Data: DataConfig{
			DailyPath:   DefaultDailyPath,
			HourlyPath:  DefaultHourlyPath,
			Delimiter:   ",",
			DetectTypes: true,
		},
		Chart: ChartConfig{
			Width:         DefaultChartWidth,
			Height:        DefaultChartHeight,
			DefaultFormat: "png",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  WebSocketReadBufferSize,
			WriteBufferSize: WebSocketWriteBufferSize,
			MaxMessageSize:  WebSocketMaxMessageSize,
			WriteWait:       10 * time.Second,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    ServiceName,
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
	}
}
