package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the directories used to resolve relative file locations.
// Relative dataset paths are looked up in the working directory first and
// then next to the executable.
type Paths struct {
	WorkingDir    string
	ExecutableDir string
	DataDir       string
	LogsDir       string
}

// GetPaths returns the application paths for the current process
func GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return NewPaths(wd, filepath.Dir(exe)), nil
}

// NewPaths builds Paths from explicit roots
func NewPaths(workingDir, executableDir string) *Paths {
	return &Paths{
		WorkingDir:    workingDir,
		ExecutableDir: executableDir,
		DataDir:       filepath.Join(workingDir, DefaultDataDir),
		LogsDir:       filepath.Join(workingDir, DefaultLogsDir),
	}
}

// Resolve returns an absolute path for p. Absolute paths are returned
// cleaned; relative ones resolve against the working directory when the file
// exists there, otherwise against the executable directory when it exists
// there, otherwise against the working directory.
func (p *Paths) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	fromWD := filepath.Join(p.WorkingDir, path)
	if FileExists(fromWD) {
		return fromWD
	}

	if p.ExecutableDir != "" {
		fromExe := filepath.Join(p.ExecutableDir, path)
		if FileExists(fromExe) {
			return fromExe
		}
	}

	return fromWD
}

// ResolveData rewrites the dataset and log paths of cfg in place
func (p *Paths) ResolveData(cfg *Config) {
	cfg.Data.DailyPath = p.Resolve(cfg.Data.DailyPath)
	cfg.Data.HourlyPath = p.Resolve(cfg.Data.HourlyPath)
	if cfg.Logging.FilePath != "" {
		cfg.Logging.FilePath = p.Resolve(cfg.Logging.FilePath)
	}
}

// EnsureDirectories creates the log directory when file logging is enabled
func (p *Paths) EnsureDirectories(cfg *Config) error {
	if cfg.Logging.Output != "file" && cfg.Logging.Output != "both" {
		return nil
	}

	dir := filepath.Dir(cfg.Logging.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ValidateRequiredFiles checks that both datasets exist
func (p *Paths) ValidateRequiredFiles(cfg *Config) error {
	requiredFiles := []struct {
		name string
		path string
	}{
		{"daily dataset", cfg.Data.DailyPath},
		{"hourly dataset", cfg.Data.HourlyPath},
	}

	var missingFiles []string
	for _, f := range requiredFiles {
		if !FileExists(f.path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", f.name, f.path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}

// LogPathResolution logs where the datasets were resolved to
func (p *Paths) LogPathResolution(logger *slog.Logger, cfg *Config) {
	logger.Info("path resolution summary",
		slog.Group("directories",
			slog.String("working", p.WorkingDir),
			slog.String("executable", p.ExecutableDir),
		),
		slog.Group("datasets",
			slog.String("daily", cfg.Data.DailyPath),
			slog.Bool("daily_exists", FileExists(cfg.Data.DailyPath)),
			slog.String("hourly", cfg.Data.HourlyPath),
			slog.Bool("hourly_exists", FileExists(cfg.Data.HourlyPath)),
		),
	)
}
