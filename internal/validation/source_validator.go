// Package validation checks dataset sources before they are parsed.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrSourceMissing     = errors.New("source does not exist")
	ErrSourceNotFile     = errors.New("source is not a regular file")
	ErrSourceEmpty       = errors.New("source is empty")
	ErrSourceUnsupported = errors.New("unsupported source format")
)

// SourceFormat is how a dataset file is parsed.
type SourceFormat int

const (
	FormatDelimited SourceFormat = iota
	FormatWorkbook
)

func (f SourceFormat) String() string {
	if f == FormatWorkbook {
		return "workbook"
	}
	return "delimited"
}

// FormatOf classifies path by extension. Anything that is not a workbook is
// read as delimited text.
func FormatOf(path string) SourceFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatWorkbook
	default:
		return FormatDelimited
	}
}

// SourceValidator checks that a dataset file can be handed to the parser.
type SourceValidator struct {
	logger *slog.Logger
}

// NewSourceValidator creates a validator
func NewSourceValidator(logger *slog.Logger) *SourceValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceValidator{logger: logger}
}

// ValidateSource checks that path is an existing, readable, non-empty file in
// a format the loader understands, and returns that format.
func (v *SourceValidator) ValidateSource(path string) (SourceFormat, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Warn("Dataset source does not exist",
			slog.String("source", path))
		return 0, fmt.Errorf("%w: %s", ErrSourceMissing, path)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s", ErrSourceNotFile, path)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrSourceEmpty, path)
	}

	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case strings.HasPrefix(base, "~$"):
		// Office lock file left next to an open workbook
		return 0, fmt.Errorf("%w: %s is a temporary Excel file", ErrSourceUnsupported, path)
	case ext == ".xls":
		return 0, fmt.Errorf("%w: legacy .xls workbook %s, save it as .xlsx", ErrSourceUnsupported, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%s is not readable: %w", path, err)
	}
	file.Close()

	format := FormatOf(path)
	v.logger.Debug("Dataset source validated",
		slog.String("source", path),
		slog.String("format", format.String()),
		slog.Int64("size", info.Size()))
	return format, nil
}
