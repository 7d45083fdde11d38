package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bikerental/internal/config"
	apperrors "bikerental/internal/errors"
	"bikerental/internal/infrastructure"
	"bikerental/internal/validation"
	"bikerental/pkg/contracts/domain"
)

// TableLoader reads one source into a Table.
type TableLoader interface {
	Load(ctx context.Context, kind domain.TableKind, source string) (*Table, error)
}

// Loader reads rental exports from disk.
type Loader struct {
	delimiter   rune
	detectTypes bool
	sources     *validation.SourceValidator
	logger      *slog.Logger
	metrics     *infrastructure.DashboardMetrics
	tracer      trace.Tracer
}

// NewLoader creates a loader using the data section of the configuration.
// metrics may be nil.
func NewLoader(cfg config.DataConfig, logger *slog.Logger, metrics *infrastructure.DashboardMetrics) *Loader {
	return &Loader{
		delimiter:   cfg.DelimiterRune(),
		detectTypes: cfg.DetectTypes,
		sources:     validation.NewSourceValidator(logger),
		logger:      infrastructure.WithComponent(logger, "dataset_loader"),
		metrics:     metrics,
		tracer:      otel.Tracer(infrastructure.MeterName),
	}
}

// Load reads source and renames its columns for kind. Any failure yields a
// DATA_LOAD error and no table.
func (l *Loader) Load(ctx context.Context, kind domain.TableKind, source string) (*Table, error) {
	ctx, span := l.tracer.Start(ctx, "dataset.load", trace.WithAttributes(
		attribute.String("dataset.kind", string(kind)),
		attribute.String("dataset.source", source),
	))
	defer span.End()

	start := time.Now()

	frame, err := l.read(source)
	if err == nil {
		frame, err = renameColumns(frame, kind)
	}
	if err != nil {
		l.metrics.RecordDatasetLoad(ctx, string(kind), 0, time.Since(start), err)
		infrastructure.RecordError(ctx, err)
		l.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("kind", string(kind)),
			slog.String("source", source),
			slog.String("error", err.Error()))

		return nil, apperrors.NewDataLoadError(
			fmt.Sprintf("failed to load %s data from %s", kind, source), err).
			WithContext("kind", string(kind)).
			WithContext("source", source)
	}

	table := NewTable(kind, source, frame)
	elapsed := time.Since(start)
	l.metrics.RecordDatasetLoad(ctx, string(kind), table.Nrow(), elapsed, nil)

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("kind", string(kind)),
		slog.String("source", source),
		slog.Int("rows", table.Nrow()),
		slog.Int("columns", table.Ncol()),
		slog.Duration("duration", elapsed))

	return table, nil
}

func (l *Loader) read(source string) (dataframe.DataFrame, error) {
	format, err := l.sources.ValidateSource(source)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	var frame dataframe.DataFrame
	switch format {
	case validation.FormatWorkbook:
		frame, err = l.readWorkbook(source)
	default:
		frame, err = l.readDelimited(source)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if frame.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("parse %s: %w", source, frame.Err)
	}
	if frame.Ncol() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("parse %s: no columns", source)
	}
	return frame, nil
}

func (l *Loader) readDelimited(source string) (dataframe.DataFrame, error) {
	f, err := os.Open(source)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()

	return dataframe.ReadCSV(skipBOM(f),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(l.detectTypes),
		dataframe.WithDelimiter(l.delimiter),
	), nil
}

// skipBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// put in front of the first header.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(3); err == nil && string(head) == "\ufeff" {
		_, _ = br.Discard(3)
	}
	return br
}

// readWorkbook reads the first sheet; the first row is the header.
func (l *Loader) readWorkbook(source string) (dataframe.DataFrame, error) {
	f, err := excelize.OpenFile(source)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("workbook %s has no sheets", source)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	// excelize trims trailing empty cells
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}

	return dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(l.detectTypes),
	), nil
}

// renameColumns applies the mapping for kind to the columns that exist.
func renameColumns(frame dataframe.DataFrame, kind domain.TableKind) (dataframe.DataFrame, error) {
	present := make(map[string]bool, frame.Ncol())
	for _, name := range frame.Names() {
		present[name] = true
	}

	for _, r := range renamesFor(kind) {
		if !present[r.from] {
			continue
		}
		frame = frame.Rename(r.to, r.from)
		if frame.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("rename %s: %w", r.from, frame.Err)
		}
	}
	return frame, nil
}
