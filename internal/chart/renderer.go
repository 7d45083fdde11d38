package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"

	"bikerental/internal/aggregation"
	"bikerental/internal/config"
)

// ErrNothingToRender is returned for a result without rows.
var ErrNothingToRender = errors.New("nothing to render")

// ErrUnsupportedFormat is returned by ParseFormat for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported chart format")

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts png or svg. An empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the HTTP media type of f.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

func (f Format) provider() gochart.RendererProvider {
	if f == FormatSVG {
		return gochart.SVG
	}
	return gochart.PNG
}

const (
	titleFontSize = 16
	labelFontSize = 14
)

// Renderer draws aggregation results.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer using the configured image size.
func NewRenderer(cfg config.ChartConfig) *Renderer {
	width, height := cfg.Width, cfg.Height
	if width <= 0 {
		width = config.DefaultChartWidth
	}
	if height <= 0 {
		height = config.DefaultChartHeight
	}
	return &Renderer{width: width, height: height}
}

// Size returns the image dimensions in pixels.
func (r *Renderer) Size() (width, height int) {
	return r.width, r.height
}

// Render writes the chart for result to w.
func (r *Renderer) Render(w io.Writer, spec aggregation.ChartSpec, result *aggregation.Result, format Format) error {
	if result == nil || len(result.Rows) == 0 {
		return ErrNothingToRender
	}
	if format == "" {
		format = FormatPNG
	}

	var err error
	switch spec.Kind {
	case aggregation.ChartBar:
		err = r.renderBar(w, spec, result, format)
	case aggregation.ChartLine:
		err = r.renderLine(w, spec, result, format)
	default:
		return fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s chart: %w", spec.Kind, err)
	}
	return nil
}

func (r *Renderer) renderBar(w io.Writer, spec aggregation.ChartSpec, result *aggregation.Result, format Format) error {
	column := result.ValueColumns[0]
	if len(spec.Series) > 0 {
		column = spec.Series[0].Column
	}
	values := result.Values(column)
	if values == nil {
		return fmt.Errorf("result has no column %q", column)
	}

	colors := paletteColors(spec.Palette, len(values))
	bars := make([]gochart.Value, len(values))
	for i, v := range values {
		bars[i] = gochart.Value{
			Label: result.Rows[i].Key,
			Value: float64(v),
			Style: gochart.Style{
				FillColor:   colors[i],
				StrokeColor: colors[i],
				StrokeWidth: 1,
			},
		}
	}

	// leave room for the axis labels drawn by the elements
	slot := (r.width - 160) / len(bars)
	barWidth := slot * 6 / 10
	if barWidth < 1 {
		barWidth = 1
	}

	bc := gochart.BarChart{
		Title:      spec.Title,
		TitleStyle: gochart.Style{FontSize: titleFontSize},
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 60, Left: 50, Right: 20, Bottom: 60},
		},
		BarWidth:   barWidth,
		BarSpacing: slot - barWidth,
		XAxis:      gochart.Style{FontSize: 11},
		YAxis: gochart.YAxis{
			Range:          yRange(values),
			ValueFormatter: countFormatter,
		},
		Bars: bars,
		Elements: []gochart.Renderable{
			xLabel(spec.XLabel, 45),
			yLabel(spec.YLabel),
		},
	}

	return bc.Render(format.provider(), w)
}

func (r *Renderer) renderLine(w io.Writer, spec aggregation.ChartSpec, result *aggregation.Result, format Format) error {
	xs, ticks := xPositions(result.Keys())
	xr := xRange(xs)
	ticks = boundTicks(ticks, xr)

	seriesSpecs := spec.Series
	if len(seriesSpecs) == 0 {
		for _, col := range result.ValueColumns {
			seriesSpecs = append(seriesSpecs, aggregation.SeriesSpec{Column: col})
		}
	}

	var all []int64
	series := make([]gochart.Series, 0, len(seriesSpecs))
	for i, ss := range seriesSpecs {
		values := result.Values(ss.Column)
		if values == nil {
			return fmt.Errorf("result has no column %q", ss.Column)
		}
		all = append(all, values...)

		ys := make([]float64, len(values))
		for j, v := range values {
			ys[j] = float64(v)
		}

		color := seriesColor(i)
		style := gochart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
		}
		if spec.Markers {
			style.DotColor = color
			style.DotWidth = 4
		}

		name := ss.Label
		if name == "" {
			name = ss.Column
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	ch := gochart.Chart{
		Title:      spec.Title,
		TitleStyle: gochart.Style{FontSize: titleFontSize},
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 70, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:      spec.XLabel,
			NameStyle: gochart.Style{FontSize: labelFontSize},
			Ticks:     ticks,
			Range:     xr,
		},
		YAxis: gochart.YAxis{
			Name:           spec.YLabel,
			NameStyle:      gochart.Style{FontSize: labelFontSize},
			Range:          yRange(all),
			ValueFormatter: countFormatter,
		},
		Series: series,
	}

	if spec.LegendTitle != "" {
		ch.Elements = []gochart.Renderable{
			gochart.Legend(&ch),
			legendTitle(spec.LegendTitle),
		}
	}

	return ch.Render(format.provider(), w)
}

// xPositions places numeric keys at their value and other keys at their index.
func xPositions(keys []string) ([]float64, []gochart.Tick) {
	xs := make([]float64, len(keys))
	numeric := true
	for i, k := range keys {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			numeric = false
			break
		}
		xs[i] = f
	}
	if !numeric {
		for i := range xs {
			xs[i] = float64(i)
		}
	}

	ticks := make([]gochart.Tick, len(keys))
	for i, k := range keys {
		ticks[i] = gochart.Tick{Value: xs[i], Label: k}
	}
	return xs, ticks
}

// boundTicks adds unlabeled ticks at the range edges. go-chart takes the x
// range from the tick extent whenever ticks are set, so a single key would
// otherwise give a zero-width axis.
func boundTicks(ticks []gochart.Tick, r *gochart.ContinuousRange) []gochart.Tick {
	out := make([]gochart.Tick, 0, len(ticks)+2)
	out = append(out, gochart.Tick{Value: r.Min})
	out = append(out, ticks...)
	return append(out, gochart.Tick{Value: r.Max})
}

func xRange(xs []float64) *gochart.ContinuousRange {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// yRange starts at zero so bars and lines share a baseline.
func yRange(values []int64) *gochart.ContinuousRange {
	var hi int64
	for _, v := range values {
		if v > hi {
			hi = v
		}
	}
	upper := float64(hi) * 1.1
	if upper == 0 {
		upper = 1
	}
	return &gochart.ContinuousRange{Min: 0, Max: upper}
}

func countFormatter(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', 0, 64)
	case int:
		return strconv.Itoa(n)
	default:
		return fmt.Sprint(v)
	}
}
