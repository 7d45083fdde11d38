package chart

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikerental/internal/aggregation"
	"bikerental/internal/config"
	"bikerental/internal/dataset"
	"bikerental/pkg/contracts/domain"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleTables() (daily, hourly *dataset.Table) {
	daily = dataset.NewTable(domain.TableKindDaily, "day.csv", dataframe.LoadRecords([][]string{
		{domain.ColumnSeason, "yr", domain.ColumnWeekday, domain.ColumnCasualRentals, domain.ColumnRegisteredRentals, domain.ColumnTotalRentals},
		{"1", "0", "6", "331", "654", "985"},
		{"2", "0", "1", "307", "1920", "2227"},
		{"3", "1", "5", "1421", "4764", "6185"},
		{"4", "1", "3", "516", "3995", "4511"},
	}))
	hourly = dataset.NewTable(domain.TableKindHourly, "hour.csv", dataframe.LoadRecords([][]string{
		{domain.ColumnHour, domain.ColumnTotalRentals},
		{"0", "16"},
		{"1", "40"},
		{"8", "135"},
		{"17", "170"},
	}))
	return daily, hourly
}

func TestRenderer_AllViews(t *testing.T) {
	daily, hourly := sampleTables()
	renderer := NewRenderer(config.ChartConfig{Width: 800, Height: 480})

	for _, view := range aggregation.Views() {
		result, err := aggregation.Aggregate(view, daily, hourly)
		require.NoError(t, err)

		t.Run(view.Slug()+"/png", func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderer.Render(&buf, view.ChartSpec(), result, FormatPNG))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})

		t.Run(view.Slug()+"/svg", func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderer.Render(&buf, view.ChartSpec(), result, FormatSVG))
			assert.Contains(t, buf.String(), "<svg")
			assert.Contains(t, buf.String(), "Jumlah Penyewaan")
		})
	}
}

func TestRenderer_DefaultFormatIsPNG(t *testing.T) {
	daily, hourly := sampleTables()
	result, err := aggregation.Aggregate(aggregation.BySeasonTotal, daily, hourly)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(config.ChartConfig{}).Render(&buf, aggregation.BySeasonTotal.ChartSpec(), result, ""))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderer_SinglePoint(t *testing.T) {
	result := &aggregation.Result{
		View:         aggregation.ByHour,
		KeyColumn:    domain.ColumnHour,
		ValueColumns: []string{domain.ColumnTotalRentals},
		Rows:         []aggregation.Row{{Key: "8", Values: []int64{0}}},
	}

	var buf bytes.Buffer
	err := NewRenderer(config.ChartConfig{}).Render(&buf, aggregation.ByHour.ChartSpec(), result, FormatSVG)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderer_SingleYear(t *testing.T) {
	daily := dataset.NewTable(domain.TableKindDaily, "day.csv", dataframe.LoadRecords([][]string{
		{"yr", domain.ColumnCasualRentals, domain.ColumnRegisteredRentals},
		{"0", "10", "40"},
		{"0", "5", "20"},
	}))
	result, err := aggregation.Aggregate(aggregation.ByYear, daily, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	renderer := NewRenderer(config.ChartConfig{})
	for _, format := range []Format{FormatPNG, FormatSVG} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderer.Render(&buf, aggregation.ByYear.ChartSpec(), result, format))
			assert.NotZero(t, buf.Len())
		})
	}
}

func TestBoundTicks(t *testing.T) {
	xs, ticks := xPositions([]string{"8"})
	r := xRange(xs)

	bounded := boundTicks(ticks, r)

	require.Len(t, bounded, 3)
	assert.Equal(t, 7.5, bounded[0].Value)
	assert.Equal(t, "8", bounded[1].Label)
	assert.Equal(t, 8.5, bounded[2].Value)
	assert.Empty(t, bounded[2].Label)
}

func TestRenderer_Errors(t *testing.T) {
	renderer := NewRenderer(config.ChartConfig{})
	spec := aggregation.BySeasonTotal.ChartSpec()

	var buf bytes.Buffer
	assert.True(t, errors.Is(renderer.Render(&buf, spec, nil, FormatPNG), ErrNothingToRender))
	assert.True(t, errors.Is(renderer.Render(&buf, spec, &aggregation.Result{
		ValueColumns: []string{domain.ColumnTotalRentals},
	}, FormatPNG), ErrNothingToRender))

	result := &aggregation.Result{
		ValueColumns: []string{domain.ColumnTotalRentals},
		Rows:         []aggregation.Row{{Key: "1", Values: []int64{5}}},
	}
	assert.Error(t, renderer.Render(&buf, aggregation.ChartSpec{Kind: "pie"}, result, FormatPNG))

	wrongColumn := spec
	wrongColumn.Series = []aggregation.SeriesSpec{{Column: "missing"}}
	assert.Error(t, renderer.Render(&buf, wrongColumn, result, FormatPNG))
}

func TestNewRenderer_Size(t *testing.T) {
	w, h := NewRenderer(config.ChartConfig{}).Size()
	assert.Equal(t, config.DefaultChartWidth, w)
	assert.Equal(t, config.DefaultChartHeight, h)

	w, h = NewRenderer(config.ChartConfig{Width: 640, Height: 320}).Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 320, h)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"png", FormatPNG, false},
		{"SVG", FormatSVG, false},
		{" svg ", FormatSVG, false},
		{"jpeg", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
}

func TestPaletteColors(t *testing.T) {
	viridis := paletteColors("viridis", 4)
	require.Len(t, viridis, 4)
	assert.NotEqual(t, viridis[0], viridis[3])
	assert.Equal(t, palettes["viridis"][1], viridis[0])
	assert.Equal(t, palettes["viridis"][len(palettes["viridis"])-2], viridis[3])

	single := paletteColors("magma", 1)
	assert.Equal(t, palettes["magma"][1], single[0])

	unknown := paletteColors("plasma", 2)
	assert.Equal(t, seriesColors[0], unknown[0])

	assert.Empty(t, paletteColors("viridis", 0))
}

func TestXPositions(t *testing.T) {
	xs, ticks := xPositions([]string{"0", "8", "17"})
	assert.Equal(t, []float64{0, 8, 17}, xs)
	assert.Equal(t, "17", ticks[2].Label)

	xs, ticks = xPositions([]string{"Mon", "Tue"})
	assert.Equal(t, []float64{0, 1}, xs)
	assert.Equal(t, "Tue", ticks[1].Label)
}
