package aggregation

import (
	"bikerental/pkg/contracts/domain"
)

// ChartKind selects bar or line rendering.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

const rentalsLabel = "Jumlah Penyewaan"

// SeriesSpec names one plotted value column.
type SeriesSpec struct {
	Column string
	Label  string
}

// ChartSpec is the presentation metadata of a view. It never carries data.
type ChartSpec struct {
	Kind        ChartKind
	Title       string
	XLabel      string
	YLabel      string
	LegendTitle string
	Series      []SeriesSpec
	Markers     bool
	Palette     string
}

// ChartSpec returns the chart metadata attached to v.
func (v ViewKind) ChartSpec() ChartSpec {
	switch v {
	case BySeasonTotal:
		return ChartSpec{
			Kind:    ChartBar,
			Title:   "Jumlah Penyewaan berdasarkan Musim",
			XLabel:  "Kategori Musim",
			YLabel:  rentalsLabel,
			Series:  []SeriesSpec{{Column: domain.ColumnTotalRentals}},
			Palette: "viridis",
		}
	case ByYear:
		return ChartSpec{
			Kind:        ChartLine,
			Title:       "Jumlah Penyewaan berdasarkan Tahun",
			XLabel:      "Tahun",
			YLabel:      rentalsLabel,
			LegendTitle: "Jenis Penyewaan",
			Series: []SeriesSpec{
				{Column: domain.ColumnRegisteredRentals, Label: "Registered Rentals"},
				{Column: domain.ColumnCasualRentals, Label: "Casual Rentals"},
			},
			Markers: true,
		}
	case ByHour:
		return ChartSpec{
			Kind:    ChartLine,
			Title:   "Jumlah Penyewaan berdasarkan Jam",
			XLabel:  "Jam",
			YLabel:  rentalsLabel,
			Series:  []SeriesSpec{{Column: domain.ColumnTotalRentals}},
			Markers: true,
		}
	case ByWeekday:
		return ChartSpec{
			Kind:    ChartBar,
			Title:   "Jumlah Penyewaan berdasarkan Hari dalam Minggu",
			XLabel:  "Hari dalam Minggu",
			YLabel:  rentalsLabel,
			Series:  []SeriesSpec{{Column: domain.ColumnTotalRentals}},
			Palette: "magma",
		}
	default:
		return ChartSpec{}
	}
}

// Columns returns the value columns in series order.
func (s ChartSpec) Columns() []string {
	cols := make([]string, 0, len(s.Series))
	for _, series := range s.Series {
		cols = append(cols, series.Column)
	}
	return cols
}

// Meta converts the spec to its wire form.
func (s ChartSpec) Meta() domain.ChartMeta {
	series := make([]domain.SeriesMeta, 0, len(s.Series))
	for _, ss := range s.Series {
		series = append(series, domain.SeriesMeta{Column: ss.Column, Label: ss.Label})
	}
	return domain.ChartMeta{
		Kind:        string(s.Kind),
		Title:       s.Title,
		XLabel:      s.XLabel,
		YLabel:      s.YLabel,
		LegendTitle: s.LegendTitle,
		Series:      series,
		Markers:     s.Markers,
		Palette:     s.Palette,
	}
}
