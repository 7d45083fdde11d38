package domain

import (
	"time"
)

// Renamed column vocabulary shared by the loader, the aggregations and the
// presentation layers.
const (
	ColumnDate              = "date"
	ColumnSeason            = "season_category"
	ColumnYear              = "yr"
	ColumnMonth             = "month"
	ColumnHour              = "hour"
	ColumnHoliday           = "is_holiday"
	ColumnWeekday           = "weekday_category"
	ColumnWeather           = "weather_situation"
	ColumnCasualRentals     = "casual_rentals"
	ColumnRegisteredRentals = "registered_rentals"
	ColumnTotalRentals      = "total_rentals"
)

// TableKind identifies one of the two rental datasets
type TableKind string

const (
	TableKindDaily  TableKind = "daily"
	TableKindHourly TableKind = "hourly"
)

// Valid reports whether k names a known dataset
func (k TableKind) Valid() bool {
	return k == TableKindDaily || k == TableKindHourly
}

// Title returns the dashboard header for the table
func (k TableKind) Title() string {
	switch k {
	case TableKindDaily:
		return "Data Penyewaan Harian"
	case TableKindHourly:
		return "Data Penyewaan Per Jam"
	default:
		return string(k)
	}
}

// MenuItem is one entry of the view selector
type MenuItem struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// AggregateRow is one group of an aggregate view
type AggregateRow struct {
	Key    string           `json:"key"`
	Values map[string]int64 `json:"values"`
}

// SeriesMeta describes one plotted series
type SeriesMeta struct {
	Column string `json:"column"`
	Label  string `json:"label,omitempty"`
}

// ChartMeta carries presentation metadata for a view
type ChartMeta struct {
	Kind        string       `json:"kind"`
	Title       string       `json:"title"`
	XLabel      string       `json:"x_label"`
	YLabel      string       `json:"y_label"`
	LegendTitle string       `json:"legend_title,omitempty"`
	Series      []SeriesMeta `json:"series"`
	Markers     bool         `json:"markers"`
	Palette     string       `json:"palette,omitempty"`
}

// ViewResponse is the computed result of one selected view
type ViewResponse struct {
	View         string           `json:"view"`
	Title        string           `json:"title"`
	Table        TableKind        `json:"table"`
	KeyColumn    string           `json:"key_column"`
	ValueColumns []string         `json:"value_columns"`
	Rows         []AggregateRow   `json:"rows"`
	Totals       map[string]int64 `json:"totals"`
	Chart        ChartMeta        `json:"chart"`
	ChartURL     string           `json:"chart_url,omitempty"`
	ComputedAt   time.Time        `json:"computed_at"`
}

// TablePage is a window over one loaded dataset
type TablePage struct {
	Kind    TableKind  `json:"kind"`
	Title   string     `json:"title"`
	Source  string     `json:"source"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Offset  int        `json:"offset"`
	Limit   int        `json:"limit"`
	Total   int        `json:"total"`
}

// TableStatus summarizes a dataset for health reporting
type TableStatus struct {
	Kind     TableKind `json:"kind"`
	Source   string    `json:"source"`
	Loaded   bool      `json:"loaded"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// CacheStats reports table cache activity
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Loads   int64 `json:"loads"`
}
