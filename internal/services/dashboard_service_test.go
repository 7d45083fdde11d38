package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikerental/internal/chart"
	apperrors "bikerental/internal/errors"
	"bikerental/internal/shared/testutil"
	"bikerental/pkg/contracts/domain"
)

func TestDashboardService_LoadTables(t *testing.T) {
	svc, _, logs := newSampleService(t)

	require.NoError(t, svc.LoadTables(context.Background()))
	assert.True(t, logs.ContainsMessage("table ready"))

	stats := svc.CacheStats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(2), stats.Loads)

	statuses := svc.TableStatuses()
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Loaded)
	assert.Equal(t, len(testutil.SampleDaily()), statuses[0].Rows)
	assert.Equal(t, domain.TableKindHourly, statuses[1].Kind)
	assert.Equal(t, len(testutil.SampleHourly()), statuses[1].Rows)
}

func TestDashboardService_LoadTablesFailure(t *testing.T) {
	dir := t.TempDir()
	dailyPath := testutil.WriteDailyCSV(t, dir, testutil.SampleDaily())

	svc, _, _ := newServiceFor(t, Sources{Daily: dailyPath, Hourly: filepath.Join(dir, "missing.csv")})

	err := svc.LoadTables(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsDataLoadError(err))
	assert.Contains(t, err.Error(), "missing.csv")

	statuses := svc.TableStatuses()
	assert.True(t, statuses[0].Loaded)
	assert.False(t, statuses[1].Loaded)
	assert.NotEmpty(t, statuses[1].Error)
}

func TestDashboardService_Menu(t *testing.T) {
	svc, _, _ := newSampleService(t)

	menu := svc.Menu()
	require.Len(t, menu, 4)
	assert.Equal(t, "season", menu[0].Slug)
	assert.Equal(t, "Jumlah Penyewaan berdasarkan Hari dalam Minggu", menu[3].Title)
}

func TestDashboardService_GetView(t *testing.T) {
	svc, _, _ := newSampleService(t)
	mustLoad(t, svc)

	tests := []struct {
		name      string
		input     string
		wantView  string
		wantTable domain.TableKind
		wantKeys  []string
		wantTotal map[string]int64
	}{
		{
			name:      "season",
			input:     "season",
			wantView:  "season",
			wantTable: domain.TableKindDaily,
			wantKeys:  []string{"3", "1", "4", "2"},
			wantTotal: map[string]int64{domain.ColumnTotalRentals: 23804},
		},
		{
			name:      "year by title",
			input:     "Jumlah Penyewaan berdasarkan Tahun",
			wantView:  "year",
			wantTable: domain.TableKindDaily,
			wantKeys:  []string{"0", "1"},
			wantTotal: map[string]int64{
				domain.ColumnRegisteredRentals: 19644,
				domain.ColumnCasualRentals:     4160,
			},
		},
		{
			name:      "hour",
			input:     "hour",
			wantView:  "hour",
			wantTable: domain.TableKindHourly,
			wantKeys:  []string{"0", "1", "8", "17", "23"},
			wantTotal: map[string]int64{domain.ColumnTotalRentals: 386},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.GetView(context.Background(), tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantView, view.View)
			assert.Equal(t, tt.wantTable, view.Table)
			assert.Equal(t, tt.wantTotal, view.Totals)
			assert.Equal(t, "/api/views/"+tt.wantView+"/chart", view.ChartURL)
			assert.Equal(t, view.Title, view.Chart.Title)
			assert.False(t, view.ComputedAt.IsZero())

			keys := make([]string, len(view.Rows))
			for i, row := range view.Rows {
				keys[i] = row.Key
			}
			assert.Equal(t, tt.wantKeys, keys)
		})
	}

	// every interaction after startup is served from the cache
	assert.Equal(t, int64(2), svc.CacheStats().Loads)
}

func TestDashboardService_GetViewErrors(t *testing.T) {
	t.Run("unknown view", func(t *testing.T) {
		svc, _, _ := newSampleService(t)
		mustLoad(t, svc)

		_, err := svc.GetView(context.Background(), "month")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownView))
	})

	t.Run("missing column only fails its view", func(t *testing.T) {
		dir := t.TempDir()
		dailyPath := testutil.WriteDailyCSV(t, dir, testutil.SampleDaily())
		hourlyPath := testutil.WriteCSV(t, filepath.Join(dir, "hour_no_hr.csv"),
			[]string{"dteday", "cnt"}, [][]string{{"2011-01-01", "16"}})

		svc, _, _ := newServiceFor(t, Sources{Daily: dailyPath, Hourly: hourlyPath})
		mustLoad(t, svc)

		_, err := svc.GetView(context.Background(), "hour")
		require.Error(t, err)
		assert.True(t, apperrors.IsAggregationError(err))
		assert.Contains(t, err.Error(), domain.ColumnHour)

		view, err := svc.GetView(context.Background(), "weekday")
		require.NoError(t, err)
		assert.Len(t, view.Rows, 7)
	})
}

func TestDashboardService_RenderChart(t *testing.T) {
	svc, _, _ := newSampleService(t)
	mustLoad(t, svc)

	var png bytes.Buffer
	require.NoError(t, svc.RenderChart(context.Background(), "season", chart.FormatPNG, &png))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))

	var svg bytes.Buffer
	require.NoError(t, svc.RenderChart(context.Background(), "year", chart.FormatSVG, &svg))
	assert.Contains(t, svg.String(), "<svg")

	var none bytes.Buffer
	err := svc.RenderChart(context.Background(), "nope", chart.FormatPNG, &none)
	assert.True(t, errors.Is(err, ErrUnknownView))
	assert.Zero(t, none.Len())
}

func TestDashboardService_GetTable(t *testing.T) {
	svc, sources, _ := newSampleService(t)
	mustLoad(t, svc)
	ctx := context.Background()

	full, err := svc.GetTable(ctx, domain.TableKindDaily, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Data Penyewaan Harian", full.Title)
	assert.Equal(t, sources.Daily, full.Source)
	assert.Equal(t, len(testutil.SampleDaily()), full.Total)
	assert.Len(t, full.Rows, full.Total)
	assert.Contains(t, full.Columns, domain.ColumnTotalRentals)

	page, err := svc.GetTable(ctx, domain.TableKindHourly, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, "Data Penyewaan Per Jam", page.Title)
	assert.Len(t, page.Rows, 3)
	assert.Equal(t, 2, page.Offset)
	assert.Equal(t, 3, page.Limit)
	assert.Equal(t, len(testutil.SampleHourly()), page.Total)

	_, err = svc.GetTable(ctx, domain.TableKind("weekly"), 0, 0)
	assert.True(t, errors.Is(err, ErrUnknownTable))

	_, err = svc.GetTable(ctx, domain.TableKindDaily, -1, 0)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDashboardService_Reload(t *testing.T) {
	svc, sources, _ := newSampleService(t)
	mustLoad(t, svc)
	ctx := context.Background()

	t.Run("picks up new rows", func(t *testing.T) {
		extra := append(testutil.SampleDaily(), testutil.DailyRecord{
			Date: "2012-12-31", Season: 1, Year: 1, Month: 12, Weekday: 1, Weather: 1, Casual: 10, Registered: 20,
		})
		testutil.WriteDailyCSV(t, filepath.Dir(sources.Daily), extra)

		require.NoError(t, svc.Reload(ctx))

		view, err := svc.GetView(ctx, "season")
		require.NoError(t, err)
		assert.Equal(t, int64(23834), view.Totals[domain.ColumnTotalRentals])
	})

	t.Run("failure keeps serving previous tables", func(t *testing.T) {
		require.NoError(t, os.Remove(sources.Hourly))

		err := svc.Reload(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsDataLoadError(err))

		view, err := svc.GetView(ctx, "hour")
		require.NoError(t, err)
		assert.Equal(t, int64(386), view.Totals[domain.ColumnTotalRentals])
	})
}

func TestDashboardService_ReloadRecoversFailedLoad(t *testing.T) {
	dir := t.TempDir()
	sources := Sources{
		Daily:  testutil.WriteDailyCSV(t, dir, testutil.SampleDaily()),
		Hourly: filepath.Join(dir, "hour_clean.csv"),
	}
	svc, _, _ := newServiceFor(t, sources)
	ctx := context.Background()

	require.Error(t, svc.LoadTables(ctx))
	statuses := svc.TableStatuses()
	require.Len(t, statuses, 2)
	assert.NotEmpty(t, statuses[1].Error)

	testutil.WriteHourlyCSV(t, dir, testutil.SampleHourly())
	require.NoError(t, svc.Reload(ctx))

	statuses = svc.TableStatuses()
	assert.True(t, statuses[1].Loaded)
	assert.Empty(t, statuses[1].Error)
	assert.Equal(t, 7, statuses[1].Rows)

	view, err := svc.GetView(ctx, "hour")
	require.NoError(t, err)
	assert.Equal(t, int64(386), view.Totals[domain.ColumnTotalRentals])
}

func TestDashboardService_ReleaseTables(t *testing.T) {
	svc, _, _ := newSampleService(t)
	mustLoad(t, svc)
	ctx := context.Background()

	svc.ReleaseTables(ctx)

	assert.Equal(t, 0, svc.CacheStats().Entries)
	for _, s := range svc.TableStatuses() {
		assert.False(t, s.Loaded, s.Kind)
	}

	_, err := svc.GetView(ctx, "season")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.CacheStats().Entries)
}
