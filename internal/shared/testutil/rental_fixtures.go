package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DailyHeader is the raw header of the cleaned daily rental export.
var DailyHeader = []string{
	"instant", "dteday", "season", "yr", "mnth", "holiday", "weekday",
	"workingday", "weathersit", "temp", "casual", "registered", "cnt",
}

// HourlyHeader is the raw header of the cleaned hourly rental export.
var HourlyHeader = []string{
	"instant", "dteday", "season", "yr", "mnth", "hr", "holiday", "weekday",
	"workingday", "weathersit", "temp", "casual", "registered", "cnt",
}

// DailyRecord is one raw row of the daily export.
type DailyRecord struct {
	Date       string
	Season     int
	Year       int
	Month      int
	Holiday    int
	Weekday    int
	Weather    int
	Casual     int
	Registered int
}

// HourlyRecord is one raw row of the hourly export.
type HourlyRecord struct {
	DailyRecord
	Hour int
}

// Total mirrors the cnt column.
func (r DailyRecord) Total() int {
	return r.Casual + r.Registered
}

func (r DailyRecord) fields(instant int) []string {
	return []string{
		fmt.Sprint(instant), r.Date, fmt.Sprint(r.Season), fmt.Sprint(r.Year),
		fmt.Sprint(r.Month), fmt.Sprint(r.Holiday), fmt.Sprint(r.Weekday),
		fmt.Sprint(workingDay(r)), fmt.Sprint(r.Weather), "0.34",
		fmt.Sprint(r.Casual), fmt.Sprint(r.Registered), fmt.Sprint(r.Total()),
	}
}

func workingDay(r DailyRecord) int {
	if r.Holiday == 1 || r.Weekday == 0 || r.Weekday == 6 {
		return 0
	}
	return 1
}

// SampleDaily returns a small two-year daily dataset covering every season
// and weekday.
func SampleDaily() []DailyRecord {
	return []DailyRecord{
		{Date: "2011-01-01", Season: 1, Year: 0, Month: 1, Weekday: 6, Weather: 2, Casual: 331, Registered: 654},
		{Date: "2011-01-02", Season: 1, Year: 0, Month: 1, Weekday: 0, Weather: 2, Casual: 131, Registered: 670},
		{Date: "2011-04-04", Season: 2, Year: 0, Month: 4, Weekday: 1, Weather: 1, Casual: 307, Registered: 1920},
		{Date: "2011-07-05", Season: 3, Year: 0, Month: 7, Weekday: 2, Weather: 1, Casual: 841, Registered: 3617},
		{Date: "2011-10-05", Season: 4, Year: 0, Month: 10, Weekday: 3, Weather: 1, Casual: 516, Registered: 3995},
		{Date: "2012-01-05", Season: 1, Year: 1, Month: 1, Weekday: 4, Weather: 1, Casual: 173, Registered: 3451},
		{Date: "2012-07-06", Season: 3, Year: 1, Month: 7, Weekday: 5, Weather: 1, Casual: 1421, Registered: 4764},
		{Date: "2012-12-25", Season: 1, Year: 1, Month: 12, Holiday: 1, Weekday: 2, Weather: 2, Casual: 440, Registered: 573},
	}
}

// SampleHourly returns a small hourly dataset spanning a few hours over two days.
func SampleHourly() []HourlyRecord {
	day := SampleDaily()
	return []HourlyRecord{
		{DailyRecord: with(day[0], 3, 13), Hour: 0},
		{DailyRecord: with(day[0], 8, 32), Hour: 1},
		{DailyRecord: with(day[0], 5, 27), Hour: 8},
		{DailyRecord: with(day[1], 4, 13), Hour: 0},
		{DailyRecord: with(day[1], 17, 86), Hour: 8},
		{DailyRecord: with(day[1], 30, 140), Hour: 17},
		{DailyRecord: with(day[2], 2, 6), Hour: 23},
	}
}

func with(r DailyRecord, casual, registered int) DailyRecord {
	r.Casual = casual
	r.Registered = registered
	return r
}

// WriteDailyCSV writes records as a daily export under dir and returns its path.
func WriteDailyCSV(t *testing.T, dir string, records []DailyRecord) string {
	t.Helper()

	rows := make([][]string, 0, len(records))
	for i, r := range records {
		rows = append(rows, r.fields(i+1))
	}
	return WriteCSV(t, filepath.Join(dir, "day_clean.csv"), DailyHeader, rows)
}

// WriteHourlyCSV writes records as an hourly export under dir and returns its path.
func WriteHourlyCSV(t *testing.T, dir string, records []HourlyRecord) string {
	t.Helper()

	rows := make([][]string, 0, len(records))
	for i, r := range records {
		base := r.DailyRecord.fields(i + 1)
		row := make([]string, 0, len(base)+1)
		row = append(row, base[:5]...)
		row = append(row, fmt.Sprint(r.Hour))
		row = append(row, base[5:]...)
		rows = append(rows, row)
	}
	return WriteCSV(t, filepath.Join(dir, "hour_clean.csv"), HourlyHeader, rows)
}

// WriteCSV writes an arbitrary comma separated file and fails the test on error.
func WriteCSV(t *testing.T, path string, header []string, rows [][]string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// WriteSampleDatasets writes SampleDaily and SampleHourly into dir.
func WriteSampleDatasets(t *testing.T, dir string) (dailyPath, hourlyPath string) {
	t.Helper()
	return WriteDailyCSV(t, dir, SampleDaily()), WriteHourlyCSV(t, dir, SampleHourly())
}
