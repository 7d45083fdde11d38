package aggregation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"bikerental/internal/dataset"
	apperrors "bikerental/internal/errors"
	"bikerental/pkg/contracts/domain"
)

// Row is one group: its key and one sum per value column.
type Row struct {
	Key    string
	Values []int64
}

// Result is the grouped output of one view.
type Result struct {
	View         ViewKind
	Table        domain.TableKind
	KeyColumn    string
	ValueColumns []string
	Rows         []Row
}

// Totals sums every value column over all rows.
func (r *Result) Totals() map[string]int64 {
	totals := make(map[string]int64, len(r.ValueColumns))
	for i, col := range r.ValueColumns {
		var sum int64
		for _, row := range r.Rows {
			sum += row.Values[i]
		}
		totals[col] = sum
	}
	return totals
}

// Keys returns the group keys in result order.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.Rows))
	for i, row := range r.Rows {
		keys[i] = row.Key
	}
	return keys
}

// Values returns one column of sums in result order.
func (r *Result) Values(column string) []int64 {
	for i, col := range r.ValueColumns {
		if col != column {
			continue
		}
		out := make([]int64, len(r.Rows))
		for j, row := range r.Rows {
			out[j] = row.Values[i]
		}
		return out
	}
	return nil
}

// AggregateRows converts the rows to their wire form.
func (r *Result) AggregateRows() []domain.AggregateRow {
	out := make([]domain.AggregateRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		values := make(map[string]int64, len(r.ValueColumns))
		for i, col := range r.ValueColumns {
			values[col] = row.Values[i]
		}
		out = append(out, domain.AggregateRow{Key: row.Key, Values: values})
	}
	return out
}

type ordering int

const (
	byKey ordering = iota
	bySumDesc
)

type plan struct {
	table  domain.TableKind
	key    string
	values []string
	order  ordering
}

func planFor(v ViewKind) (plan, bool) {
	switch v {
	case BySeasonTotal:
		return plan{
			table:  domain.TableKindDaily,
			key:    domain.ColumnSeason,
			values: []string{domain.ColumnTotalRentals},
			order:  bySumDesc,
		}, true
	case ByYear:
		return plan{
			table:  domain.TableKindDaily,
			key:    domain.ColumnYear,
			values: []string{domain.ColumnRegisteredRentals, domain.ColumnCasualRentals},
		}, true
	case ByHour:
		return plan{
			table:  domain.TableKindHourly,
			key:    domain.ColumnHour,
			values: []string{domain.ColumnTotalRentals},
		}, true
	case ByWeekday:
		return plan{
			table:  domain.TableKindDaily,
			key:    domain.ColumnWeekday,
			values: []string{domain.ColumnTotalRentals},
		}, true
	default:
		return plan{}, false
	}
}

// Aggregate computes view over the loaded tables. Only the table the view
// reads has to be non-nil.
func Aggregate(view ViewKind, daily, hourly *dataset.Table) (*Result, error) {
	p, ok := planFor(view)
	if !ok {
		return nil, apperrors.NewAggregationError(fmt.Sprintf("unsupported view %s", view), ErrUnknownView)
	}

	table := daily
	if p.table == domain.TableKindHourly {
		table = hourly
	}
	if table == nil {
		return nil, viewError(view, fmt.Sprintf("%s table is not loaded", p.table), nil)
	}

	rows, err := groupSum(view, table, p.key, p.values)
	if err != nil {
		return nil, err
	}

	sortRows(rows)
	if p.order == bySumDesc {
		// stable, so equal sums keep ascending key order
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Values[0] > rows[j].Values[0]
		})
	}

	return &Result{
		View:         view,
		Table:        p.table,
		KeyColumn:    p.key,
		ValueColumns: append([]string(nil), p.values...),
		Rows:         rows,
	}, nil
}

// accumulator keeps integer cells exact and rounds float cells once.
type accumulator struct {
	ints   int64
	floats float64
}

func (a accumulator) total() int64 {
	return a.ints + int64(math.Round(a.floats))
}

func groupSum(view ViewKind, table *dataset.Table, keyColumn string, valueColumns []string) ([]Row, error) {
	keys, err := table.Column(keyColumn)
	if err != nil {
		return nil, missingColumn(view, table, keyColumn, err)
	}

	cols := make([]series.Series, len(valueColumns))
	for i, name := range valueColumns {
		col, err := table.Column(name)
		if err != nil {
			return nil, missingColumn(view, table, name, err)
		}
		if col.Type() == series.Bool {
			return nil, viewError(view, fmt.Sprintf("column %q is not numeric", name), nil).
				WithContext("column", name)
		}
		cols[i] = col
	}

	index := make(map[string]int)
	var order []string
	var sums [][]accumulator

	for i := 0; i < keys.Len(); i++ {
		key, ok := formatKey(keys.Elem(i))
		if !ok {
			continue
		}

		g, seen := index[key]
		if !seen {
			g = len(order)
			index[key] = g
			order = append(order, key)
			sums = append(sums, make([]accumulator, len(cols)))
		}

		for c, col := range cols {
			if err := addCell(&sums[g][c], col.Elem(i)); err != nil {
				return nil, viewError(view, fmt.Sprintf("column %q row %d: %v", valueColumns[c], i, err), err).
					WithContext("column", valueColumns[c]).
					WithContext("row", i)
			}
		}
	}

	rows := make([]Row, len(order))
	for g, key := range order {
		values := make([]int64, len(cols))
		for c := range cols {
			values[c] = sums[g][c].total()
		}
		rows[g] = Row{Key: key, Values: values}
	}
	return rows, nil
}

// formatKey renders a grouping cell. Missing keys are dropped from the view.
func formatKey(e series.Element) (string, bool) {
	if e.IsNA() {
		return "", false
	}
	switch e.Type() {
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return "", false
		}
		return strconv.Itoa(v), true
	case series.Float:
		return strconv.FormatFloat(e.Float(), 'f', -1, 64), true
	default:
		s := strings.TrimSpace(e.String())
		return s, s != ""
	}
}

// addCell adds one summed cell. Empty and NaN cells are skipped.
func addCell(acc *accumulator, e series.Element) error {
	if e.IsNA() {
		return nil
	}
	switch e.Type() {
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return err
		}
		acc.ints += int64(v)
	case series.Float:
		f := e.Float()
		if !math.IsNaN(f) {
			acc.floats += f
		}
	default:
		s := strings.TrimSpace(e.String())
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			acc.ints += v
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("non-numeric value %q", s)
		}
		if !math.IsNaN(f) {
			acc.floats += f
		}
	}
	return nil
}

// sortRows orders rows by key, numerically when every key is a number.
func sortRows(rows []Row) {
	numeric := make([]float64, len(rows))
	allNumeric := true
	for i, row := range rows {
		f, err := strconv.ParseFloat(row.Key, 64)
		if err != nil {
			allNumeric = false
			break
		}
		numeric[i] = f
	}

	if allNumeric {
		idx := make(map[string]float64, len(rows))
		for i, row := range rows {
			idx[row.Key] = numeric[i]
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return idx[rows[i].Key] < idx[rows[j].Key]
		})
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Key < rows[j].Key
	})
}

func missingColumn(view ViewKind, table *dataset.Table, column string, cause error) *apperrors.AppError {
	return viewError(view, fmt.Sprintf("column %q not found in %s table", column, table.Kind()), cause).
		WithContext("column", column).
		WithContext("table", string(table.Kind()))
}

func viewError(view ViewKind, msg string, cause error) *apperrors.AppError {
	return apperrors.NewAggregationError(fmt.Sprintf("%s: %s", view.Slug(), msg), cause).
		WithContext("view", view.Slug())
}
