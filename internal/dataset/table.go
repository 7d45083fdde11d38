package dataset

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bikerental/pkg/contracts/domain"
)

// Table is one loaded dataset. It is never modified after construction, so it
// can be shared between goroutines without locking.
type Table struct {
	kind     domain.TableKind
	source   string
	frame    dataframe.DataFrame
	loadedAt time.Time
}

// NewTable wraps an already renamed frame.
func NewTable(kind domain.TableKind, source string, frame dataframe.DataFrame) *Table {
	return &Table{
		kind:     kind,
		source:   source,
		frame:    frame,
		loadedAt: time.Now(),
	}
}

func (t *Table) Kind() domain.TableKind { return t.kind }
func (t *Table) Source() string         { return t.source }
func (t *Table) LoadedAt() time.Time    { return t.loadedAt }
func (t *Table) Nrow() int              { return t.frame.Nrow() }
func (t *Table) Ncol() int              { return t.frame.Ncol() }

// Names returns the column names in source order.
func (t *Table) Names() []string {
	return t.frame.Names()
}

// HasColumn reports whether the table has a column called name.
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.frame.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (series.Series, error) {
	if !t.HasColumn(name) {
		return series.Series{}, fmt.Errorf("column %q not found in %s table", name, t.kind)
	}
	col := t.frame.Col(name)
	if col.Err != nil {
		return series.Series{}, col.Err
	}
	return col, nil
}

// Records returns every row as strings, without the header.
func (t *Table) Records() [][]string {
	return t.Page(0, 0)
}

// Page returns up to limit rows starting at offset. A zero limit means every
// remaining row.
func (t *Table) Page(offset, limit int) [][]string {
	total := t.frame.Nrow()
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return [][]string{}
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	cols := make([][]string, t.frame.Ncol())
	for i, name := range t.frame.Names() {
		cols[i] = t.frame.Col(name).Records()
	}

	rows := make([][]string, 0, end-offset)
	for r := offset; r < end; r++ {
		row := make([]string, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		rows = append(rows, row)
	}
	return rows
}

// Status summarizes the table for health reporting.
func (t *Table) Status() domain.TableStatus {
	return domain.TableStatus{
		Kind:     t.kind,
		Source:   t.source,
		Loaded:   true,
		Rows:     t.Nrow(),
		Columns:  t.Ncol(),
		LoadedAt: t.loadedAt,
	}
}
