package aggregation

import (
	"errors"
	"fmt"
	"strings"

	"bikerental/pkg/contracts/domain"
)

// ErrUnknownView is returned when a view name matches no ViewKind.
var ErrUnknownView = errors.New("unknown view")

// ViewKind is one of the aggregate views offered by the dashboard menu.
type ViewKind int

const (
	BySeasonTotal ViewKind = iota
	ByYear
	ByHour
	ByWeekday
)

// Views returns every view in menu order.
func Views() []ViewKind {
	return []ViewKind{BySeasonTotal, ByYear, ByHour, ByWeekday}
}

// String returns the enum name.
func (v ViewKind) String() string {
	switch v {
	case BySeasonTotal:
		return "BySeasonTotal"
	case ByYear:
		return "ByYear"
	case ByHour:
		return "ByHour"
	case ByWeekday:
		return "ByWeekday"
	default:
		return fmt.Sprintf("ViewKind(%d)", int(v))
	}
}

// Slug is the URL and protocol name of the view.
func (v ViewKind) Slug() string {
	switch v {
	case BySeasonTotal:
		return "season"
	case ByYear:
		return "year"
	case ByHour:
		return "hour"
	case ByWeekday:
		return "weekday"
	default:
		return ""
	}
}

// Title is the menu entry and subheader of the view.
func (v ViewKind) Title() string {
	return v.ChartSpec().Title
}

// Table returns the dataset v is computed from.
func (v ViewKind) Table() domain.TableKind {
	p, _ := planFor(v)
	return p.table
}

// Valid reports whether v is a known view.
func (v ViewKind) Valid() bool {
	return v >= BySeasonTotal && v <= ByWeekday
}

// MenuItem returns the selector entry for v.
func (v ViewKind) MenuItem() domain.MenuItem {
	return domain.MenuItem{Slug: v.Slug(), Title: v.Title(), Order: int(v)}
}

// Menu returns the selector entries in order.
func Menu() []domain.MenuItem {
	views := Views()
	items := make([]domain.MenuItem, 0, len(views))
	for _, v := range views {
		items = append(items, v.MenuItem())
	}
	return items
}

// ParseViewKind resolves a slug, a menu title or an enum name.
func ParseViewKind(s string) (ViewKind, error) {
	name := strings.TrimSpace(s)
	for _, v := range Views() {
		if strings.EqualFold(name, v.Slug()) ||
			strings.EqualFold(name, v.String()) ||
			name == v.Title() {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}
