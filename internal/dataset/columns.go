package dataset

import (
	"bikerental/pkg/contracts/domain"
)

// rename is one raw export column and its dashboard name.
type rename struct {
	from string
	to   string
}

var dailyRenames = []rename{
	{"dteday", domain.ColumnDate},
	{"season", domain.ColumnSeason},
	{"mnth", domain.ColumnMonth},
	{"holiday", domain.ColumnHoliday},
	{"weekday", domain.ColumnWeekday},
	{"weathersit", domain.ColumnWeather},
	{"casual", domain.ColumnCasualRentals},
	{"registered", domain.ColumnRegisteredRentals},
	{"cnt", domain.ColumnTotalRentals},
}

var hourlyRenames = append(append([]rename{}, dailyRenames...), rename{"hr", domain.ColumnHour})

// ColumnMapping returns the raw to renamed column mapping for kind.
// Columns not in the mapping keep their source name.
func ColumnMapping(kind domain.TableKind) map[string]string {
	renames := renamesFor(kind)
	out := make(map[string]string, len(renames))
	for _, r := range renames {
		out[r.from] = r.to
	}
	return out
}

func renamesFor(kind domain.TableKind) []rename {
	if kind == domain.TableKindHourly {
		return hourlyRenames
	}
	return dailyRenames
}
