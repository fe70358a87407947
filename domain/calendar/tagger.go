package calendar

import (
	"loadwatch/domain/timeline"
)

// Tag annotates each row with its period tags: season, weekday, ISO week
// and year, and the composite year-week key. Tags are a pure function of
// Date and are recomputed identically at daily and weekly granularity.
func Tag(rows []timeline.Row, seasons *SeasonTable) []timeline.Row {
	out := make([]timeline.Row, len(rows))
	for i, r := range rows {
		row := r.Clone()
		row.Season = seasons.Lookup(row.Date)
		row.Weekday = row.Date.Weekday()
		row.Year, row.Week = row.Date.ISOWeek()
		row.YearWeek = row.Date.YearWeek()
		out[i] = row
	}
	return out
}
