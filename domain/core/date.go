package core

import (
	"fmt"
	"time"
)

// Day is a calendar date with no time-of-day component. All days are
// normalized to midnight UTC so they are safe as map keys and compare
// with ==.
type Day time.Time

// DayOf truncates a time to its calendar date.
func DayOf(t time.Time) Day {
	return Day(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

// NewDay builds a day from its components.
func NewDay(year int, month time.Month, day int) Day {
	return Day(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Time returns the underlying time.Time at midnight UTC.
func (d Day) Time() time.Time {
	return time.Time(d)
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return Day(d.Time().AddDate(0, 0, 1))
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is later than other.
func (d Day) After(other Day) bool {
	return d.Time().After(other.Time())
}

// Equal reports calendar-date equality.
func (d Day) Equal(other Day) bool {
	return d.Time().Equal(other.Time())
}

// Weekday returns the English weekday name.
func (d Day) Weekday() string {
	return d.Time().Weekday().String()
}

// ISOWeek returns the ISO-8601 week-numbering year and week. The week
// containing the first Thursday of January is week 1, which places
// late-December and early-January dates in the neighbouring year's
// numbering when applicable.
func (d Day) ISOWeek() (year, week int) {
	return d.Time().ISOWeek()
}

// YearWeek returns the composite key identifying an ISO week, e.g.
// "2023-W01".
func (d Day) YearWeek() string {
	y, w := d.ISOWeek()
	return FormatYearWeek(y, w)
}

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

// MarshalJSON encodes the day as a YYYY-MM-DD string.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *Day) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid day literal %s", s)
	}
	t, err := time.Parse("2006-01-02", s[1:len(s)-1])
	if err != nil {
		return err
	}
	*d = DayOf(t)
	return nil
}

// FormatYearWeek renders the composite ISO year-week key.
func FormatYearWeek(isoYear, week int) string {
	return fmt.Sprintf("%d-W%02d", isoYear, week)
}

// MondayOfISOWeek reverses an (ISO year, week) pair to the Monday that
// starts the week. January 4th is always inside ISO week 1.
func MondayOfISOWeek(isoYear, week int) Day {
	jan4 := time.Date(isoYear, time.January, 4, 0, 0, 0, 0, time.UTC)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	monday := jan4.AddDate(0, 0, -(wd - 1))
	return Day(monday.AddDate(0, 0, (week-1)*7))
}

// DaysBetween returns every calendar day in [start, end] inclusive.
func DaysBetween(start, end Day) []Day {
	if end.Before(start) {
		return nil
	}
	var days []Day
	for d := start; !d.After(end); d = d.Next() {
		days = append(days, d)
	}
	return days
}
