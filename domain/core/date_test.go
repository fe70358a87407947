package core

import (
	"testing"
	"time"
)

func TestISOWeek_YearBoundary(t *testing.T) {
	// 2023-01-01 is a Sunday and belongs to ISO week 52 of 2022.
	y, w := NewDay(2023, time.January, 1).ISOWeek()
	if y != 2022 || w != 52 {
		t.Errorf("2023-01-01 ISO week = (%d, %d), want (2022, 52)", y, w)
	}

	// 2023-01-02 is a Monday and starts ISO week 1 of 2023.
	y, w = NewDay(2023, time.January, 2).ISOWeek()
	if y != 2023 || w != 1 {
		t.Errorf("2023-01-02 ISO week = (%d, %d), want (2023, 1)", y, w)
	}

	// 2024-12-30 is a Monday inside ISO week 1 of 2025.
	y, w = NewDay(2024, time.December, 30).ISOWeek()
	if y != 2025 || w != 1 {
		t.Errorf("2024-12-30 ISO week = (%d, %d), want (2025, 1)", y, w)
	}
}

func TestMondayOfISOWeek_ReversesISOWeek(t *testing.T) {
	days := []Day{
		NewDay(2023, time.January, 2),
		NewDay(2023, time.January, 8),
		NewDay(2022, time.December, 31),
		NewDay(2021, time.July, 1),
		NewDay(2025, time.January, 1),
	}
	for _, d := range days {
		y, w := d.ISOWeek()
		monday := MondayOfISOWeek(y, w)
		if monday.Time().Weekday() != time.Monday {
			t.Errorf("MondayOfISOWeek(%d, %d) = %s, not a Monday", y, w, monday)
		}
		my, mw := monday.ISOWeek()
		if my != y || mw != w {
			t.Errorf("MondayOfISOWeek(%d, %d) lands in week (%d, %d)", y, w, my, mw)
		}
		if d.Time().Before(monday.Time()) {
			t.Errorf("day %s precedes its own week's Monday %s", d, monday)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	start := NewDay(2023, time.January, 2)
	end := NewDay(2023, time.January, 8)
	days := DaysBetween(start, end)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	for i := 1; i < len(days); i++ {
		if !days[i-1].Next().Equal(days[i]) {
			t.Errorf("days not consecutive at index %d: %s -> %s", i, days[i-1], days[i])
		}
	}
	if got := DaysBetween(end, start); got != nil {
		t.Errorf("inverted range should yield nil, got %d days", len(got))
	}
}

func TestYearWeekKey(t *testing.T) {
	if got := NewDay(2023, time.January, 2).YearWeek(); got != "2023-W01" {
		t.Errorf("YearWeek = %q, want 2023-W01", got)
	}
	if got := NewDay(2023, time.January, 1).YearWeek(); got != "2022-W52" {
		t.Errorf("YearWeek = %q, want 2022-W52", got)
	}
}

func TestDay_JSON(t *testing.T) {
	d := NewDay(2023, time.March, 15)
	data, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2023-03-15"` {
		t.Errorf("marshal = %s", data)
	}
	var back Day
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip mismatch: %s != %s", back, d)
	}
}
