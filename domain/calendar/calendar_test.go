package calendar

import (
	"testing"
	"time"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
)

func day(y int, m time.Month, d int) core.Day {
	return core.NewDay(y, m, d)
}

func testRecord(player string, date core.Day, duration float64) session.Record {
	rec := session.NewRecord(session.Identity{
		Player:   player,
		Position: "Midfielder",
		Team:     "Team1",
	}, date)
	rec.Metrics[session.MetricDuration] = core.Some(duration)
	return rec
}

func TestDensify_RowCountInvariant(t *testing.T) {
	records := []session.Record{
		testRecord("P1", day(2023, time.January, 2), 60),
		testRecord("P1", day(2023, time.January, 9), 90),
		testRecord("P2", day(2023, time.January, 4), 45),
	}
	start := day(2023, time.January, 1)
	end := day(2023, time.January, 31)

	rows, err := Densify(records, start, end)
	if err != nil {
		t.Fatalf("Densify: %v", err)
	}
	if want := 2 * 31; len(rows) != want {
		t.Fatalf("row count = %d, want %d (2 identities x 31 days)", len(rows), want)
	}

	perPlayer := make(map[string]int)
	seen := make(map[string]map[core.Day]bool)
	for _, r := range rows {
		perPlayer[r.Player]++
		if seen[r.Player] == nil {
			seen[r.Player] = make(map[core.Day]bool)
		}
		if seen[r.Player][r.Date] {
			t.Fatalf("duplicate date %s for player %s", r.Date, r.Player)
		}
		seen[r.Player][r.Date] = true
	}
	for p, n := range perPlayer {
		if n != 31 {
			t.Errorf("player %s has %d rows, want 31", p, n)
		}
	}
}

func TestDensify_PreservesObservedSessions(t *testing.T) {
	records := []session.Record{
		testRecord("P1", day(2023, time.January, 2), 60),
	}
	rows, err := Densify(records, day(2023, time.January, 1), day(2023, time.January, 7))
	if err != nil {
		t.Fatalf("Densify: %v", err)
	}

	observed := 0
	for _, r := range rows {
		if !r.Observed {
			if _, ok := r.Metrics[session.MetricDuration].Float64(); ok {
				t.Errorf("non-session day %s carries a Duration value", r.Date)
			}
			continue
		}
		observed++
		f, ok := r.Metrics[session.MetricDuration].Float64()
		if !ok || f != 60 {
			t.Errorf("observed session Duration = %f (present=%v), want 60", f, ok)
		}
	}
	if observed != 1 {
		t.Errorf("observed rows = %d, want 1", observed)
	}
}

func TestDensify_RejectsOutOfHorizonSession(t *testing.T) {
	records := []session.Record{
		testRecord("P1", day(2023, time.February, 1), 60),
	}
	_, err := Densify(records, day(2023, time.January, 1), day(2023, time.January, 31))
	if err == nil {
		t.Fatal("expected error for session outside horizon")
	}
}

func TestDensify_RejectsDuplicateSession(t *testing.T) {
	records := []session.Record{
		testRecord("P1", day(2023, time.January, 2), 60),
		testRecord("P1", day(2023, time.January, 2), 75),
	}
	_, err := Densify(records, day(2023, time.January, 1), day(2023, time.January, 7))
	if err == nil {
		t.Fatal("expected error for duplicate (player, date) session")
	}
}

func TestDensify_TeamChangeYieldsTwoIdentities(t *testing.T) {
	a := testRecord("P1", day(2023, time.January, 2), 60)
	b := session.NewRecord(session.Identity{Player: "P1", Position: "Midfielder", Team: "Team2"}, day(2023, time.January, 3))
	rows, err := Densify([]session.Record{a, b}, day(2023, time.January, 1), day(2023, time.January, 7))
	if err != nil {
		t.Fatalf("Densify: %v", err)
	}
	// Two synthetic identities sharing the player name, 7 days each.
	if len(rows) != 14 {
		t.Errorf("row count = %d, want 14", len(rows))
	}
}

func TestSeasonTable_RejectsOverlap(t *testing.T) {
	_, err := NewSeasonTable([]Season{
		{Name: "2021/22", Start: day(2021, time.July, 1), End: day(2022, time.June, 30)},
		{Name: "2022/23", Start: day(2022, time.June, 30), End: day(2023, time.June, 30)},
	})
	if err == nil {
		t.Fatal("expected overlap error")
	}
	if !core.IsConfigError(err) {
		t.Errorf("overlap should be a config error, got %v", err)
	}
}

func TestTag_PeriodTags(t *testing.T) {
	seasons, err := NewSeasonTable([]Season{
		{Name: "2022/23", Start: day(2022, time.July, 1), End: day(2023, time.June, 30)},
	})
	if err != nil {
		t.Fatalf("NewSeasonTable: %v", err)
	}

	rows, err := Densify([]session.Record{
		testRecord("P1", day(2023, time.January, 2), 60),
	}, day(2023, time.January, 1), day(2023, time.January, 2))
	if err != nil {
		t.Fatalf("Densify: %v", err)
	}

	tagged := Tag(rows, seasons)
	for _, r := range tagged {
		if r.Season != "2022/23" {
			t.Errorf("%s: season = %q, want 2022/23", r.Date, r.Season)
		}
	}

	// 2023-01-01 is a Sunday in ISO week 52 of 2022.
	first := tagged[0]
	if first.Weekday != "Sunday" || first.Year != 2022 || first.Week != 52 || first.YearWeek != "2022-W52" {
		t.Errorf("2023-01-01 tags = (%s, %d, %d, %s)", first.Weekday, first.Year, first.Week, first.YearWeek)
	}
	second := tagged[1]
	if second.Weekday != "Monday" || second.Year != 2023 || second.Week != 1 || second.YearWeek != "2023-W01" {
		t.Errorf("2023-01-02 tags = (%s, %d, %d, %s)", second.Weekday, second.Year, second.Week, second.YearWeek)
	}
}

func TestTag_OutsideSeasonIsUntagged(t *testing.T) {
	seasons, err := NewSeasonTable([]Season{
		{Name: "2022/23", Start: day(2022, time.July, 1), End: day(2023, time.June, 30)},
	})
	if err != nil {
		t.Fatalf("NewSeasonTable: %v", err)
	}
	rows, err := Densify([]session.Record{
		testRecord("P1", day(2023, time.July, 2), 60),
	}, day(2023, time.July, 1), day(2023, time.July, 2))
	if err != nil {
		t.Fatalf("Densify: %v", err)
	}
	for _, r := range Tag(rows, seasons) {
		if r.Season != "" {
			t.Errorf("%s: season = %q, want empty", r.Date, r.Season)
		}
	}
}
