package attendance

import (
	"testing"
	"time"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
)

func row(player, team string, y, m, d int, observed bool) timeline.Row {
	date := core.NewDay(y, time.Month(m), d)
	return timeline.Row{
		Identity: session.Identity{Player: player, Position: "Midfielder", Team: team},
		Date:     date,
		YearWeek: date.YearWeek(),
		Observed: observed,
	}
}

func TestCount(t *testing.T) {
	daily := []timeline.Row{
		row("Ana", "A", 2023, 1, 2, true),
		row("Ben", "A", 2023, 1, 2, false),
		row("Ana", "A", 2023, 1, 3, false),
		row("Ben", "A", 2023, 1, 3, true),
		row("Cal", "B", 2023, 1, 2, true),
	}

	counts := Count(daily)
	if len(counts) != 3 {
		t.Fatalf("counts = %d, want 3", len(counts))
	}

	first := counts[0]
	if first.Team != "A" || first.Present != 1 || first.Roster != 2 {
		t.Errorf("first count = %+v", first)
	}
	if f, ok := first.Rate().Float64(); !ok || f != 0.5 {
		t.Errorf("rate = %v", first.Rate())
	}

	teamB := ForTeam(counts, "B")
	if len(teamB) != 1 || teamB[0].Present != 1 || teamB[0].Roster != 1 {
		t.Errorf("team B = %+v", teamB)
	}
}

func TestCount_EmptyRosterRate(t *testing.T) {
	c := DayCount{Team: "A", Roster: 0, Present: 0}
	if _, ok := c.Rate().Float64(); ok {
		t.Error("rate over empty roster should be missing")
	}
}
