package tabular

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
	"loadwatch/ports"
)

func readTable(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func column(t *testing.T, table [][]string, row int, name string) string {
	t.Helper()
	for i, h := range table[0] {
		if h == name {
			return table[row][i]
		}
	}
	t.Fatalf("no column %q in %v", name, table[0])
	return ""
}

func TestCSVWriter_PlayerTable(t *testing.T) {
	dir := t.TempDir()
	tracked := session.TrackedMetrics(session.DefaultCategories())
	categories := session.CategoryNames(session.DefaultCategories())
	w := NewCSVWriter(dir, tracked, categories)

	row := timeline.Row{
		Identity: session.Identity{Player: "Ana", Position: "Midfielder", Team: "A"},
		Date:     core.NewDay(2023, time.January, 2),
		Season:   "2022/23",
		Weekday:  "Monday",
		Year:     2023,
		Week:     1,
		YearWeek: "2023-W01",
		Observed: true,
		Metrics: map[string]core.Value{
			session.MetricDuration:     core.Some(60),
			session.MetricIMALeftShare: core.Some(0.546),
		},
		ACWR: map[string]core.Value{
			session.MetricDuration: core.Some(1.006),
		},
		Abnormality: map[string]timeline.Abnormality{
			session.MetricDuration: timeline.AbnormalModerate,
		},
		RiskScores:   map[string]int{session.CategoryVolume: 1},
		IMADirection: timeline.DirectionBalance,
	}

	if err := w.SaveDailyAll(context.Background(), core.NewRunID(), []timeline.Row{row}); err != nil {
		t.Fatalf("SaveDailyAll: %v", err)
	}

	table := readTable(t, filepath.Join(dir, DailyAllFile))
	if len(table) != 2 {
		t.Fatalf("rows = %d, want header plus one", len(table))
	}

	if got := column(t, table, 1, session.MetricDuration); got != "60" {
		t.Errorf("duration = %q, want 60", got)
	}
	// Rounding happens here at the boundary.
	if got := column(t, table, 1, session.MetricDuration+" ACWR"); got != "1.01" {
		t.Errorf("acwr = %q, want 1.01", got)
	}
	// Shares render as display percentages.
	if got := column(t, table, 1, session.MetricIMALeftShare); got != "54.6%" {
		t.Errorf("left share = %q, want 54.6%%", got)
	}
	// A metric never observed serializes as an empty cell, not zero.
	if got := column(t, table, 1, session.MetricTotalDistance); got != "" {
		t.Errorf("distance = %q, want empty", got)
	}
	if got := column(t, table, 1, session.CategoryVolume+" Risk Score"); got != "1" {
		t.Errorf("volume risk score = %q, want 1", got)
	}
	if got := column(t, table, 1, "IMA Direction"); got != "Balance" {
		t.Errorf("direction = %q", got)
	}
}

func TestCSVWriter_TeamTable(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil, nil)

	rows := []timeline.TeamRow{{
		Team:     "A",
		Season:   "2022/23",
		Year:     2023,
		Week:     1,
		YearWeek: "2023-W01",
		Date:     core.NewDay(2023, time.January, 2),
		Metrics: map[string]core.Value{
			session.MetricTotalDistance: core.Some(6000),
		},
	}}
	if err := w.SaveWeeklyTeam(context.Background(), core.NewRunID(), rows); err != nil {
		t.Fatalf("SaveWeeklyTeam: %v", err)
	}

	table := readTable(t, filepath.Join(dir, WeeklyTeamFile))
	if got := column(t, table, 1, "Team Name"); got != "A" {
		t.Errorf("team = %q", got)
	}
	if got := column(t, table, 1, session.MetricTotalDistance); got != "6000" {
		t.Errorf("distance = %q, want 6000", got)
	}
}

func TestCSVWriter_Manifest(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil, nil)

	manifest := ports.RunManifest{
		RunID:        core.NewRunID(),
		StartedAt:    time.Now(),
		SessionsRead: 42,
		DailyRows:    700,
	}
	if err := w.SaveManifest(context.Background(), manifest); err != nil {
		t.Fatalf("SaveManifest: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var decoded ports.RunManifest
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if decoded.RunID != manifest.RunID || decoded.SessionsRead != 42 {
		t.Errorf("manifest = %+v", decoded)
	}
}
