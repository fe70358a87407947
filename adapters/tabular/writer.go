package tabular

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
	"loadwatch/ports"
)

// Output artifact names match what the dashboard already consumes.
const (
	DailyAllFile     = "df_all.csv"
	WeeklyPlayerFile = "df_week_player.csv"
	WeeklyTeamFile   = "df_week_team.csv"
)

// CSVWriter writes the three pipeline output tables as CSV artifacts.
// All rounding to two decimals happens here, at the serialization
// boundary; the tables it receives are full precision.
type CSVWriter struct {
	outputDir  string
	tracked    []string
	categories []string
}

var _ ports.ResultSink = (*CSVWriter)(nil)

// NewCSVWriter creates a writer. tracked orders the ACWR columns and
// categories orders the risk score columns.
func NewCSVWriter(outputDir string, tracked, categories []string) *CSVWriter {
	return &CSVWriter{outputDir: outputDir, tracked: tracked, categories: categories}
}

// SaveDailyAll writes the densified, annotated daily table.
func (w *CSVWriter) SaveDailyAll(ctx context.Context, runID core.RunID, rows []timeline.Row) error {
	return w.writePlayerTable(DailyAllFile, runID, rows)
}

// SaveWeeklyPlayer writes the weekly per-player table.
func (w *CSVWriter) SaveWeeklyPlayer(ctx context.Context, runID core.RunID, rows []timeline.Row) error {
	return w.writePlayerTable(WeeklyPlayerFile, runID, rows)
}

// SaveWeeklyTeam writes the weekly per-team raw averages.
func (w *CSVWriter) SaveWeeklyTeam(ctx context.Context, runID core.RunID, rows []timeline.TeamRow) error {
	header := []string{"Date", "Team Name", "Season", "Year", "Week", "Year-Week"}
	header = append(header, session.RawMetrics()...)

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, r := range rows {
		record := []string{
			r.Date.String(),
			r.Team,
			r.Season,
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Week),
			r.YearWeek,
		}
		for _, name := range session.RawMetrics() {
			record = append(record, formatValue(r.Metrics[name]))
		}
		records = append(records, record)
	}
	return w.writeFile(WeeklyTeamFile, runID, records)
}

// SaveManifest writes the run manifest next to the tables.
func (w *CSVWriter) SaveManifest(ctx context.Context, manifest ports.RunManifest) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run manifest: %w", err)
	}
	path := filepath.Join(w.outputDir, "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run manifest: %w", err)
	}
	log.Printf("[CSVWriter] Wrote manifest for run %s to %s", manifest.RunID, path)
	return nil
}

func (w *CSVWriter) writePlayerTable(filename string, runID core.RunID, rows []timeline.Row) error {
	header := []string{"Date", "Player", "Position", "Team Name", "Season", "Weekday", "Year", "Week", "Year-Week"}
	header = append(header, session.RawMetrics()...)
	header = append(header, session.DerivedMetrics()...)
	for _, metric := range w.tracked {
		header = append(header, metric+" ACWR", metric+" Abnormal")
	}
	for _, category := range w.categories {
		header = append(header, category+" Risk Score")
	}
	header = append(header, "IMA Direction", "Is IMA Imbalance")

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, r := range rows {
		records = append(records, w.playerRecord(r))
	}
	return w.writeFile(filename, runID, records)
}

func (w *CSVWriter) playerRecord(r timeline.Row) []string {
	record := []string{
		r.Date.String(),
		r.Player,
		r.Position,
		r.Team,
		r.Season,
		r.Weekday,
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Week),
		r.YearWeek,
	}
	for _, name := range session.RawMetrics() {
		record = append(record, formatValue(r.Metrics[name]))
	}
	for _, name := range session.DerivedMetrics() {
		switch name {
		case session.MetricIMALeftShare, session.MetricIMARightShare:
			record = append(record, formatPercent(r.Metrics[name]))
		default:
			record = append(record, formatValue(r.Metrics[name]))
		}
	}
	for _, metric := range w.tracked {
		record = append(record, formatValue(r.ACWR[metric]), string(r.Abnormality[metric]))
	}
	for _, category := range w.categories {
		record = append(record, strconv.Itoa(r.RiskScores[category]))
	}
	record = append(record, string(r.IMADirection), strconv.FormatBool(r.IMAImbalance))
	return record
}

func (w *CSVWriter) writeFile(filename string, runID core.RunID, records [][]string) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(w.outputDir, filename)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	log.Printf("[CSVWriter] run %s wrote %s (%d rows)", runID, path, len(records)-1)
	return nil
}

// formatValue renders a value rounded to two decimals, empty when
// missing.
func formatValue(v core.Value) string {
	f, ok := core.Round2(v).Float64()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatPercent renders a share as a display percentage, e.g. "54.55%".
func formatPercent(v core.Value) string {
	f, ok := v.Float64()
	if !ok {
		return ""
	}
	r, _ := core.Round2(core.Some(f * 100)).Float64()
	return strconv.FormatFloat(r, 'f', -1, 64) + "%"
}
