package app

import (
	"context"
	"fmt"
	"time"

	"loadwatch/domain/aggregate"
	"loadwatch/domain/calendar"
	"loadwatch/domain/core"
	"loadwatch/domain/derive"
	"loadwatch/domain/risk"
	"loadwatch/domain/session"
	"loadwatch/domain/smoothing"
	"loadwatch/domain/timeline"
	"loadwatch/internal"
	"loadwatch/internal/config"
	"loadwatch/ports"
)

// PipelineService runs the full batch: raw sessions in, three annotated
// tables out. Every run recomputes everything from the source table;
// there is no incremental path.
type PipelineService struct {
	reader  ports.SessionReader
	sinks   []ports.ResultSink
	seasons *calendar.SeasonTable
	horizon config.HorizonConfig

	dailyEngine  *smoothing.Engine
	weeklyEngine *smoothing.Engine
	classifier   *risk.Classifier
	tracked      []string
	logger       *internal.Logger
}

// PipelineResult carries the computed tables and the run manifest.
type PipelineResult struct {
	Manifest     ports.RunManifest
	ReadReport   *ports.ReadReport
	DailyAll     []timeline.Row
	WeeklyPlayer []timeline.Row
	WeeklyTeam   []timeline.TeamRow
}

// NewPipelineService wires the pipeline from configuration. Sinks are
// optional; a run with no sinks still returns the computed tables.
func NewPipelineService(reader ports.SessionReader, cfg *config.Config, sinks ...ports.ResultSink) (*PipelineService, error) {
	seasons, err := calendar.NewSeasonTable(cfg.Seasons)
	if err != nil {
		return nil, fmt.Errorf("invalid season table: %w", err)
	}
	tracked := session.TrackedMetrics(cfg.Risk.Categories)

	dailyEngine, err := smoothing.NewEngine(cfg.Smoothing.Daily, tracked)
	if err != nil {
		return nil, fmt.Errorf("invalid daily smoothing config: %w", err)
	}
	weeklyEngine, err := smoothing.NewEngine(cfg.Smoothing.Weekly, tracked)
	if err != nil {
		return nil, fmt.Errorf("invalid weekly smoothing config: %w", err)
	}
	classifier, err := risk.NewClassifier(cfg.Risk.Bounds, cfg.Risk.Categories, cfg.Risk.ImbalanceThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid risk config: %w", err)
	}

	return &PipelineService{
		reader:       reader,
		sinks:        sinks,
		seasons:      seasons,
		horizon:      cfg.Horizon,
		dailyEngine:  dailyEngine,
		weeklyEngine: weeklyEngine,
		classifier:   classifier,
		tracked:      tracked,
		logger:       internal.DefaultLogger.Named("Pipeline"),
	}, nil
}

// TrackedMetrics exposes the smoothed metric set, in column order.
func (s *PipelineService) TrackedMetrics() []string {
	return append([]string(nil), s.tracked...)
}

// Run executes one complete pipeline pass and persists the tables to
// every configured sink.
func (s *PipelineService) Run(ctx context.Context) (*PipelineResult, error) {
	startTime := time.Now()
	runID := core.NewRunID()

	records, report, err := s.reader.ReadSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("session read failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("session table yielded no usable rows: %w", core.ErrEmptyInput)
	}
	s.logger.Info("Run %s: %d sessions accepted, %d rejected", runID, report.Accepted, report.Rejected)

	daily, err := s.buildDailyTable(ctx, records)
	if err != nil {
		return nil, err
	}
	weeklyPlayer, err := s.buildWeeklyPlayerTable(ctx, daily)
	if err != nil {
		return nil, err
	}
	weeklyTeam := s.buildWeeklyTeamTable(daily)
	s.logger.Info("Run %s: %d daily rows, %d weekly player rows, %d weekly team rows in %dms",
		runID, len(daily), len(weeklyPlayer), len(weeklyTeam), time.Since(startTime).Milliseconds())

	result := &PipelineResult{
		Manifest: ports.RunManifest{
			RunID:            runID,
			StartedAt:        startTime,
			RuntimeMs:        time.Since(startTime).Milliseconds(),
			SessionsRead:     report.Accepted,
			RejectedRows:     report.Rejected,
			Identities:       len(session.Identities(records)),
			DailyRows:        len(daily),
			WeeklyPlayerRows: len(weeklyPlayer),
			WeeklyTeamRows:   len(weeklyTeam),
		},
		ReadReport:   report,
		DailyAll:     daily,
		WeeklyPlayer: weeklyPlayer,
		WeeklyTeam:   weeklyTeam,
	}

	for _, sink := range s.sinks {
		if err := sink.SaveDailyAll(ctx, runID, daily); err != nil {
			return nil, fmt.Errorf("failed to persist daily table: %w", err)
		}
		if err := sink.SaveWeeklyPlayer(ctx, runID, weeklyPlayer); err != nil {
			return nil, fmt.Errorf("failed to persist weekly player table: %w", err)
		}
		if err := sink.SaveWeeklyTeam(ctx, runID, weeklyTeam); err != nil {
			return nil, fmt.Errorf("failed to persist weekly team table: %w", err)
		}
		result.Manifest.RuntimeMs = time.Since(startTime).Milliseconds()
		if err := sink.SaveManifest(ctx, result.Manifest); err != nil {
			return nil, fmt.Errorf("failed to persist run manifest: %w", err)
		}
	}

	return result, nil
}

// buildDailyTable densifies the sparse sessions over the horizon, tags
// calendar periods, derives per-minute and imbalance metrics, smooths
// the tracked metrics at daily spans and classifies the ratios.
func (s *PipelineService) buildDailyTable(ctx context.Context, records []session.Record) ([]timeline.Row, error) {
	rows, err := calendar.Densify(records, s.horizon.Start, s.horizon.End)
	if err != nil {
		return nil, fmt.Errorf("densification failed: %w", err)
	}
	rows = calendar.Tag(rows, s.seasons)
	rows = derive.Annotate(rows)
	rows, err = s.dailyEngine.Annotate(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("daily smoothing failed: %w", err)
	}
	return s.classifier.Annotate(rows), nil
}

// buildWeeklyPlayerTable aggregates the daily table per (identity, ISO
// week), then smooths and classifies at weekly spans. Derived metrics
// were already recomputed from aggregated raw values inside the
// aggregation.
func (s *PipelineService) buildWeeklyPlayerTable(ctx context.Context, daily []timeline.Row) ([]timeline.Row, error) {
	weekly := aggregate.WeeklyByPlayer(daily)
	for i := range weekly {
		weekly[i].Season = s.seasons.Lookup(weekly[i].Date)
	}
	weekly, err := s.weeklyEngine.Annotate(ctx, weekly)
	if err != nil {
		return nil, fmt.Errorf("weekly smoothing failed: %w", err)
	}
	return s.classifier.Annotate(weekly), nil
}

func (s *PipelineService) buildWeeklyTeamTable(daily []timeline.Row) []timeline.TeamRow {
	weekly := aggregate.WeeklyByTeam(daily)
	for i := range weekly {
		weekly[i].Season = s.seasons.Lookup(weekly[i].Date)
	}
	return weekly
}
