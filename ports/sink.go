package ports

import (
	"context"
	"time"

	"loadwatch/domain/core"
	"loadwatch/domain/timeline"
)

// RunManifest summarizes one pipeline execution.
type RunManifest struct {
	RunID            core.RunID `json:"run_id"`
	StartedAt        time.Time  `json:"started_at"`
	RuntimeMs        int64      `json:"runtime_ms"`
	SessionsRead     int        `json:"sessions_read"`
	RejectedRows     int        `json:"rejected_rows"`
	Identities       int        `json:"identities"`
	DailyRows        int        `json:"daily_rows"`
	WeeklyPlayerRows int        `json:"weekly_player_rows"`
	WeeklyTeamRows   int        `json:"weekly_team_rows"`
}

// ResultSink persists the three pipeline output tables. Implementations
// exist for CSV artifacts and Postgres; the pipeline writes complete
// tables once per run, never incremental updates.
type ResultSink interface {
	SaveDailyAll(ctx context.Context, runID core.RunID, rows []timeline.Row) error
	SaveWeeklyPlayer(ctx context.Context, runID core.RunID, rows []timeline.Row) error
	SaveWeeklyTeam(ctx context.Context, runID core.RunID, rows []timeline.TeamRow) error
	SaveManifest(ctx context.Context, manifest RunManifest) error
}

// ResultReader serves persisted pipeline output to the API layer.
type ResultReader interface {
	LatestDailyAll(ctx context.Context) ([]timeline.Row, error)
	LatestWeeklyPlayer(ctx context.Context) ([]timeline.Row, error)
	LatestWeeklyTeam(ctx context.Context) ([]timeline.TeamRow, error)
}
