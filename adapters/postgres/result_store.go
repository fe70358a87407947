package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"loadwatch/domain/core"
	"loadwatch/domain/timeline"
	"loadwatch/ports"
)

// ResultStore persists pipeline output tables in Postgres. Each run
// replaces the affected tables wholesale; the pipeline contract is batch
// recomputation, not incremental update.
type ResultStore struct {
	db *sqlx.DB
}

var (
	_ ports.ResultSink   = (*ResultStore)(nil)
	_ ports.ResultReader = (*ResultStore)(nil)
)

// Open connects to Postgres and returns a result store.
func Open(databaseURL string) (*ResultStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &ResultStore{db: db}, nil
}

// NewResultStore wraps an existing connection.
func NewResultStore(db *sqlx.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Close releases the connection pool.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the output tables when absent.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		run_id      TEXT PRIMARY KEY,
		started_at  TIMESTAMPTZ NOT NULL,
		runtime_ms  BIGINT NOT NULL,
		rows_daily  INTEGER NOT NULL,
		rows_weekly INTEGER NOT NULL,
		rows_team   INTEGER NOT NULL,
		rows_rejected INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS daily_rows (
		run_id     TEXT NOT NULL,
		player     TEXT NOT NULL,
		position   TEXT NOT NULL,
		team       TEXT NOT NULL,
		date       DATE NOT NULL,
		season     TEXT NOT NULL,
		weekday    TEXT NOT NULL,
		year       INTEGER NOT NULL,
		week       INTEGER NOT NULL,
		year_week  TEXT NOT NULL,
		observed   BOOLEAN NOT NULL,
		payload    JSONB NOT NULL,
		PRIMARY KEY (run_id, player, position, team, date)
	);
	CREATE TABLE IF NOT EXISTS weekly_player_rows (
		run_id     TEXT NOT NULL,
		player     TEXT NOT NULL,
		position   TEXT NOT NULL,
		team       TEXT NOT NULL,
		date       DATE NOT NULL,
		season     TEXT NOT NULL,
		year       INTEGER NOT NULL,
		week       INTEGER NOT NULL,
		year_week  TEXT NOT NULL,
		observed   BOOLEAN NOT NULL,
		payload    JSONB NOT NULL,
		PRIMARY KEY (run_id, player, position, team, date)
	);
	CREATE TABLE IF NOT EXISTS weekly_team_rows (
		run_id     TEXT NOT NULL,
		team       TEXT NOT NULL,
		date       DATE NOT NULL,
		season     TEXT NOT NULL,
		year       INTEGER NOT NULL,
		week       INTEGER NOT NULL,
		year_week  TEXT NOT NULL,
		payload    JSONB NOT NULL,
		PRIMARY KEY (run_id, team, date)
	);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveManifest records the run manifest.
func (s *ResultStore) SaveManifest(ctx context.Context, m ports.RunManifest) error {
	query := `INSERT INTO pipeline_runs (
		run_id, started_at, runtime_ms, rows_daily, rows_weekly, rows_team, rows_rejected
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (run_id) DO UPDATE SET
		runtime_ms = EXCLUDED.runtime_ms,
		rows_daily = EXCLUDED.rows_daily,
		rows_weekly = EXCLUDED.rows_weekly,
		rows_team = EXCLUDED.rows_team,
		rows_rejected = EXCLUDED.rows_rejected`
	_, err := s.db.ExecContext(ctx, query,
		m.RunID.String(), m.StartedAt, m.RuntimeMs,
		m.DailyRows, m.WeeklyPlayerRows, m.WeeklyTeamRows, m.RejectedRows,
	)
	if err != nil {
		return fmt.Errorf("failed to save run manifest: %w", err)
	}
	return nil
}

// SaveDailyAll replaces the daily table for this run.
func (s *ResultStore) SaveDailyAll(ctx context.Context, runID core.RunID, rows []timeline.Row) error {
	return s.savePlayerRows(ctx, "daily_rows", true, runID, rows)
}

// SaveWeeklyPlayer replaces the weekly player table for this run.
func (s *ResultStore) SaveWeeklyPlayer(ctx context.Context, runID core.RunID, rows []timeline.Row) error {
	return s.savePlayerRows(ctx, "weekly_player_rows", false, runID, rows)
}

func (s *ResultStore) savePlayerRows(ctx context.Context, table string, withWeekday bool, runID core.RunID, rows []timeline.Row) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var query string
	if withWeekday {
		query = `INSERT INTO ` + table + ` (
			run_id, player, position, team, date, season, weekday, year, week, year_week, observed, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	} else {
		query = `INSERT INTO ` + table + ` (
			run_id, player, position, team, date, season, year, week, year_week, observed, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	}

	for _, r := range rows {
		payload, err := marshalRowPayload(r)
		if err != nil {
			return err
		}
		args := []interface{}{runID.String(), r.Player, r.Position, r.Team, r.Date.Time(), r.Season}
		if withWeekday {
			args = append(args, r.Weekday)
		}
		args = append(args, r.Year, r.Week, r.YearWeek, r.Observed, payload)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// SaveWeeklyTeam replaces the weekly team table for this run.
func (s *ResultStore) SaveWeeklyTeam(ctx context.Context, runID core.RunID, rows []timeline.TeamRow) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO weekly_team_rows (
		run_id, team, date, season, year, week, year_week, payload
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, r := range rows {
		payload, err := json.Marshal(struct {
			Metrics map[string]core.Value `json:"metrics"`
		}{Metrics: roundValues(r.Metrics)})
		if err != nil {
			return fmt.Errorf("failed to marshal team row payload: %w", err)
		}
		_, err = tx.ExecContext(ctx, query,
			runID.String(), r.Team, r.Date.Time(), r.Season, r.Year, r.Week, r.YearWeek, payload)
		if err != nil {
			return fmt.Errorf("failed to insert into weekly_team_rows: %w", err)
		}
	}
	return tx.Commit()
}

// rowPayload is the JSONB body for player-granularity rows.
type rowPayload struct {
	Metrics      map[string]core.Value           `json:"metrics"`
	Acute        map[string]core.Value           `json:"acute,omitempty"`
	Chronic      map[string]core.Value           `json:"chronic,omitempty"`
	ACWR         map[string]core.Value           `json:"acwr,omitempty"`
	Abnormality  map[string]timeline.Abnormality `json:"abnormality,omitempty"`
	RiskScores   map[string]int                  `json:"risk_scores,omitempty"`
	IMADirection timeline.Direction              `json:"ima_direction,omitempty"`
	IMAImbalance bool                            `json:"ima_imbalance"`
}

func marshalRowPayload(r timeline.Row) ([]byte, error) {
	payload, err := json.Marshal(rowPayload{
		Metrics:      roundValues(r.Metrics),
		Acute:        roundValues(r.Acute),
		Chronic:      roundValues(r.Chronic),
		ACWR:         roundValues(r.ACWR),
		Abnormality:  r.Abnormality,
		RiskScores:   r.RiskScores,
		IMADirection: r.IMADirection,
		IMAImbalance: r.IMAImbalance,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal row payload: %w", err)
	}
	return payload, nil
}

// roundValues applies the uniform two-decimal serialization rounding.
func roundValues(m map[string]core.Value) map[string]core.Value {
	if m == nil {
		return nil
	}
	out := make(map[string]core.Value, len(m))
	for k, v := range m {
		out[k] = core.Round2(v)
	}
	return out
}

// LatestDailyAll returns the daily table of the most recent run.
func (s *ResultStore) LatestDailyAll(ctx context.Context) ([]timeline.Row, error) {
	return s.loadPlayerRows(ctx, "daily_rows", true)
}

// LatestWeeklyPlayer returns the weekly player table of the most recent run.
func (s *ResultStore) LatestWeeklyPlayer(ctx context.Context) ([]timeline.Row, error) {
	return s.loadPlayerRows(ctx, "weekly_player_rows", false)
}

func (s *ResultStore) loadPlayerRows(ctx context.Context, table string, withWeekday bool) ([]timeline.Row, error) {
	runID, err := s.latestRunID(ctx)
	if err != nil {
		return nil, err
	}

	weekdayCol := "'' AS weekday"
	if withWeekday {
		weekdayCol = "weekday"
	}
	query := `SELECT player, position, team, date, season, ` + weekdayCol + `,
		year, week, year_week, observed, payload
	FROM ` + table + ` WHERE run_id = $1 ORDER BY player, position, team, date`

	dbRows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer dbRows.Close()

	var rows []timeline.Row
	for dbRows.Next() {
		var r timeline.Row
		var date sql.NullTime
		var payload []byte
		if err := dbRows.Scan(&r.Player, &r.Position, &r.Team, &date, &r.Season, &r.Weekday,
			&r.Year, &r.Week, &r.YearWeek, &r.Observed, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		if date.Valid {
			r.Date = core.DayOf(date.Time)
		}
		var body rowPayload
		if err := json.Unmarshal(payload, &body); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s payload: %w", table, err)
		}
		r.Metrics = body.Metrics
		r.Acute = body.Acute
		r.Chronic = body.Chronic
		r.ACWR = body.ACWR
		r.Abnormality = body.Abnormality
		r.RiskScores = body.RiskScores
		r.IMADirection = body.IMADirection
		r.IMAImbalance = body.IMAImbalance
		rows = append(rows, r)
	}
	return rows, dbRows.Err()
}

// LatestWeeklyTeam returns the weekly team table of the most recent run.
func (s *ResultStore) LatestWeeklyTeam(ctx context.Context) ([]timeline.TeamRow, error) {
	runID, err := s.latestRunID(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT team, date, season, year, week, year_week, payload
	FROM weekly_team_rows WHERE run_id = $1 ORDER BY team, date`
	dbRows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly_team_rows: %w", err)
	}
	defer dbRows.Close()

	var rows []timeline.TeamRow
	for dbRows.Next() {
		var r timeline.TeamRow
		var date sql.NullTime
		var payload []byte
		if err := dbRows.Scan(&r.Team, &date, &r.Season, &r.Year, &r.Week, &r.YearWeek, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan weekly_team_rows: %w", err)
		}
		if date.Valid {
			r.Date = core.DayOf(date.Time)
		}
		var body struct {
			Metrics map[string]core.Value `json:"metrics"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team payload: %w", err)
		}
		r.Metrics = body.Metrics
		rows = append(rows, r)
	}
	return rows, dbRows.Err()
}

func (s *ResultStore) latestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id FROM pipeline_runs ORDER BY started_at DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("no pipeline run recorded yet")
	}
	if err != nil {
		return "", fmt.Errorf("failed to find latest run: %w", err)
	}
	return runID, nil
}
