package ports

import (
	"context"

	"loadwatch/domain/session"
)

// SessionReader loads the raw per-session table. A malformed metric cell
// rejects that row and the read continues; an invalid identifying key
// (Player, Date) aborts the read. The report records what was dropped.
type SessionReader interface {
	ReadSessions(ctx context.Context) ([]session.Record, *ReadReport, error)
}

// ReadReport summarizes one ingestion pass.
type ReadReport struct {
	TotalRows  int      `json:"total_rows"`
	Accepted   int      `json:"accepted"`
	Rejected   int      `json:"rejected"`
	Rejections []string `json:"rejections,omitempty"`
}
