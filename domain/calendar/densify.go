package calendar

import (
	"fmt"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
)

// Densify expands a sparse session log into one row per (identity,
// calendar day) across [start, end]. Days without a session become rows
// with Observed=false and every raw metric missing. The result always
// holds exactly |identities| x |days| rows: no observed session is
// dropped, none is fabricated.
func Densify(records []session.Record, start, end core.Day) ([]timeline.Row, error) {
	if end.Before(start) {
		return nil, core.ErrInvalidHorizon
	}

	ids := session.Identities(records)
	days := core.DaysBetween(start, end)

	type dayKey struct {
		id   session.Identity
		date core.Day
	}
	byKey := make(map[dayKey]session.Record, len(records))
	for _, rec := range records {
		if rec.Date.Before(start) || rec.Date.After(end) {
			// Never drop an observed session; out of horizon is an input error.
			return nil, fmt.Errorf("session for %s on %s outside horizon [%s, %s]: %w",
				rec.Player, rec.Date, start, end, core.ErrMalformedRow)
		}
		key := dayKey{rec.Identity, rec.Date}
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("duplicate session for %s on %s: %w", rec.Player, rec.Date, core.ErrMalformedRow)
		}
		byKey[key] = rec
	}

	rows := make([]timeline.Row, 0, len(ids)*len(days))
	for _, id := range ids {
		for _, day := range days {
			row := timeline.Row{
				Identity: id,
				Date:     day,
				Metrics:  make(map[string]core.Value, len(session.RawMetrics())),
			}
			if rec, ok := byKey[dayKey{id, day}]; ok {
				row.Observed = true
				for _, name := range session.RawMetrics() {
					row.Metrics[name] = rec.Metric(name)
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
