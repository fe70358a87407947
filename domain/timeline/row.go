package timeline

import (
	"sort"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
)

// Abnormality classifies a metric's ACWR against configured bounds.
type Abnormality string

const (
	AbnormalHigh     Abnormality = "High"
	AbnormalLow      Abnormality = "Low"
	AbnormalModerate Abnormality = "Moderate"
)

// Direction classifies left/right change-of-direction asymmetry.
type Direction string

const (
	DirectionLeft    Direction = "Left"
	DirectionRight   Direction = "Right"
	DirectionBalance Direction = "Balance"
)

// Row is one fully annotated pipeline row at daily or weekly granularity.
// Every stage produces new rows; nothing mutates a row a later stage
// already consumed.
type Row struct {
	session.Identity
	Date core.Day `json:"date"`

	// Period tags, a pure function of Date.
	Season   string `json:"season,omitempty"`
	Weekday  string `json:"weekday"`
	Year     int    `json:"year"`
	Week     int    `json:"week"`
	YearWeek string `json:"year_week"`

	// Observed is false for calendar-filled days with no session.
	Observed bool `json:"observed"`

	// Metrics holds raw and derived values keyed by metric name.
	Metrics map[string]core.Value `json:"metrics"`

	// EWMA/ACWR annotation per tracked metric.
	Acute   map[string]core.Value `json:"acute,omitempty"`
	Chronic map[string]core.Value `json:"chronic,omitempty"`
	ACWR    map[string]core.Value `json:"acwr,omitempty"`

	// Risk annotation.
	Abnormality map[string]Abnormality `json:"abnormality,omitempty"`
	RiskScores  map[string]int         `json:"risk_scores,omitempty"`

	// IMA imbalance annotation.
	IMADirection Direction `json:"ima_direction,omitempty"`
	IMAImbalance bool      `json:"ima_imbalance"`
}

// Metric returns the named metric value, missing when absent.
func (r Row) Metric(name string) core.Value {
	return r.Metrics[name]
}

// Clone returns a deep copy so downstream stages can annotate without
// touching the upstream table.
func (r Row) Clone() Row {
	out := r
	out.Metrics = cloneValues(r.Metrics)
	out.Acute = cloneValues(r.Acute)
	out.Chronic = cloneValues(r.Chronic)
	out.ACWR = cloneValues(r.ACWR)
	if r.Abnormality != nil {
		out.Abnormality = make(map[string]Abnormality, len(r.Abnormality))
		for k, v := range r.Abnormality {
			out.Abnormality[k] = v
		}
	}
	if r.RiskScores != nil {
		out.RiskScores = make(map[string]int, len(r.RiskScores))
		for k, v := range r.RiskScores {
			out.RiskScores[k] = v
		}
	}
	return out
}

func cloneValues(m map[string]core.Value) map[string]core.Value {
	if m == nil {
		return nil
	}
	out := make(map[string]core.Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// TeamRow is one weekly raw-metric average per team. Team rows carry no
// EWMA annotation.
type TeamRow struct {
	Team     string   `json:"team"`
	Season   string   `json:"season,omitempty"`
	Year     int      `json:"year"`
	Week     int      `json:"week"`
	YearWeek string   `json:"year_week"`
	Date     core.Day `json:"date"`

	Metrics map[string]core.Value `json:"metrics"`
}

// Sort orders rows by (Player, Position, Team, Date) for deterministic
// output. The sort is stable so equal keys keep their relative order.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Player != b.Player {
			return a.Player < b.Player
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		return a.Date.Before(b.Date)
	})
}

// SortTeams orders team rows by (Team, Date).
func SortTeams(rows []TeamRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		return a.Date.Before(b.Date)
	})
}

// GroupByIdentity partitions rows per identity, first-seen order
// preserved. Each partition is the caller's to own exclusively; rows are
// not copied.
func GroupByIdentity(rows []Row) ([]session.Identity, map[session.Identity][]Row) {
	groups := make(map[session.Identity][]Row)
	var order []session.Identity
	for _, r := range rows {
		if _, ok := groups[r.Identity]; !ok {
			order = append(order, r.Identity)
		}
		groups[r.Identity] = append(groups[r.Identity], r)
	}
	return order, groups
}
