package session

import (
	"loadwatch/domain/core"
)

// Identity is the densification key: a player together with the position
// and team observed for them. A player who changes team mid-horizon shows
// up as two disjoint identities sharing the player name.
type Identity struct {
	Player   string `json:"player"`
	Position string `json:"position"`
	Team     string `json:"team"`
}

// Record is one observed training session: an identity, a calendar day
// and the raw metric set captured by the GPS/accelerometer units.
type Record struct {
	Identity
	Date    core.Day
	Metrics map[string]core.Value
}

// NewRecord builds a session record with an empty metric set.
func NewRecord(id Identity, date core.Day) Record {
	return Record{
		Identity: id,
		Date:     date,
		Metrics:  make(map[string]core.Value, len(RawMetrics())),
	}
}

// Metric returns the named raw metric, missing when never set.
func (r Record) Metric(name string) core.Value {
	return r.Metrics[name]
}

// Identities returns the deduplicated (Player, Position, Team)
// combinations in first-seen order.
func Identities(records []Record) []Identity {
	seen := make(map[Identity]bool)
	var out []Identity
	for _, r := range records {
		if !seen[r.Identity] {
			seen[r.Identity] = true
			out = append(out, r.Identity)
		}
	}
	return out
}
