package attendance

import (
	"sort"

	"loadwatch/domain/core"
	"loadwatch/domain/timeline"
)

// DayCount is the number of players with a recorded session for one
// team on one day, against the roster size seen for that team.
type DayCount struct {
	Team     string   `json:"team"`
	Date     core.Day `json:"date"`
	Present  int      `json:"present"`
	Roster   int      `json:"roster"`
	YearWeek string   `json:"year_week"`
}

// Rate returns present over roster, missing when the roster is empty.
func (c DayCount) Rate() core.Value {
	return core.Div(core.Some(float64(c.Present)), core.Some(float64(c.Roster)))
}

// Count tallies attendance from the dense daily table. Every identity
// that appears for a team on any day counts toward that team's roster;
// a player is present on a day when that day's row is an observed
// session. Results are ordered by team then date.
func Count(daily []timeline.Row) []DayCount {
	type key struct {
		team string
		date core.Day
	}

	rosters := make(map[string]map[string]bool)
	for _, r := range daily {
		if rosters[r.Team] == nil {
			rosters[r.Team] = make(map[string]bool)
		}
		rosters[r.Team][r.Player] = true
	}

	counts := make(map[key]*DayCount)
	var order []key
	for _, r := range daily {
		k := key{r.Team, r.Date}
		c, ok := counts[k]
		if !ok {
			c = &DayCount{
				Team:     r.Team,
				Date:     r.Date,
				Roster:   len(rosters[r.Team]),
				YearWeek: r.YearWeek,
			}
			counts[k] = c
			order = append(order, k)
		}
		if r.Observed {
			c.Present++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.team != b.team {
			return a.team < b.team
		}
		return a.date.Before(b.date)
	})

	out := make([]DayCount, 0, len(order))
	for _, k := range order {
		out = append(out, *counts[k])
	}
	return out
}

// ForTeam filters counts down to one team.
func ForTeam(counts []DayCount, team string) []DayCount {
	var out []DayCount
	for _, c := range counts {
		if c.Team == team {
			out = append(out, c)
		}
	}
	return out
}
