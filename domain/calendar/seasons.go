package calendar

import (
	"fmt"

	"loadwatch/domain/core"
)

// Season is a named, configured date range, e.g. "2022/23".
type Season struct {
	Name  string
	Start core.Day
	End   core.Day
}

// Contains reports whether the day falls inside the season, bounds
// inclusive.
func (s Season) Contains(d core.Day) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

// SeasonTable is an ordered list of disjoint season ranges.
type SeasonTable struct {
	seasons []Season
}

// NewSeasonTable validates and builds a season table. Overlapping ranges
// are a fatal configuration error; lookups over an overlapping table
// would silently depend on declaration order.
func NewSeasonTable(seasons []Season) (*SeasonTable, error) {
	for _, s := range seasons {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: season with empty name", core.ErrInvalidConfig)
		}
		if s.End.Before(s.Start) {
			return nil, fmt.Errorf("%w: season %q ends before it starts", core.ErrInvalidConfig, s.Name)
		}
	}
	for i := 0; i < len(seasons); i++ {
		for j := i + 1; j < len(seasons); j++ {
			if overlaps(seasons[i], seasons[j]) {
				return nil, fmt.Errorf("%w: %q and %q", core.ErrSeasonOverlap, seasons[i].Name, seasons[j].Name)
			}
		}
	}
	return &SeasonTable{seasons: seasons}, nil
}

func overlaps(a, b Season) bool {
	return !a.End.Before(b.Start) && !b.End.Before(a.Start)
}

// Lookup returns the season name for a day, or "" when the day falls
// outside every configured range.
func (t *SeasonTable) Lookup(d core.Day) string {
	for _, s := range t.seasons {
		if s.Contains(d) {
			return s.Name
		}
	}
	return ""
}

// Seasons returns the configured ranges.
func (t *SeasonTable) Seasons() []Season {
	return t.seasons
}
