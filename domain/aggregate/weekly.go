package aggregate

import (
	"sort"

	"github.com/montanaflynn/stats"

	"loadwatch/domain/core"
	"loadwatch/domain/derive"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
)

// WeeklyByPlayer reduces the dense daily series to one row per
// (identity, ISO week). Raw metrics are the mean of the observed daily
// values; days with no session contribute nothing to either side of the
// mean. Derived metrics are then recomputed from the aggregated raw
// values. Averaging the daily ratios instead would conflate
// mean-of-ratios with ratio-of-means, which are materially different
// quantities for workload analysis.
//
// Each weekly row's synthetic Date is the Monday starting its ISO week.
func WeeklyByPlayer(daily []timeline.Row) []timeline.Row {
	type weekKey struct {
		id   session.Identity
		year int
		week int
	}

	groups := make(map[weekKey][]timeline.Row)
	var order []weekKey
	for _, r := range daily {
		key := weekKey{r.Identity, r.Year, r.Week}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.id.Player != b.id.Player {
			return a.id.Player < b.id.Player
		}
		if a.year != b.year {
			return a.year < b.year
		}
		return a.week < b.week
	})

	out := make([]timeline.Row, 0, len(order))
	for _, key := range order {
		members := groups[key]
		row := timeline.Row{
			Identity: key.id,
			Date:     core.MondayOfISOWeek(key.year, key.week),
			Year:     key.year,
			Week:     key.week,
			YearWeek: core.FormatYearWeek(key.year, key.week),
			Metrics:  meanRawMetrics(rowMetrics(members)),
		}
		for _, m := range members {
			if m.Observed {
				row.Observed = true
				break
			}
		}
		out = append(out, derive.Row(row))
	}
	return out
}

// WeeklyByTeam reduces the dense daily series to one raw-metric average
// per (team, ISO week) across every player-day of that team. Team rows
// carry no EWMA annotation. Season is the caller's to assign from the
// synthetic date.
func WeeklyByTeam(daily []timeline.Row) []timeline.TeamRow {
	type weekKey struct {
		team string
		year int
		week int
	}

	groups := make(map[weekKey][]timeline.Row)
	var order []weekKey
	for _, r := range daily {
		key := weekKey{r.Team, r.Year, r.Week}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.team != b.team {
			return a.team < b.team
		}
		if a.year != b.year {
			return a.year < b.year
		}
		return a.week < b.week
	})

	out := make([]timeline.TeamRow, 0, len(order))
	for _, key := range order {
		out = append(out, timeline.TeamRow{
			Team:     key.team,
			Date:     core.MondayOfISOWeek(key.year, key.week),
			Year:     key.year,
			Week:     key.week,
			YearWeek: core.FormatYearWeek(key.year, key.week),
			Metrics:  meanRawMetrics(rowMetrics(groups[key])),
		})
	}
	return out
}

func rowMetrics(rows []timeline.Row) []map[string]core.Value {
	out := make([]map[string]core.Value, len(rows))
	for i, r := range rows {
		out[i] = r.Metrics
	}
	return out
}

// meanRawMetrics averages each raw metric over its present values only.
// A metric with no present value in the group stays missing.
func meanRawMetrics(metricSets []map[string]core.Value) map[string]core.Value {
	out := make(map[string]core.Value, len(session.RawMetrics()))
	for _, name := range session.RawMetrics() {
		var present []float64
		for _, metrics := range metricSets {
			if f, ok := metrics[name].Float64(); ok {
				present = append(present, f)
			}
		}
		if len(present) == 0 {
			out[name] = core.Missing()
			continue
		}
		mean, err := stats.Mean(present)
		if err != nil {
			out[name] = core.Missing()
			continue
		}
		out[name] = core.Some(mean)
	}
	return out
}
