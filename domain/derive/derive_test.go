package derive

import (
	"math"
	"testing"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
)

func rawRow(metrics map[string]core.Value) timeline.Row {
	return timeline.Row{
		Identity: session.Identity{Player: "P1", Position: "Midfielder", Team: "Team1"},
		Metrics:  metrics,
		Observed: true,
	}
}

func TestRow_IntensityMetrics(t *testing.T) {
	row := Row(rawRow(map[string]core.Value{
		session.MetricDuration:      core.Some(60),
		session.MetricPlayerLoad:    core.Some(600),
		session.MetricTotalDistance: core.Some(6000),
		session.MetricIMALeft:       core.Some(20),
		session.MetricIMARight:      core.Some(10),
		session.MetricAcc2:          core.Some(15),
		session.MetricDec2:          core.Some(15),
	}))

	checks := map[string]float64{
		session.MetricLoadPerMinute:     10,
		session.MetricDistancePerMinute: 100,
		session.MetricEffortPerMinute:   1, // (20+10+15+15)/60
	}
	for name, want := range checks {
		got, ok := row.Metrics[name].Float64()
		if !ok {
			t.Errorf("%s missing", name)
			continue
		}
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s = %f, want %f", name, got, want)
		}
	}
}

func TestRow_ZeroDurationLeavesRatesMissing(t *testing.T) {
	row := Row(rawRow(map[string]core.Value{
		session.MetricDuration:      core.Some(0),
		session.MetricPlayerLoad:    core.Some(600),
		session.MetricTotalDistance: core.Some(6000),
	}))
	for _, name := range []string{session.MetricLoadPerMinute, session.MetricDistancePerMinute} {
		if f, ok := row.Metrics[name].Float64(); ok {
			t.Errorf("%s = %f with zero Duration, want missing", name, f)
		}
	}
}

func TestRow_MissingSessionStaysMissing(t *testing.T) {
	row := Row(rawRow(map[string]core.Value{}))
	for _, name := range session.DerivedMetrics() {
		if _, ok := row.Metrics[name].Float64(); ok {
			t.Errorf("%s computed on an empty session", name)
		}
	}
	if row.IMADirection != "" {
		t.Errorf("direction = %q on an empty session, want unclassified", row.IMADirection)
	}
}

func TestImbalance_RatioAndShares(t *testing.T) {
	row := Row(rawRow(map[string]core.Value{
		session.MetricIMALeft:  core.Some(120),
		session.MetricIMARight: core.Some(100),
	}))

	ratio, ok := row.Metrics[session.MetricIMAImbalance].Float64()
	if !ok {
		t.Fatal("imbalance missing")
	}
	if math.Abs(ratio-0.2) > 1e-9 {
		t.Errorf("imbalance = %f, want 0.2", ratio)
	}
	// 0.2 is below the 0.8 "Right" boundary of the asymmetric rule, even
	// though the left count is the larger one.
	if row.IMADirection != timeline.DirectionRight {
		t.Errorf("direction = %q, want Right per the documented thresholds", row.IMADirection)
	}

	rightShare, _ := row.Metrics[session.MetricIMARightShare].Float64()
	leftShare, _ := row.Metrics[session.MetricIMALeftShare].Float64()
	if math.Abs(rightShare-100.0/220.0) > 1e-9 {
		t.Errorf("right share = %f", rightShare)
	}
	if math.Abs(leftShare+rightShare-1) > 1e-9 {
		t.Errorf("shares do not sum to 1: %f + %f", leftShare, rightShare)
	}
}

func TestImbalance_ZeroRightIsMissingNotInf(t *testing.T) {
	row := Row(rawRow(map[string]core.Value{
		session.MetricIMALeft:  core.Some(10),
		session.MetricIMARight: core.Some(0),
	}))
	if f, ok := row.Metrics[session.MetricIMAImbalance].Float64(); ok {
		t.Errorf("imbalance = %f with zero right count, want missing", f)
	}
}

func TestIMADirection_Boundaries(t *testing.T) {
	cases := []struct {
		ratio float64
		want  timeline.Direction
	}{
		{1.3, timeline.DirectionLeft},
		{1.2, timeline.DirectionBalance}, // strict >
		{1.0, timeline.DirectionBalance},
		{0.8, timeline.DirectionBalance}, // strict <
		{0.79, timeline.DirectionRight},
		{-0.5, timeline.DirectionRight},
	}
	for _, tc := range cases {
		if got := IMADirection(core.Some(tc.ratio)); got != tc.want {
			t.Errorf("IMADirection(%f) = %q, want %q", tc.ratio, got, tc.want)
		}
	}
	if got := IMADirection(core.Missing()); got != "" {
		t.Errorf("IMADirection(missing) = %q, want unclassified", got)
	}
}
