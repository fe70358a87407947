package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
)

func observedRow(team string, d int, duration float64) timeline.Row {
	return timeline.Row{
		Identity: session.Identity{Player: "Ana", Position: "Midfielder", Team: team},
		Date:     core.NewDay(2023, time.January, d),
		Observed: true,
		Metrics: map[string]core.Value{
			session.MetricDuration: core.Some(duration),
		},
	}
}

func TestProfile(t *testing.T) {
	daily := []timeline.Row{
		observedRow("A", 2, 60),
		observedRow("A", 3, 70),
		observedRow("A", 4, 80),
		{
			Identity: session.Identity{Player: "Ana", Position: "Midfielder", Team: "A"},
			Date:     core.NewDay(2023, time.January, 5),
			Observed: false,
		},
	}

	summaries := Profile(daily, []string{session.MetricDuration})
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "A", s.Team)
	assert.Equal(t, session.MetricDuration, s.Metric)
	// The unobserved day must not pull the sample.
	assert.Equal(t, 3, s.SampleSize)
	assert.InDelta(t, 70, s.Mean, 1e-9)
	assert.Equal(t, 60.0, s.Min)
	assert.Equal(t, 80.0, s.Max)
}

func TestProfile_SkipsThinSamples(t *testing.T) {
	daily := []timeline.Row{
		observedRow("A", 2, 60),
		observedRow("A", 3, 70),
	}
	assert.Empty(t, Profile(daily, []string{session.MetricDuration}))
}

func TestForTeam(t *testing.T) {
	summaries := []Summary{{Team: "A"}, {Team: "B"}, {Team: "A"}}
	assert.Len(t, ForTeam(summaries, "A"), 2)
}
