package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"loadwatch/domain/timeline"
)

// Summary describes how one metric is distributed across the observed
// sessions of one team. It backs the team overview endpoint.
type Summary struct {
	Team       string  `json:"team"`
	Metric     string  `json:"metric"`
	SampleSize int     `json:"sample_size"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Median     float64 `json:"median"`
	Q25        float64 `json:"q25"`
	Q75        float64 `json:"q75"`
	P10        float64 `json:"p10"`
	P90        float64 `json:"p90"`
	Outliers   int     `json:"outliers"`
	IsNormal   bool    `json:"is_normal"`

	// NormalLow/NormalHigh bound the central 80% of a normal fit to the
	// sample, a reference band for reading the empirical P10/P90 against.
	NormalLow  float64 `json:"normal_low"`
	NormalHigh float64 `json:"normal_high"`
}

// minSampleSize below which a summary is not worth reporting.
const minSampleSize = 3

// Profile summarizes every tracked metric per team from an annotated
// table, usually the weekly player aggregates. Only rows backed by at
// least one observed session contribute; synthetic missing rows would
// drag every distribution toward nothing. Teams and metrics with fewer
// than three present values are skipped.
func Profile(rows []timeline.Row, metrics []string) []Summary {
	samples := make(map[string]map[string][]float64)
	for _, r := range rows {
		if !r.Observed {
			continue
		}
		if samples[r.Team] == nil {
			samples[r.Team] = make(map[string][]float64)
		}
		for _, name := range metrics {
			if f, ok := r.Metrics[name].Float64(); ok {
				samples[r.Team][name] = append(samples[r.Team][name], f)
			}
		}
	}

	teams := make([]string, 0, len(samples))
	for team := range samples {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	var out []Summary
	for _, team := range teams {
		for _, name := range metrics {
			data := samples[team][name]
			if len(data) < minSampleSize {
				continue
			}
			if s, ok := summarize(team, name, data); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func summarize(team, metric string, data []float64) (Summary, bool) {
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, false
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return Summary{}, false
	}
	min, err := stats.Min(data)
	if err != nil {
		return Summary{}, false
	}
	max, err := stats.Max(data)
	if err != nil {
		return Summary{}, false
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, false
	}
	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return Summary{}, false
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return Summary{}, false
	}
	p10, err := stats.Percentile(data, 10)
	if err != nil {
		return Summary{}, false
	}
	p90, err := stats.Percentile(data, 90)
	if err != nil {
		return Summary{}, false
	}

	normalLow, normalHigh := normalBand(mean, stdDev)

	return Summary{
		Team:       team,
		Metric:     metric,
		SampleSize: len(data),
		Mean:       mean,
		StdDev:     stdDev,
		Min:        min,
		Max:        max,
		Median:     median,
		Q25:        q25,
		Q75:        q75,
		P10:        p10,
		P90:        p90,
		Outliers:   countOutliers(data, q25, q75),
		IsNormal:   looksNormal(data, mean, stdDev),
		NormalLow:  normalLow,
		NormalHigh: normalHigh,
	}, true
}

// normalBand returns the 10th and 90th quantiles of a normal fit.
func normalBand(mean, stdDev float64) (low, high float64) {
	if stdDev <= 0 {
		return mean, mean
	}
	dist := distuv.Normal{Mu: mean, Sigma: stdDev}
	return dist.Quantile(0.10), dist.Quantile(0.90)
}

// countOutliers applies the 1.5 IQR fence.
func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lower := q25 - 1.5*iqr
	upper := q75 + 1.5*iqr

	count := 0
	for _, x := range data {
		if x < lower || x > upper {
			count++
		}
	}
	return count
}

// looksNormal is a rough Jarque-Bera style check on skewness and
// kurtosis against a chi-squared reference. Good enough to flag a
// metric whose distribution an IQR fence misreads, nothing more.
func looksNormal(data []float64, mean, stdDev float64) bool {
	n := float64(len(data))
	if n < minSampleSize || stdDev == 0 {
		return false
	}

	var sumCubed, sumFourth float64
	for _, x := range data {
		d := (x - mean) / stdDev
		sumCubed += d * d * d
		sumFourth += d * d * d * d
	}
	skewness := sumCubed / n
	kurtosis := sumFourth / n

	testStat := math.Abs(skewness) + math.Abs(kurtosis-3)/2
	chiDist := distuv.ChiSquared{K: 2}
	pValue := 1 - chiDist.CDF(testStat*testStat)
	return pValue > 0.05
}

// ForTeam filters summaries down to one team.
func ForTeam(summaries []Summary, team string) []Summary {
	var out []Summary
	for _, s := range summaries {
		if s.Team == team {
			out = append(out, s)
		}
	}
	return out
}
