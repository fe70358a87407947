package derive

import (
	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
)

// Direction thresholds operate on the (left-right)/right imbalance ratio
// and are not symmetric around zero.
const (
	directionLeftAbove  = 1.2
	directionRightBelow = 0.8
)

// Annotate computes the intensity and imbalance metrics for every row
// from that row's raw metrics alone. A zero or missing Duration leaves
// the per-minute metrics missing; they are never coerced to zero.
func Annotate(rows []timeline.Row) []timeline.Row {
	out := make([]timeline.Row, len(rows))
	for i, r := range rows {
		out[i] = Row(r)
	}
	return out
}

// Row derives the metric set for a single row. Exposed separately so the
// weekly aggregator can re-derive on aggregated raw values rather than
// averaging daily ratios.
func Row(r timeline.Row) timeline.Row {
	row := r.Clone()
	m := Metrics(row.Metrics)
	for name, v := range m {
		row.Metrics[name] = v
	}
	row.IMADirection = IMADirection(row.Metrics[session.MetricIMAImbalance])
	return row
}

// Metrics computes the derived metric set from a raw metric map.
func Metrics(raw map[string]core.Value) map[string]core.Value {
	duration := raw[session.MetricDuration]

	derived := map[string]core.Value{
		session.MetricLoadPerMinute:     core.Div(raw[session.MetricPlayerLoad], duration),
		session.MetricDistancePerMinute: core.Div(raw[session.MetricTotalDistance], duration),
		session.MetricEffortPerMinute: core.Div(
			core.Sum(
				raw[session.MetricIMALeft],
				raw[session.MetricIMARight],
				raw[session.MetricAcc2],
				raw[session.MetricDec2],
			),
			duration,
		),
	}

	left := raw[session.MetricIMALeft]
	right := raw[session.MetricIMARight]
	derived[session.MetricIMAImbalance] = core.Div(core.Sub(left, right), right)

	rightShare := core.Div(right, core.Sum(left, right))
	derived[session.MetricIMARightShare] = rightShare
	derived[session.MetricIMALeftShare] = core.Sub(core.Some(1), rightShare)

	return derived
}

// IMADirection classifies the imbalance ratio. An undefined ratio yields
// no classification.
func IMADirection(imbalance core.Value) timeline.Direction {
	ratio, ok := imbalance.Float64()
	if !ok {
		return ""
	}
	switch {
	case ratio > directionLeftAbove:
		return timeline.DirectionLeft
	case ratio < directionRightBelow:
		return timeline.DirectionRight
	default:
		return timeline.DirectionBalance
	}
}
