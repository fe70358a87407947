package smoothing

import (
	"loadwatch/domain/core"
)

// Spans holds the acute and chronic EWMA window spans for one
// granularity. Daily monitoring conventionally runs 7/28; weekly rows
// already represent a week each, so weekly spans are much shorter.
type Spans struct {
	Acute   int
	Chronic int
}

// Validate rejects non-positive spans.
func (s Spans) Validate() error {
	if s.Acute <= 0 || s.Chronic <= 0 {
		return core.ErrNonPositiveSpan
	}
	return nil
}

// EWMA computes the exponentially weighted moving average of an ordered
// series using the recursive definition with alpha = 2/(span+1). The
// first present value seeds the series. A missing observation yields a
// missing output for that position; the smoothing state carries forward
// unchanged to the next present observation, so absence never decays the
// average toward a fabricated zero.
func EWMA(series []core.Value, span int) []core.Value {
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]core.Value, len(series))

	state := 0.0
	seeded := false
	for i, v := range series {
		f, ok := v.Float64()
		if !ok {
			out[i] = core.Missing()
			continue
		}
		if !seeded {
			state = f
			seeded = true
		} else {
			state = state + alpha*(f-state)
		}
		out[i] = core.Some(state)
	}
	return out
}

// ACWR divides acute by chronic pointwise. A zero or missing chronic
// value yields a missing ratio.
func ACWR(acute, chronic []core.Value) []core.Value {
	out := make([]core.Value, len(acute))
	for i := range acute {
		out[i] = core.Div(acute[i], chronic[i])
	}
	return out
}
