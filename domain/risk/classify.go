package risk

import (
	"fmt"
	"math"

	"loadwatch/domain/core"
	"loadwatch/domain/session"
	"loadwatch/domain/timeline"
)

// Bounds are the ACWR classification thresholds. Comparisons are strict:
// a ratio sitting exactly on a bound classifies as Moderate. The
// literature also uses 1.5 as the upper bound; pick one pair per
// deployment and keep it in configuration.
type Bounds struct {
	Upper float64
	Lower float64
}

// DefaultBounds is the canonical 1.3/0.8 configuration.
func DefaultBounds() Bounds {
	return Bounds{Upper: 1.3, Lower: 0.8}
}

// Validate rejects inverted or non-positive bounds.
func (b Bounds) Validate() error {
	if b.Upper <= b.Lower {
		return core.ErrInvalidThresholds
	}
	if b.Lower <= 0 {
		return fmt.Errorf("%w: lower bound must be positive", core.ErrInvalidConfig)
	}
	return nil
}

// Classify thresholds a single ACWR value. A missing ratio has no
// classification.
func Classify(acwr core.Value, b Bounds) (timeline.Abnormality, bool) {
	ratio, ok := acwr.Float64()
	if !ok {
		return "", false
	}
	switch {
	case ratio > b.Upper:
		return timeline.AbnormalHigh, true
	case ratio < b.Lower:
		return timeline.AbnormalLow, true
	default:
		return timeline.AbnormalModerate, true
	}
}

// Classifier annotates rows with per-metric abnormality, per-category
// risk scores, and the IMA imbalance flag.
type Classifier struct {
	bounds             Bounds
	categories         map[string][]string
	imbalanceThreshold float64
}

// DefaultImbalanceThreshold flags left/right asymmetry beyond 10%.
const DefaultImbalanceThreshold = 0.1

// NewClassifier validates the configuration and builds a classifier.
func NewClassifier(bounds Bounds, categories map[string][]string, imbalanceThreshold float64) (*Classifier, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, core.ErrEmptyCategory
	}
	for name, metrics := range categories {
		if len(metrics) == 0 {
			return nil, fmt.Errorf("%w: %q", core.ErrEmptyCategory, name)
		}
	}
	if imbalanceThreshold <= 0 {
		return nil, fmt.Errorf("%w: imbalance threshold must be positive", core.ErrInvalidConfig)
	}
	return &Classifier{
		bounds:             bounds,
		categories:         categories,
		imbalanceThreshold: imbalanceThreshold,
	}, nil
}

// Annotate classifies every row. Metrics whose ACWR is missing carry no
// abnormality entry and never count toward a score, so each category
// score stays within [0, category size].
func (c *Classifier) Annotate(rows []timeline.Row) []timeline.Row {
	out := make([]timeline.Row, len(rows))
	for i, r := range rows {
		row := r.Clone()
		row.Abnormality = make(map[string]timeline.Abnormality)
		row.RiskScores = make(map[string]int, len(c.categories))

		for category, metrics := range c.categories {
			score := 0
			for _, metric := range metrics {
				class, ok := Classify(row.ACWR[metric], c.bounds)
				if !ok {
					continue
				}
				row.Abnormality[metric] = class
				if class != timeline.AbnormalModerate {
					score++
				}
			}
			row.RiskScores[category] = score
		}

		row.IMAImbalance = c.imbalanced(row)
		out[i] = row
	}
	return out
}

// imbalanced flags asymmetry beyond the configured threshold. Computed
// alongside, and independent of, the directional classification.
func (c *Classifier) imbalanced(row timeline.Row) bool {
	ratio, ok := row.Metrics[session.MetricIMAImbalance].Float64()
	if !ok {
		return false
	}
	return math.Abs(ratio) > c.imbalanceThreshold
}
