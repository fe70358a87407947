package session

import "sort"

// Raw metric column names, in the fixed input column order. Names match
// the source table headers so that output artifacts line up with what the
// performance staff already read.
const (
	MetricDuration      = "Duration"
	MetricTotalDistance = "Total Distance(m)"
	MetricPlayerLoad    = "Total Player Load"
	MetricAcc2          = "Acc 2m/s2 Total Effort"
	MetricAcc3          = "Acc 3m/s2 Total Effort"
	MetricDec2          = "Dec 2m/s2 Total Effort"
	MetricDec3          = "Dec 3m/s2 Total Effort"
	MetricHighIntensity = "High Intensity Distance(m)"
	MetricSprint        = "Sprint Distance(m)"
	MetricMaxVelocity   = "Maximum Velocity(m/s)"
	MetricIMALeft       = "IMA COD(left)"
	MetricIMARight      = "IMA COD(right)"
)

// Derived metric names.
const (
	MetricLoadPerMinute     = "Player Load Per Minute"
	MetricDistancePerMinute = "Distance Per Minute"
	MetricEffortPerMinute   = "Effort Per Minute"
	MetricIMAImbalance      = "IMA Imbalance"
	MetricIMALeftShare      = "IMA Left %"
	MetricIMARightShare     = "IMA Right %"
)

// Risk category names.
const (
	CategoryVolume    = "Volume"
	CategoryIntensity = "Intensity"
	CategoryAgility   = "Agility"
	CategoryIMA       = "IMA"
)

// RawMetrics lists every raw metric column in input order.
func RawMetrics() []string {
	return []string{
		MetricDuration,
		MetricTotalDistance,
		MetricPlayerLoad,
		MetricAcc2,
		MetricAcc3,
		MetricDec2,
		MetricDec3,
		MetricHighIntensity,
		MetricSprint,
		MetricMaxVelocity,
		MetricIMALeft,
		MetricIMARight,
	}
}

// DerivedMetrics lists the metrics recomputed from raw values at every
// granularity.
func DerivedMetrics() []string {
	return []string{
		MetricLoadPerMinute,
		MetricDistancePerMinute,
		MetricEffortPerMinute,
		MetricIMAImbalance,
		MetricIMALeftShare,
		MetricIMARightShare,
	}
}

// DefaultCategories maps each risk category to the metrics scored under
// it. The mapping is configuration; this is the canonical default.
func DefaultCategories() map[string][]string {
	return map[string][]string{
		CategoryVolume: {
			MetricDuration,
			MetricTotalDistance,
			MetricPlayerLoad,
		},
		CategoryIntensity: {
			MetricLoadPerMinute,
			MetricDistancePerMinute,
			MetricEffortPerMinute,
			MetricHighIntensity,
			MetricSprint,
		},
		CategoryAgility: {
			MetricAcc2,
			MetricAcc3,
			MetricDec2,
			MetricDec3,
		},
		CategoryIMA: {
			MetricIMALeft,
			MetricIMARight,
		},
	}
}

// TrackedMetrics returns the deduplicated union of all category metrics,
// in category order. These are the metrics the EWMA/ACWR engine smooths.
func TrackedMetrics(categories map[string][]string) []string {
	order := []string{CategoryVolume, CategoryIntensity, CategoryAgility, CategoryIMA}
	seen := make(map[string]bool)
	var tracked []string
	for _, cat := range order {
		for _, m := range categories[cat] {
			if !seen[m] {
				seen[m] = true
				tracked = append(tracked, m)
			}
		}
	}
	// Categories beyond the canonical four still contribute.
	for _, cat := range extraCategories(categories) {
		for _, m := range categories[cat] {
			if !seen[m] {
				seen[m] = true
				tracked = append(tracked, m)
			}
		}
	}
	return tracked
}

// CategoryNames returns category names in presentation order: the
// canonical four first, any extras sorted after.
func CategoryNames(categories map[string][]string) []string {
	var names []string
	for _, cat := range []string{CategoryVolume, CategoryIntensity, CategoryAgility, CategoryIMA} {
		if _, ok := categories[cat]; ok {
			names = append(names, cat)
		}
	}
	return append(names, extraCategories(categories)...)
}

func extraCategories(categories map[string][]string) []string {
	var extra []string
	for cat := range categories {
		switch cat {
		case CategoryVolume, CategoryIntensity, CategoryAgility, CategoryIMA:
			continue
		}
		extra = append(extra, cat)
	}
	sort.Strings(extra)
	return extra
}
