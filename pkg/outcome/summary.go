package outcome

import (
	"fmt"
	"math"
	"sort"

	"github.com/Sobolyok/risk-project/pkg/model"
)

// Summary holds distribution statistics of a days-to-fall target
type Summary struct {
	Resolved int
	Missing  int
	Mean     float64
	P10      float64
	P50      float64
	P90      float64
	Max      float64
}

// Summarize aggregates the resolved values of a target column
func Summarize(target *model.TargetColumn) Summary {
	var resolved []float64
	for _, v := range target.Values {
		if !math.IsNaN(v) {
			resolved = append(resolved, v)
		}
	}

	s := Summary{
		Resolved: len(resolved),
		Missing:  len(target.Values) - len(resolved),
	}
	if len(resolved) == 0 {
		return s
	}

	sort.Float64s(resolved)
	s.Mean = mean(resolved)
	s.P10 = percentile(resolved, 10)
	s.P50 = percentile(resolved, 50)
	s.P90 = percentile(resolved, 90)
	s.Max = resolved[len(resolved)-1]
	return s
}

// mean calculates the arithmetic mean
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// percentile calculates the p-th percentile (p in 0-100)
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Linear interpolation method
	rank := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return sorted[lower]
	}

	fraction := rank - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}

// String returns a formatted string representation
func (s Summary) String() string {
	return fmt.Sprintf(
		"Resolved: %d | Missing: %d | Mean: %.2f | P10: %.1f | P50: %.1f | P90: %.1f | Max: %.0f days",
		s.Resolved, s.Missing, s.Mean, s.P10, s.P50, s.P90, s.Max,
	)
}
