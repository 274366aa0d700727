package outcome

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/Sobolyok/risk-project/pkg/model"
)

// ErrInvalidPercent is returned for drop thresholds outside [0, 1)
var ErrInvalidPercent = errors.New("percent must be in [0, 1)")

// DaysToFall computes, for every date t, the smallest k >= 1 such that
// price(t+k) <= price(t) * (1 - percent). Dates with no such k before the
// series ends get NaN. A crossing on the same day never counts.
func DaysToFall(series *model.Series, percent float64) (*model.TargetColumn, error) {
	if err := validatePercent(percent); err != nil {
		return nil, err
	}

	values := daysToFall(series.Values(), percent)

	return &model.TargetColumn{
		Name:   model.TargetName,
		Dates:  series.Dates(),
		Values: values,
	}, nil
}

// DaysToFallScan is the direct forward scan, O(n^2) in the worst case
func DaysToFallScan(series *model.Series, percent float64) (*model.TargetColumn, error) {
	if err := validatePercent(percent); err != nil {
		return nil, err
	}

	values := daysToFallScan(series.Values(), percent)

	return &model.TargetColumn{
		Name:   model.TargetName,
		Dates:  series.Dates(),
		Values: values,
	}, nil
}

// daysToFall answers each date with a range-min table and a binary search.
// Dates with a non-finite price have no threshold and stay NaN; NaN prices
// ahead never count as a crossing.
func daysToFall(prices []float64, percent float64) []float64 {
	n := len(prices)
	values := make([]float64, n)
	mins := newMinTable(prices)

	for t := 0; t < n; t++ {
		values[t] = math.NaN()
		threshold := prices[t] * (1 - percent)
		if t+1 >= n || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
			continue
		}
		if mins.query(t+1, n-1) > threshold {
			continue
		}

		// min(prices[t+1..e]) is non-increasing in e, so the first e that
		// reaches the threshold is the first crossing day.
		lo, hi := t+1, n-1
		for lo < hi {
			mid := lo + (hi-lo)/2
			if mins.query(t+1, mid) <= threshold {
				hi = mid
			} else {
				lo = mid + 1
			}
		}
		values[t] = float64(lo - t)
	}
	return values
}

func daysToFallScan(prices []float64, percent float64) []float64 {
	values := make([]float64, len(prices))
	for t := range prices {
		values[t] = math.NaN()
		threshold := prices[t] * (1 - percent)
		if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
			continue
		}
		for k := 1; t+k < len(prices); k++ {
			if prices[t+k] <= threshold {
				values[t] = float64(k)
				break
			}
		}
	}
	return values
}

func validatePercent(percent float64) error {
	if math.IsNaN(percent) || percent < 0 || percent >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidPercent, percent)
	}
	return nil
}

// minTable is a sparse table answering range-minimum queries in O(1)
type minTable struct {
	levels [][]float64
}

func newMinTable(values []float64) *minTable {
	n := len(values)
	if n == 0 {
		return &minTable{}
	}

	// NaN never reaches a threshold, so it ranks above every price
	base := make([]float64, n)
	for i, v := range values {
		if math.IsNaN(v) {
			v = math.Inf(1)
		}
		base[i] = v
	}

	levels := [][]float64{base}
	for span := 2; span <= n; span *= 2 {
		prev := levels[len(levels)-1]
		half := span / 2
		cur := make([]float64, n-span+1)
		for i := range cur {
			cur[i] = math.Min(prev[i], prev[i+half])
		}
		levels = append(levels, cur)
	}

	return &minTable{levels: levels}
}

// query returns min(values[lo..hi]), both ends inclusive
func (m *minTable) query(lo, hi int) float64 {
	level := bits.Len(uint(hi-lo+1)) - 1
	span := 1 << level
	return math.Min(m.levels[level][lo], m.levels[level][hi-span+1])
}
