package feature

import (
	"math"

	"github.com/markcheno/go-talib"
)

// MovingAverage returns the trailing mean of window values at every index.
// The first window-1 entries have no full window and are NaN.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window < 1 || len(values) < window {
		fill(out, math.NaN())
		return out
	}

	sma := talib.Sma(values, window)
	copy(out, sma)
	fill(out[:window-1], math.NaN())
	return out
}

// Lag shifts values forward by k steps; the first k entries become NaN
func Lag(values []float64, k int) []float64 {
	out := make([]float64, len(values))
	if k >= len(values) {
		fill(out, math.NaN())
		return out
	}
	fill(out[:k], math.NaN())
	copy(out[k:], values[:len(values)-k])
	return out
}

func fill(values []float64, v float64) {
	for i := range values {
		values[i] = v
	}
}
