package feature

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// DefaultClipStd bounds embedding components to ±DefaultClipStd standard deviations
const DefaultClipStd = 3.0

// Embed converts one feature row into a scale-free vector for similarity search.
// Each component is z-scored against the row itself, clipped to ±clipStd and
// scaled into [-1, 1], so rows with the same shape at different price levels match.
func Embed(row []float64, clipStd float64) []float32 {
	if len(row) == 0 {
		return nil
	}
	if clipStd <= 0 {
		clipStd = DefaultClipStd
	}

	mean, variance := stat.PopMeanVariance(row, nil)
	std := math.Sqrt(variance)
	if std == 0 {
		std = 1
	}

	out := make([]float32, len(row))
	for i, v := range row {
		z := (v - mean) / std
		if z > clipStd {
			z = clipStd
		}
		if z < -clipStd {
			z = -clipStd
		}
		out[i] = float32(z / clipStd)
	}
	return out
}
