package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfectPrediction(t *testing.T) {
	y := []float64{1, 2, 3}

	assert.Equal(t, 0.0, MAE(y, y))
	assert.Equal(t, 0.0, MSE(y, y))
	assert.Equal(t, 1.0, R2(y, y))
}

func TestKnownValues(t *testing.T) {
	yTrue := []float64{3, -0.5, 2, 7}
	yPred := []float64{2.5, 0, 2, 8}

	assert.InDelta(t, 0.5, MAE(yTrue, yPred), 1e-12)
	assert.InDelta(t, 0.375, MSE(yTrue, yPred), 1e-12)
	assert.InDelta(t, 0.9486081370449679, R2(yTrue, yPred), 1e-12)
}

func TestR2ConstantTarget(t *testing.T) {
	y := []float64{4, 4, 4}
	assert.Equal(t, 1.0, R2(y, []float64{4, 4, 4}))
	assert.Equal(t, 0.0, R2(y, []float64{4, 5, 4}))
}

func TestEmptyAndMismatch(t *testing.T) {
	assert.True(t, math.IsNaN(MAE(nil, nil)))
	short, long := []float64{1}, []float64{1, 2}
	assert.True(t, math.IsNaN(MAE(short, long)))
	assert.True(t, math.IsNaN(MSE(short, long)))
	assert.True(t, math.IsNaN(R2(long, short)))

	_, err := Evaluate("m", TestLabel, []float64{1}, nil)
	assert.Error(t, err)
	_, err = Evaluate("m", TestLabel, nil, nil)
	assert.Error(t, err)
}

func TestScoreString(t *testing.T) {
	s, err := Evaluate("Ridge", TrainLabel, []float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, "Ridge train day event prediction MAE: 0.0000 MSE: 0.0000, R2-score: 1.0000", s.String())
}
