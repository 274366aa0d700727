package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Split labels used in printed scores
const (
	TrainLabel = "train day event prediction"
	TestLabel  = "test day event prediction"
)

// MAE is the mean absolute error. Like MSE and R2 it returns NaN for
// empty or mismatched inputs.
func MAE(yTrue, yPred []float64) float64 {
	if !scorable(yTrue, yPred) {
		return math.NaN()
	}
	return floats.Distance(yTrue, yPred, 1) / float64(len(yTrue))
}

// MSE is the mean squared error
func MSE(yTrue, yPred []float64) float64 {
	if !scorable(yTrue, yPred) {
		return math.NaN()
	}
	d := floats.Distance(yTrue, yPred, 2)
	return d * d / float64(len(yTrue))
}

// R2 is the coefficient of determination. For a constant yTrue it is 1
// when the prediction is exact and 0 otherwise.
func R2(yTrue, yPred []float64) float64 {
	if !scorable(yTrue, yPred) {
		return math.NaN()
	}
	if floats.Max(yTrue) == floats.Min(yTrue) {
		if floats.Equal(yTrue, yPred) {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(yPred, yTrue, nil)
}

func scorable(yTrue, yPred []float64) bool {
	return len(yTrue) > 0 && len(yTrue) == len(yPred)
}

// Score holds the error metrics of one model on one split
type Score struct {
	Model string  `json:"model"`
	Split string  `json:"split"`
	MAE   float64 `json:"mae"`
	MSE   float64 `json:"mse"`
	R2    float64 `json:"r2"`
}

// Evaluate scores predictions against the true target
func Evaluate(model, split string, yTrue, yPred []float64) (Score, error) {
	if len(yTrue) != len(yPred) {
		return Score{}, fmt.Errorf("%s %s: %d targets, %d predictions", model, split, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return Score{}, fmt.Errorf("%s %s: nothing to score", model, split)
	}
	return Score{
		Model: model,
		Split: split,
		MAE:   MAE(yTrue, yPred),
		MSE:   MSE(yTrue, yPred),
		R2:    R2(yTrue, yPred),
	}, nil
}

// String returns the console line for the score
func (s Score) String() string {
	return fmt.Sprintf("%s %s MAE: %.4f MSE: %.4f, R2-score: %.4f", s.Model, s.Split, s.MAE, s.MSE, s.R2)
}
