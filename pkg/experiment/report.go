package experiment

import (
	"time"

	"github.com/Sobolyok/risk-project/pkg/chart"
	"github.com/Sobolyok/risk-project/pkg/metrics"
	"github.com/Sobolyok/risk-project/pkg/model"
	"github.com/Sobolyok/risk-project/pkg/outcome"
)

// ModelResult holds one fitted model's scores and test predictions
type ModelResult struct {
	Name      string
	Train     metrics.Score
	Test      metrics.Score
	TestPreds []float64
}

// Report is the outcome of one run
type Report struct {
	Run        model.Run
	Results    []ModelResult // configuration order
	TestDates  []time.Time
	TestTarget []float64
	Summary    outcome.Summary // of the full target before cleaning
}

// Scores flattens train and test scores in print order
func (r *Report) Scores() []metrics.Score {
	out := make([]metrics.Score, 0, 2*len(r.Results))
	for _, res := range r.Results {
		out = append(out, res.Train, res.Test)
	}
	return out
}

// Predictions flattens the test predictions into records
func (r *Report) Predictions() []model.Prediction {
	out := make([]model.Prediction, 0, len(r.Results)*len(r.TestDates))
	for _, res := range r.Results {
		for i, d := range r.TestDates {
			out = append(out, model.Prediction{
				Model:     res.Name,
				Date:      d,
				Actual:    r.TestTarget[i],
				Predicted: res.TestPreds[i],
			})
		}
	}
	return out
}

// Best returns the result with the lowest test MSE
func (r *Report) Best() (ModelResult, bool) {
	if len(r.Results) == 0 {
		return ModelResult{}, false
	}
	best := r.Results[0]
	for _, res := range r.Results[1:] {
		if res.Test.MSE < best.Test.MSE {
			best = res
		}
	}
	return best, true
}

// Figure returns the chart of every model's test predictions plus the truth
func (r *Report) Figure() chart.Figure {
	lines := make([]chart.Line, 0, len(r.Results)+1)
	for _, res := range r.Results {
		lines = append(lines, chart.Line{Name: res.Name, Values: res.TestPreds})
	}
	lines = append(lines, chart.Line{Name: chart.TrueLabel, Values: r.TestTarget})

	return chart.Figure{
		Title:  chart.Title(r.Run.Percent),
		YLabel: "days",
		Dates:  r.TestDates,
		Lines:  lines,
	}
}
