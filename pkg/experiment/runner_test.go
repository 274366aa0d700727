package experiment

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sobolyok/risk-project/pkg/chart"
	"github.com/Sobolyok/risk-project/pkg/config"
	"github.com/Sobolyok/risk-project/pkg/dataset"
	"github.com/Sobolyok/risk-project/pkg/feature"
	"github.com/Sobolyok/risk-project/pkg/logger"
	"github.com/Sobolyok/risk-project/pkg/metrics"
	"github.com/Sobolyok/risk-project/pkg/model"
	"github.com/Sobolyok/risk-project/pkg/regress"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// cyclicSeries oscillates with a ~31 day period so 2% falls keep recurring
func cyclicSeries(t *testing.T, days int) *model.Series {
	t.Helper()
	start := date(2019, 1, 1)
	dates := make([]time.Time, days)
	values := make([]float64, days)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
		values[i] = 100 + 10*math.Sin(float64(i)/5) + 0.05*float64(i)
	}
	s, err := model.NewSeries("TEST", dates, values)
	require.NoError(t, err)
	return s
}

func testSettings() Settings {
	return Settings{
		Features: feature.Config{P: 3, Q: 2, MAWindow: 3},
		Percent:  0.02,
		Start:    date(2019, 1, 1),
		Boundary: date(2019, 9, 1),
		End:      date(2019, 10, 1),
		Models: []regress.ModelSpec{
			{Kind: regress.KindLinear, Params: map[string]interface{}{"fit_intercept": false}},
			{Name: "FastRidge", Kind: regress.KindRidge, Params: map[string]interface{}{"alpha": 1.0}},
		},
	}
}

type fakeRenderer struct {
	figures []chart.Figure
	err     error
}

func (f *fakeRenderer) Render(fig chart.Figure) error {
	f.figures = append(f.figures, fig)
	return f.err
}

type fakeSink struct {
	runs   []*model.Run
	scores []metrics.Score
	preds  []model.Prediction
	err    error
}

func (f *fakeSink) SaveRun(ctx context.Context, run *model.Run, scores []metrics.Score, preds []model.Prediction) error {
	f.runs = append(f.runs, run)
	f.scores = scores
	f.preds = preds
	return f.err
}

func (f *fakeSink) PublishRun(ctx context.Context, run *model.Run, scores []metrics.Score, preds []model.Prediction) error {
	return f.SaveRun(ctx, run, scores, preds)
}

func TestRunPrintsScoresPerModel(t *testing.T) {
	var out bytes.Buffer
	runner := NewRunner(testSettings(), WithOutput(&out), WithLogger(logger.Nop()))

	report, err := runner.Run(context.Background(), cyclicSeries(t, 300))
	require.NoError(t, err)

	lines := strings.Split(out.String(), "\n")
	require.Len(t, lines, 7) // 2 models x (train, test, blank) + trailing ""
	assert.True(t, strings.HasPrefix(lines[0], "LinearRegression train day event prediction MAE: "))
	assert.True(t, strings.HasPrefix(lines[1], "LinearRegression test day event prediction MAE: "))
	assert.Equal(t, "", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "FastRidge train day event prediction MAE: "))
	assert.Contains(t, lines[4], ", R2-score: ")

	require.Len(t, report.Results, 2)
	assert.Equal(t, "LinearRegression", report.Results[0].Name)
	assert.Equal(t, "FastRidge", report.Results[1].Name)
	assert.Equal(t, report.Results[1].Test.String(), lines[4])
}

func TestRunSplitsByDate(t *testing.T) {
	s := testSettings()
	runner := NewRunner(s, WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()))

	report, err := runner.Run(context.Background(), cyclicSeries(t, 300))
	require.NoError(t, err)

	require.NotEmpty(t, report.TestDates)
	assert.Len(t, report.TestTarget, len(report.TestDates))
	for _, res := range report.Results {
		assert.Len(t, res.TestPreds, len(report.TestDates))
	}
	for _, d := range report.TestDates {
		assert.False(t, d.Before(s.Boundary))
		assert.True(t, d.Before(s.End))
	}
	for _, v := range report.TestTarget {
		assert.False(t, math.IsNaN(v))
		assert.GreaterOrEqual(t, v, 1.0)
	}

	assert.Equal(t, "TEST", report.Run.Symbol)
	assert.NotEmpty(t, report.Run.RunID)
	assert.Equal(t, len(report.TestDates), report.Run.TestRows)
	assert.Greater(t, report.Run.TrainRows, 200)
}

func TestRunRendersAndDelivers(t *testing.T) {
	renderer := &fakeRenderer{}
	sink := &fakeSink{}
	pub := &fakeSink{}
	runner := NewRunner(testSettings(),
		WithOutput(&bytes.Buffer{}),
		WithLogger(logger.Nop()),
		WithRenderer(renderer),
		WithScoreSink(sink),
		WithPublisher(pub),
		WithConfigHash("abc"),
	)

	report, err := runner.Run(context.Background(), cyclicSeries(t, 300))
	require.NoError(t, err)

	require.Len(t, renderer.figures, 1)
	fig := renderer.figures[0]
	require.Len(t, fig.Lines, 3)
	assert.Equal(t, chart.TrueLabel, fig.Lines[2].Name)
	assert.Equal(t, "Days to fall by 2% relative to current day", fig.Title)
	assert.NoError(t, fig.Validate())

	require.Len(t, sink.runs, 1)
	assert.Equal(t, "abc", sink.runs[0].ConfigHash)
	assert.Len(t, sink.scores, 4)
	assert.Len(t, sink.preds, 2*len(report.TestDates))
	assert.Len(t, pub.runs, 1)
}

func TestRunSinkFailureDoesNotFailRun(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	runner := NewRunner(testSettings(), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()), WithScoreSink(sink))

	_, err := runner.Run(context.Background(), cyclicSeries(t, 300))
	assert.NoError(t, err)
	assert.Len(t, sink.runs, 1)
}

func TestRunRendererFailureFailsRun(t *testing.T) {
	renderer := &fakeRenderer{err: errors.New("no display")}
	runner := NewRunner(testSettings(), WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop()), WithRenderer(renderer))

	_, err := runner.Run(context.Background(), cyclicSeries(t, 300))
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	var out bytes.Buffer
	runner := NewRunner(testSettings(), WithOutput(&out), WithLogger(logger.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, cyclicSeries(t, 300))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestRunErrors(t *testing.T) {
	series := cyclicSeries(t, 300)

	t.Run("unknown model", func(t *testing.T) {
		s := testSettings()
		s.Models = []regress.ModelSpec{{Kind: "Perceptron"}}
		_, err := NewRunner(s, WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop())).Run(context.Background(), series)
		assert.Error(t, err)
	})

	t.Run("empty test split", func(t *testing.T) {
		s := testSettings()
		s.Boundary = date(2020, 1, 1)
		s.End = date(2020, 2, 1)
		_, err := NewRunner(s, WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop())).Run(context.Background(), series)
		assert.ErrorIs(t, err, dataset.ErrEmptySplit)
	})

	t.Run("invalid percent", func(t *testing.T) {
		s := testSettings()
		s.Percent = 1.5
		_, err := NewRunner(s, WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop())).Run(context.Background(), series)
		assert.Error(t, err)
	})

	t.Run("no models", func(t *testing.T) {
		s := testSettings()
		s.Models = nil
		_, err := NewRunner(s, WithOutput(&bytes.Buffer{}), WithLogger(logger.Nop())).Run(context.Background(), series)
		assert.Error(t, err)
	})
}

func TestReportBestAndPredictions(t *testing.T) {
	d := date(2019, 10, 1)
	report := &Report{
		Results: []ModelResult{
			{Name: "A", Test: metrics.Score{MSE: 4}, TestPreds: []float64{1, 2}},
			{Name: "B", Test: metrics.Score{MSE: 1}, TestPreds: []float64{3, 4}},
		},
		TestDates:  []time.Time{d, d.AddDate(0, 0, 1)},
		TestTarget: []float64{2, 3},
	}

	best, ok := report.Best()
	require.True(t, ok)
	assert.Equal(t, "B", best.Name)

	preds := report.Predictions()
	require.Len(t, preds, 4)
	assert.Equal(t, model.Prediction{Model: "B", Date: d.AddDate(0, 0, 1), Actual: 3, Predicted: 4}, preds[3])

	_, ok = (&Report{}).Best()
	assert.False(t, ok)
}

func TestSettingsFromDefaultConfig(t *testing.T) {
	s, err := SettingsFromConfig(config.Default())
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestBuildDatasetKeepsMissingRows(t *testing.T) {
	series := cyclicSeries(t, 60)
	ds, target, err := BuildDataset(series, feature.Config{P: 3, Q: 2, MAWindow: 3}, 0.02)
	require.NoError(t, err)

	assert.Equal(t, series.Len(), ds.Len())
	assert.Len(t, target.Values, series.Len())
	assert.True(t, math.IsNaN(ds.Rows[0][0]))
	assert.Equal(t, model.TargetName, ds.Columns[len(ds.Columns)-1])
}
