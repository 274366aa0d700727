// Package experiment runs the days-to-fall regression experiment: it builds
// the ARMA feature table and target, splits by date, fits every configured
// model and reports train and test scores.
package experiment

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/Sobolyok/risk-project/pkg/chart"
	"github.com/Sobolyok/risk-project/pkg/dataset"
	"github.com/Sobolyok/risk-project/pkg/feature"
	"github.com/Sobolyok/risk-project/pkg/logger"
	"github.com/Sobolyok/risk-project/pkg/metrics"
	"github.com/Sobolyok/risk-project/pkg/model"
	"github.com/Sobolyok/risk-project/pkg/outcome"
	"github.com/Sobolyok/risk-project/pkg/regress"
)

// Renderer draws the report chart
type Renderer interface {
	Render(fig chart.Figure) error
}

// ScoreSink persists a finished run
type ScoreSink interface {
	SaveRun(ctx context.Context, run *model.Run, scores []metrics.Score, preds []model.Prediction) error
}

// Publisher announces a finished run
type Publisher interface {
	PublishRun(ctx context.Context, run *model.Run, scores []metrics.Score, preds []model.Prediction) error
}

// Runner executes the experiment for a series
type Runner struct {
	settings   Settings
	out        io.Writer
	log        *logger.Logger
	renderer   Renderer
	sink       ScoreSink
	publisher  Publisher
	configHash string
	now        func() time.Time
}

// Option configures a Runner
type Option func(*Runner)

// WithOutput sets where score lines are printed (default stdout)
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithRenderer enables chart rendering
func WithRenderer(rd Renderer) Option {
	return func(r *Runner) { r.renderer = rd }
}

// WithScoreSink enables run persistence
func WithScoreSink(s ScoreSink) Option {
	return func(r *Runner) { r.sink = s }
}

// WithPublisher enables run publishing
func WithPublisher(p Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithConfigHash records a digest of the configuration on the run
func WithConfigHash(hash string) Option {
	return func(r *Runner) { r.configHash = hash }
}

// NewRunner creates a runner
func NewRunner(settings Settings, opts ...Option) *Runner {
	r := &Runner{
		settings: settings,
		out:      os.Stdout,
		log:      logger.Get(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildDataset joins the ARMA features of series with its days-to-fall target.
// Rows are kept even when a value is missing.
func BuildDataset(series *model.Series, fc feature.Config, percent float64) (*model.Dataset, *model.TargetColumn, error) {
	features, err := feature.BuildARMATable(series, fc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build features: %w", err)
	}
	target, err := outcome.DaysToFall(series, percent)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build target: %w", err)
	}
	ds, err := dataset.Join(features, target)
	if err != nil {
		return nil, nil, err
	}
	return ds, target, nil
}

// Run fits every configured model and returns the report. Failures of the
// optional sink or publisher are logged and do not fail the run.
func (r *Runner) Run(ctx context.Context, series *model.Series) (*Report, error) {
	s := r.settings
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	joined, target, err := BuildDataset(series, s.Features, s.Percent)
	if err != nil {
		return nil, err
	}
	clean := dataset.Since(dataset.DropMissing(joined), s.Start)

	split, err := dataset.SplitAt(clean, s.Boundary, s.End)
	if err != nil {
		return nil, err
	}

	summary := outcome.Summarize(target)
	r.log.Infow("Dataset ready",
		"symbol", series.Symbol,
		"rows", series.Len(),
		"clean_rows", clean.Len(),
		"train_rows", split.Train.Len(),
		"test_rows", split.Test.Len(),
		"target", summary.String(),
	)

	xTrain := regress.NewMatrix(split.Train.Features())
	yTrain := split.Train.Target()
	xTest := regress.NewMatrix(split.Test.Features())
	yTest := split.Test.Target()

	report := &Report{
		Run: model.Run{
			RunID:      model.NewRunID(),
			Symbol:     series.Symbol,
			Percent:    s.Percent,
			P:          s.Features.P,
			Q:          s.Features.Q,
			MAWindow:   s.Features.MAWindow,
			Start:      s.Start,
			Boundary:   s.Boundary,
			End:        s.End,
			TrainRows:  split.Train.Len(),
			TestRows:   split.Test.Len(),
			ConfigHash: r.configHash,
			CreatedAt:  r.now().UTC(),
		},
		TestDates:  split.Test.Dates,
		TestTarget: yTest,
		Summary:    summary,
	}

	for _, spec := range s.Models {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := r.fitOne(spec, xTrain, yTrain, xTest, yTest)
		if err != nil {
			return nil, err
		}

		fmt.Fprintln(r.out, res.Train)
		fmt.Fprintln(r.out, res.Test)
		fmt.Fprintln(r.out)

		report.Results = append(report.Results, res)
	}

	if r.renderer != nil {
		if err := r.renderer.Render(report.Figure()); err != nil {
			return nil, err
		}
	}

	r.deliver(ctx, report)
	return report, nil
}

func (r *Runner) fitOne(spec regress.ModelSpec, xTrain mat.Matrix, yTrain []float64, xTest mat.Matrix, yTest []float64) (ModelResult, error) {
	name := spec.DisplayName()
	m, err := regress.New(spec)
	if err != nil {
		return ModelResult{}, err
	}

	start := time.Now()
	if err := m.Fit(xTrain, yTrain); err != nil {
		return ModelResult{}, fmt.Errorf("%s: fit: %w", name, err)
	}
	trainPred, err := m.Predict(xTrain)
	if err != nil {
		return ModelResult{}, fmt.Errorf("%s: predict train: %w", name, err)
	}
	testPred, err := m.Predict(xTest)
	if err != nil {
		return ModelResult{}, fmt.Errorf("%s: predict test: %w", name, err)
	}

	trainScore, err := metrics.Evaluate(name, metrics.TrainLabel, yTrain, trainPred)
	if err != nil {
		return ModelResult{}, err
	}
	testScore, err := metrics.Evaluate(name, metrics.TestLabel, yTest, testPred)
	if err != nil {
		return ModelResult{}, err
	}

	r.log.Debugw("Model fitted", "model", name, "elapsed", time.Since(start))
	return ModelResult{Name: name, Train: trainScore, Test: testScore, TestPreds: testPred}, nil
}

func (r *Runner) deliver(ctx context.Context, report *Report) {
	if r.sink == nil && r.publisher == nil {
		return
	}
	scores := report.Scores()
	preds := report.Predictions()

	if r.sink != nil {
		if err := r.sink.SaveRun(ctx, &report.Run, scores, preds); err != nil {
			r.log.Warnw("Failed to save run", "run_id", report.Run.RunID, "error", err)
		} else {
			r.log.Infow("Run saved", "run_id", report.Run.RunID)
		}
	}
	if r.publisher != nil {
		if err := r.publisher.PublishRun(ctx, &report.Run, scores, preds); err != nil {
			r.log.Warnw("Failed to publish run", "run_id", report.Run.RunID, "error", err)
		} else {
			r.log.Infow("Run published", "run_id", report.Run.RunID)
		}
	}
}
