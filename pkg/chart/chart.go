// Package chart renders test-window predictions against the true target.
package chart

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Sobolyok/risk-project/pkg/model"
)

// TrueLabel is the legend entry of the observed target
const TrueLabel = "True"

// ErrNoData is returned when a figure has no dates or no lines
var ErrNoData = errors.New("chart: nothing to draw")

// Line is one named series aligned with the figure dates
type Line struct {
	Name   string
	Values []float64
}

// Figure describes a line chart over calendar dates
type Figure struct {
	Title  string
	YLabel string
	Dates  []time.Time
	Lines  []Line
}

// Title returns the chart title for a fall threshold given as a fraction
func Title(percent float64) string {
	pct := math.Round(percent*100*1e9) / 1e9
	return fmt.Sprintf("Days to fall by %s%% relative to current day",
		strconv.FormatFloat(pct, 'f', -1, 64))
}

// Validate checks that every line is aligned with the dates
func (f Figure) Validate() error {
	if len(f.Dates) == 0 || len(f.Lines) == 0 {
		return ErrNoData
	}
	for _, l := range f.Lines {
		if len(l.Values) != len(f.Dates) {
			return fmt.Errorf("chart: line %q has %d values for %d dates", l.Name, len(l.Values), len(f.Dates))
		}
	}
	return nil
}

// Plot builds the gonum plot for the figure
func (f Figure) Plot() (*plot.Plot, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = f.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = f.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: model.DateLayout}
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, l := range f.Lines {
		pts := make(plotter.XYs, len(f.Dates))
		for j, d := range f.Dates {
			pts[j].X = float64(d.Unix())
			pts[j].Y = l.Values[j]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("chart: line %q: %w", l.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		if l.Name == TrueLabel {
			line.Width = vg.Points(2.5)
		}

		p.Add(line)
		p.Legend.Add(l.Name, line)
	}

	return p, nil
}

// FileRenderer writes figures to an image file. The format follows the
// path extension (png, svg, pdf, ...).
type FileRenderer struct {
	Path   string
	Width  float64 // inches
	Height float64 // inches
}

// NewFileRenderer creates a renderer with the default 12x6 inch canvas
func NewFileRenderer(path string) *FileRenderer {
	return &FileRenderer{Path: path, Width: 12, Height: 6}
}

// Render draws the figure and saves it to Path
func (r *FileRenderer) Render(fig Figure) error {
	if filepath.Ext(r.Path) == "" {
		return fmt.Errorf("chart: output %q has no file extension", r.Path)
	}

	p, err := fig.Plot()
	if err != nil {
		return err
	}

	if err := p.Save(vg.Length(r.Width)*vg.Inch, vg.Length(r.Height)*vg.Inch, r.Path); err != nil {
		return fmt.Errorf("chart: failed to save %s: %w", r.Path, err)
	}
	return nil
}
