package model

import (
	"math"
	"time"
)

// DateLayout is the calendar date format used throughout configs, CSVs and output
const DateLayout = "2006-01-02"

// TargetName is the default name of the days-to-fall target column
const TargetName = "days_to_fall_relative_to_current_day"

// FeatureTable maps each date to a fixed-width numeric vector.
// Missing values are NaN.
type FeatureTable struct {
	Dates   []time.Time `json:"dates"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// Width returns the number of feature columns
func (t *FeatureTable) Width() int {
	return len(t.Columns)
}

// TargetColumn maps each date to the number of days until a threshold
// crossing, NaN when no crossing happens within the series.
type TargetColumn struct {
	Name   string      `json:"name"`
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// Resolved reports whether the target at index i is present
func (c *TargetColumn) Resolved(i int) bool {
	return !math.IsNaN(c.Values[i])
}

// Dataset is a feature table with the target appended as the last column
type Dataset struct {
	Dates   []time.Time `json:"dates"`
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Features returns every column but the last, row by row
func (d *Dataset) Features() [][]float64 {
	out := make([][]float64, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[:len(row)-1]
	}
	return out
}

// Target returns the last column
func (d *Dataset) Target() []float64 {
	out := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[len(row)-1]
	}
	return out
}

// FeatureColumns returns the feature column names
func (d *Dataset) FeatureColumns() []string {
	if len(d.Columns) == 0 {
		return nil
	}
	return d.Columns[:len(d.Columns)-1]
}

// Slice returns rows [i0, i1) sharing the underlying storage
func (d *Dataset) Slice(i0, i1 int) *Dataset {
	return &Dataset{
		Dates:   d.Dates[i0:i1],
		Columns: d.Columns,
		Rows:    d.Rows[i0:i1],
	}
}

// Split is a date-boundary partition of a dataset
type Split struct {
	Train *Dataset
	Test  *Dataset
}
