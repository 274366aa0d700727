package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Sobolyok/risk-project/pkg/model"
)

var (
	// ErrDateMismatch is returned when features and target are not aligned
	ErrDateMismatch = errors.New("feature and target dates do not match")
	// ErrEmptySplit is returned when a date boundary leaves one side empty
	ErrEmptySplit = errors.New("split produced an empty partition")
)

// Join appends the target as the last column of the feature table
func Join(features *model.FeatureTable, target *model.TargetColumn) (*model.Dataset, error) {
	if len(features.Rows) != len(target.Values) || len(features.Dates) != len(target.Dates) {
		return nil, fmt.Errorf("%w: %d feature rows, %d target values",
			ErrDateMismatch, len(features.Rows), len(target.Values))
	}
	for i := range features.Dates {
		if !features.Dates[i].Equal(target.Dates[i]) {
			return nil, fmt.Errorf("%w at row %d", ErrDateMismatch, i)
		}
	}

	name := target.Name
	if name == "" {
		name = model.TargetName
	}

	columns := make([]string, 0, len(features.Columns)+1)
	columns = append(columns, features.Columns...)
	columns = append(columns, name)

	rows := make([][]float64, len(features.Rows))
	for i, row := range features.Rows {
		joined := make([]float64, 0, len(row)+1)
		joined = append(joined, row...)
		rows[i] = append(joined, target.Values[i])
	}

	dates := make([]time.Time, len(features.Dates))
	copy(dates, features.Dates)

	return &model.Dataset{Dates: dates, Columns: columns, Rows: rows}, nil
}

// DropMissing returns the rows of ds that contain no NaN
func DropMissing(ds *model.Dataset) *model.Dataset {
	out := &model.Dataset{Columns: ds.Columns}
	for i, row := range ds.Rows {
		if hasMissing(row) {
			continue
		}
		out.Dates = append(out.Dates, ds.Dates[i])
		out.Rows = append(out.Rows, row)
	}
	return out
}

func hasMissing(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Since keeps rows dated on or after start. A zero start keeps everything.
func Since(ds *model.Dataset, start time.Time) *model.Dataset {
	if start.IsZero() {
		return ds
	}
	return ds.Slice(indexAtOrAfter(ds.Dates, start), ds.Len())
}

// SplitAt partitions ds into train (date < boundary) and test
// (boundary <= date < end). A zero end leaves the test side unbounded.
func SplitAt(ds *model.Dataset, boundary, end time.Time) (model.Split, error) {
	if !end.IsZero() && !end.After(boundary) {
		return model.Split{}, fmt.Errorf("test end %s must be after boundary %s",
			end.Format(model.DateLayout), boundary.Format(model.DateLayout))
	}

	trainEnd := indexAtOrAfter(ds.Dates, boundary)
	testEnd := ds.Len()
	if !end.IsZero() {
		testEnd = indexAtOrAfter(ds.Dates, end)
	}

	split := model.Split{
		Train: ds.Slice(0, trainEnd),
		Test:  ds.Slice(trainEnd, testEnd),
	}
	if split.Train.Len() == 0 {
		return split, fmt.Errorf("%w: no train rows before %s", ErrEmptySplit, boundary.Format(model.DateLayout))
	}
	if split.Test.Len() == 0 {
		return split, fmt.Errorf("%w: no test rows from %s", ErrEmptySplit, boundary.Format(model.DateLayout))
	}
	return split, nil
}

// indexAtOrAfter finds the first index where dates[i] >= t using binary search
func indexAtOrAfter(dates []time.Time, t time.Time) int {
	return sort.Search(len(dates), func(i int) bool {
		return !dates[i].Before(t)
	})
}
