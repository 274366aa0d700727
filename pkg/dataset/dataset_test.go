package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sobolyok/risk-project/pkg/model"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sample() (*model.FeatureTable, *model.TargetColumn) {
	dates := []time.Time{
		day("2019-09-27"), day("2019-09-30"), day("2019-10-01"),
		day("2019-10-02"), day("2019-10-03"), day("2019-11-01"),
	}
	nan := math.NaN()
	features := &model.FeatureTable{
		Dates:   dates,
		Columns: []string{"lag_1", "ma_lag_1"},
		Rows: [][]float64{
			{nan, nan},
			{1, nan},
			{2, 1.5},
			{3, 2.5},
			{4, 3.5},
			{5, 4.5},
		},
	}
	target := &model.TargetColumn{
		Name:   model.TargetName,
		Dates:  dates,
		Values: []float64{1, 2, 3, 1, nan, 2},
	}
	return features, target
}

func TestJoin(t *testing.T) {
	features, target := sample()

	ds, err := Join(features, target)
	require.NoError(t, err)

	assert.Equal(t, []string{"lag_1", "ma_lag_1", model.TargetName}, ds.Columns)
	assert.Equal(t, []float64{2, 1.5, 3}, ds.Rows[2])
	assert.Equal(t, []string{"lag_1", "ma_lag_1"}, ds.FeatureColumns())
	assert.Equal(t, []float64{3, 2.5}, ds.Features()[3])
}

func TestJoinDateMismatch(t *testing.T) {
	features, target := sample()
	target.Dates = append([]time.Time(nil), target.Dates...)
	target.Dates[1] = day("2019-09-29")

	_, err := Join(features, target)
	assert.ErrorIs(t, err, ErrDateMismatch)

	target.Values = target.Values[:2]
	_, err = Join(features, target)
	assert.ErrorIs(t, err, ErrDateMismatch)
}

func TestDropMissing(t *testing.T) {
	features, target := sample()
	ds, err := Join(features, target)
	require.NoError(t, err)

	clean := DropMissing(ds)
	require.Equal(t, 3, clean.Len())
	for _, row := range clean.Rows {
		for _, v := range row {
			assert.False(t, math.IsNaN(v))
		}
	}
	assert.Equal(t, []time.Time{day("2019-10-01"), day("2019-10-02"), day("2019-11-01")}, clean.Dates)
}

func TestSince(t *testing.T) {
	features, target := sample()
	ds, err := Join(features, target)
	require.NoError(t, err)

	assert.Equal(t, ds, Since(ds, time.Time{}))
	assert.Equal(t, 4, Since(ds, day("2019-10-01")).Len())
	assert.Equal(t, 0, Since(ds, day("2020-01-01")).Len())
}

func TestSplitAt(t *testing.T) {
	features, target := sample()
	ds, err := Join(features, target)
	require.NoError(t, err)
	clean := DropMissing(ds)

	split, err := SplitAt(clean, day("2019-10-02"), day("2019-11-01"))
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day("2019-10-01")}, split.Train.Dates)
	assert.Equal(t, []time.Time{day("2019-10-02")}, split.Test.Dates)
	assert.Equal(t, []float64{3}, split.Train.Target())

	unbounded, err := SplitAt(clean, day("2019-10-02"), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, unbounded.Test.Len())

	// train ++ test keeps chronological order and never overlaps
	all := append(append([]time.Time(nil), unbounded.Train.Dates...), unbounded.Test.Dates...)
	assert.Equal(t, clean.Dates, all)
}

func TestSplitAtEmptySides(t *testing.T) {
	features, target := sample()
	ds, err := Join(features, target)
	require.NoError(t, err)
	clean := DropMissing(ds)

	_, err = SplitAt(clean, day("2019-01-01"), time.Time{})
	assert.ErrorIs(t, err, ErrEmptySplit)

	_, err = SplitAt(clean, day("2020-01-01"), time.Time{})
	assert.ErrorIs(t, err, ErrEmptySplit)

	_, err = SplitAt(clean, day("2019-10-02"), day("2019-10-01"))
	assert.Error(t, err)
}
