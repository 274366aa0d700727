package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func days(n int) []time.Time {
	start := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func TestNewSeriesCopiesInput(t *testing.T) {
	dates := days(3)
	values := []float64{1, 2, 3}
	s, err := NewSeries("AMZN", dates, values)
	require.NoError(t, err)

	values[0] = 100
	got := s.Values()
	assert.Equal(t, []float64{1, 2, 3}, got)

	got[1] = 100
	_, v := s.At(1)
	assert.Equal(t, 2.0, v)
}

func TestNewSeriesRejectsBadInput(t *testing.T) {
	_, err := NewSeries("", days(2), []float64{1})
	assert.Error(t, err)

	dates := days(3)
	dates[2] = dates[1]
	_, err = NewSeries("", dates, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNotIncreasing)

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = NewSeries("", days(3), []float64{1, v, 3})
		assert.ErrorIs(t, err, ErrNonFinite)
	}
}

func TestSeriesFromCandlesAndIndex(t *testing.T) {
	dates := days(3)
	s, err := SeriesFromCandles("AMZN", []Candle{
		{Date: dates[0], Close: 10},
		{Date: dates[2], Close: 12},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.IndexAtOrAfter(dates[1]))
	assert.Equal(t, 0, s.IndexAtOrAfter(dates[0]))
	assert.Equal(t, 2, s.IndexAtOrAfter(dates[2].AddDate(0, 0, 1)))
}

func TestDatasetColumns(t *testing.T) {
	ds := &Dataset{
		Dates:   days(2),
		Columns: []string{"lag_1", TargetName},
		Rows:    [][]float64{{1, 2}, {3, math.NaN()}},
	}

	assert.Equal(t, []string{"lag_1"}, ds.FeatureColumns())
	assert.Equal(t, [][]float64{{1}, {3}}, ds.Features())
	assert.True(t, math.IsNaN(ds.Target()[1]))
	assert.Equal(t, 1, ds.Slice(1, 2).Len())

	target := &TargetColumn{Values: []float64{1, math.NaN()}}
	assert.True(t, target.Resolved(0))
	assert.False(t, target.Resolved(1))
}

func TestCandleReturns(t *testing.T) {
	c := Candle{Open: 100, Close: 110}
	assert.InDelta(t, 0.1, c.Returns(), 1e-12)
	assert.Equal(t, 0.0, (&Candle{Close: 1}).Returns())
}
