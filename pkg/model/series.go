package model

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrNotIncreasing is returned when series dates are not strictly increasing
var ErrNotIncreasing = errors.New("series dates must be strictly increasing")

// ErrNonFinite is returned when a series price is NaN or infinite
var ErrNonFinite = errors.New("series prices must be finite")

// Series is an ordered sequence of (date, price) pairs.
// Dates are strictly increasing and there is exactly one value per date.
type Series struct {
	Symbol string
	dates  []time.Time
	values []float64
}

// NewSeries creates a Series, copying the inputs
func NewSeries(symbol string, dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("series length mismatch: %d dates, %d values", len(dates), len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %v on %s", ErrNonFinite, v, dates[i].Format(DateLayout))
		}
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("%w: %s follows %s", ErrNotIncreasing,
				dates[i].Format(DateLayout), dates[i-1].Format(DateLayout))
		}
	}

	s := &Series{
		Symbol: symbol,
		dates:  make([]time.Time, len(dates)),
		values: make([]float64, len(values)),
	}
	copy(s.dates, dates)
	copy(s.values, values)
	return s, nil
}

// SeriesFromCandles builds a close-price series from candles ordered by date
func SeriesFromCandles(symbol string, candles []Candle) (*Series, error) {
	dates := make([]time.Time, len(candles))
	values := make([]float64, len(candles))
	for i, c := range candles {
		dates[i] = c.Date
		values[i] = c.Close
	}
	return NewSeries(symbol, dates, values)
}

// Len returns the number of observations
func (s *Series) Len() int {
	return len(s.values)
}

// At returns the date and price at index i
func (s *Series) At(i int) (time.Time, float64) {
	return s.dates[i], s.values[i]
}

// Dates returns a copy of the series dates
func (s *Series) Dates() []time.Time {
	out := make([]time.Time, len(s.dates))
	copy(out, s.dates)
	return out
}

// Values returns a copy of the series prices
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// IndexAtOrAfter returns the first index whose date is >= t, or Len() if none
func (s *Series) IndexAtOrAfter(t time.Time) int {
	return sort.Search(len(s.dates), func(i int) bool {
		return !s.dates[i].Before(t)
	})
}
