package data

import (
	"context"
	"time"

	"github.com/Sobolyok/risk-project/pkg/model"
)

// CandleProvider defines the interface for fetching historical daily candles
type CandleProvider interface {
	// FetchCandles retrieves candles for symbol with start <= date <= end.
	// A zero start or end leaves that side open.
	// Returns candles ordered by date (oldest first).
	FetchCandles(ctx context.Context, symbol string, start, end time.Time) ([]model.Candle, error)
}

// LoadSeries fetches candles and converts them into a close-price series
func LoadSeries(ctx context.Context, p CandleProvider, symbol string, start, end time.Time) (*model.Series, error) {
	candles, err := p.FetchCandles(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	return model.SeriesFromCandles(symbol, candles)
}

// MemoryProvider implements CandleProvider with in-memory storage
type MemoryProvider struct {
	candles []model.Candle
}

// NewMemoryProvider creates a new in-memory candle provider
func NewMemoryProvider(candles []model.Candle) *MemoryProvider {
	return &MemoryProvider{
		candles: candles,
	}
}

// AddCandles adds candles to the provider
func (p *MemoryProvider) AddCandles(candles []model.Candle) {
	p.candles = append(p.candles, candles...)
}

// FetchCandles retrieves candles within the specified date range
func (p *MemoryProvider) FetchCandles(ctx context.Context, symbol string, start, end time.Time) ([]model.Candle, error) {
	return filterCandles(p.candles, symbol, start, end), nil
}

func filterCandles(candles []model.Candle, symbol string, start, end time.Time) []model.Candle {
	var result []model.Candle
	for _, c := range candles {
		if !start.IsZero() && c.Date.Before(start) {
			continue
		}
		if !end.IsZero() && c.Date.After(end) {
			continue
		}
		if symbol != "" && c.Symbol != "" && c.Symbol != symbol {
			continue
		}
		result = append(result, c)
	}
	return result
}
