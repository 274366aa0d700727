package feature

import (
	"errors"
	"fmt"

	"github.com/Sobolyok/risk-project/pkg/model"
)

// ErrInvalidOrder is returned for unusable lag or window parameters
var ErrInvalidOrder = errors.New("invalid ARMA table parameters")

// Config holds the shape of an autoregressive / moving-average feature table
type Config struct {
	P        int // autoregressive lags (price at t-1..t-P)
	Q        int // moving-average lags (MA at t-1..t-Q)
	MAWindow int // trailing window of the moving average
}

// DefaultConfig returns the lag structure used by the daily experiment
func DefaultConfig() Config {
	return Config{
		P:        50,
		Q:        50,
		MAWindow: 10,
	}
}

// Validate checks that the configuration can produce at least one column
func (c Config) Validate() error {
	switch {
	case c.P < 0 || c.Q < 0:
		return fmt.Errorf("%w: negative lag order p=%d q=%d", ErrInvalidOrder, c.P, c.Q)
	case c.P+c.Q == 0:
		return fmt.Errorf("%w: p and q are both zero", ErrInvalidOrder)
	case c.Q > 0 && c.MAWindow < 1:
		return fmt.Errorf("%w: ma_window must be positive, got %d", ErrInvalidOrder, c.MAWindow)
	}
	return nil
}

// Warmup returns the number of leading rows that contain missing values
func (c Config) Warmup() int {
	warmup := c.P
	if c.Q > 0 && c.Q+c.MAWindow-1 > warmup {
		warmup = c.Q + c.MAWindow - 1
	}
	return warmup
}

// BuildARMATable builds lag_1..lag_p and ma_lag_1..ma_lag_q columns for every
// date of the series. Entries that reach before the series start are NaN.
func BuildARMATable(series *model.Series, cfg Config) (*model.FeatureTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prices := series.Values()
	n := len(prices)

	columns := make([][]float64, 0, cfg.P+cfg.Q)
	names := make([]string, 0, cfg.P+cfg.Q)

	for k := 1; k <= cfg.P; k++ {
		columns = append(columns, Lag(prices, k))
		names = append(names, fmt.Sprintf("lag_%d", k))
	}

	if cfg.Q > 0 {
		ma := MovingAverage(prices, cfg.MAWindow)
		for k := 1; k <= cfg.Q; k++ {
			columns = append(columns, Lag(ma, k))
			names = append(names, fmt.Sprintf("ma_lag_%d", k))
		}
	}

	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(columns))
		for j, col := range columns {
			row[j] = col[i]
		}
		rows[i] = row
	}

	return &model.FeatureTable{
		Dates:   series.Dates(),
		Columns: names,
		Rows:    rows,
	}, nil
}
