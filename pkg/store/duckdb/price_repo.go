package duckdb

import (
	"context"
	"fmt"
	"time"

	"github.com/Sobolyok/risk-project/pkg/model"
)

const upsertPrice = `
	INSERT INTO prices (symbol, date, open, high, low, close, adj_close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (symbol, date) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		adj_close = EXCLUDED.adj_close,
		volume = EXCLUDED.volume
`

// PriceRepo handles daily price persistence
type PriceRepo struct {
	client *Client
}

// NewPriceRepo creates a new price repository
func NewPriceRepo(client *Client) *PriceRepo {
	return &PriceRepo{client: client}
}

// InsertBatch upserts candles in a transaction
func (r *PriceRepo) InsertBatch(ctx context.Context, candles []model.Candle) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertPrice)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx,
			c.Symbol, c.Date, c.Open, c.High, c.Low, c.Close, c.AdjClose, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("failed to insert price %s %s: %w", c.Symbol, c.Date.Format(model.DateLayout), err)
		}
	}

	return tx.Commit()
}

// FetchCandles retrieves candles with start <= date <= end, oldest first.
// A zero bound leaves that side open. PriceRepo satisfies data.CandleProvider.
func (r *PriceRepo) FetchCandles(ctx context.Context, symbol string, start, end time.Time) ([]model.Candle, error) {
	query := `
		SELECT symbol, date, open, high, low, close, adj_close, volume
		FROM prices
		WHERE symbol = ?
	`
	args := []interface{}{symbol}
	if !start.IsZero() {
		query += " AND date >= ?"
		args = append(args, start)
	}
	if !end.IsZero() {
		query += " AND date <= ?"
		args = append(args, end)
	}
	query += " ORDER BY date ASC"

	rows, err := r.client.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var candles []model.Candle
	for rows.Next() {
		var c model.Candle
		var open, high, low, adjClose, volume interface{}

		err := rows.Scan(&c.Symbol, &c.Date, &open, &high, &low, &c.Close, &adjClose, &volume)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}

		c.Open = nullFloat(open)
		c.High = nullFloat(high)
		c.Low = nullFloat(low)
		c.AdjClose = nullFloat(adjClose)
		c.Volume = nullFloat(volume)
		candles = append(candles, c)
	}

	return candles, rows.Err()
}

// Count returns the number of stored days for a symbol
func (r *PriceRepo) Count(ctx context.Context, symbol string) (int64, error) {
	var count int64
	row := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM prices WHERE symbol = ?", symbol)
	err := row.Scan(&count)
	return count, err
}

func nullFloat(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}
