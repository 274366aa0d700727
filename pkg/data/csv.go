package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Sobolyok/risk-project/pkg/model"
)

// dateLayouts are tried in order when parsing the date column
var dateLayouts = []string{
	model.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// CSVOptions holds options for CSV loading
type CSVOptions struct {
	DateColumn  string // Column name for dates (default: first column)
	CloseColumn string // Column name for closing prices (default: "Close")
	Symbol      string // Symbol stamped on every candle
}

// DefaultCSVOptions returns options for Yahoo-style daily exports
// (Date,Open,High,Low,Close,Adj Close,Volume)
func DefaultCSVOptions(symbol string) CSVOptions {
	return CSVOptions{
		CloseColumn: "Close",
		Symbol:      symbol,
	}
}

// CSVProvider implements CandleProvider for CSV files
type CSVProvider struct {
	filePath string
	opts     CSVOptions
	candles  []model.Candle
	loaded   bool
}

// NewCSVProvider creates a new CSV-based candle provider
func NewCSVProvider(filePath string, opts CSVOptions) *CSVProvider {
	return &CSVProvider{
		filePath: filePath,
		opts:     opts,
	}
}

// loadIfNeeded loads the CSV file if not already loaded
func (p *CSVProvider) loadIfNeeded() error {
	if p.loaded {
		return nil
	}

	file, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	candles, err := ReadCSV(file, p.opts)
	if err != nil {
		return fmt.Errorf("%s: %w", p.filePath, err)
	}

	p.candles = candles
	p.loaded = true
	return nil
}

// FetchCandles retrieves candles within the specified date range
func (p *CSVProvider) FetchCandles(ctx context.Context, symbol string, start, end time.Time) ([]model.Candle, error) {
	if err := p.loadIfNeeded(); err != nil {
		return nil, err
	}
	return filterCandles(p.candles, symbol, start, end), nil
}

// ReadCSV parses daily candles from r. Rows whose close is empty or "null"
// are skipped; any other unparsable value is an error.
func ReadCSV(r io.Reader, opts CSVOptions) ([]model.Candle, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := make(map[string]int)
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}

	dateIdx := 0
	if opts.DateColumn != "" {
		idx, ok := colMap[opts.DateColumn]
		if !ok {
			return nil, fmt.Errorf("date column %q not found", opts.DateColumn)
		}
		dateIdx = idx
	}

	closeName := opts.CloseColumn
	if closeName == "" {
		closeName = "Close"
	}
	closeIdx, ok := colMap[closeName]
	if !ok {
		return nil, fmt.Errorf("close column %q not found", closeName)
	}

	var candles []model.Candle
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		closeStr := strings.TrimSpace(record[closeIdx])
		if closeStr == "" || strings.EqualFold(closeStr, "null") {
			continue
		}

		candle, err := parseRecord(record, colMap, dateIdx, closeIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		candle.Symbol = opts.Symbol
		candles = append(candles, candle)
	}

	return candles, nil
}

// parseRecord parses a CSV record into a Candle
func parseRecord(record []string, colMap map[string]int, dateIdx, closeIdx int) (model.Candle, error) {
	getValue := func(name string) string {
		if idx, ok := colMap[name]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	date, err := parseDate(strings.TrimSpace(record[dateIdx]))
	if err != nil {
		return model.Candle{}, err
	}

	closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[closeIdx]), 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("invalid close: %w", err)
	}
	if math.IsNaN(closePrice) || math.IsInf(closePrice, 0) {
		return model.Candle{}, fmt.Errorf("invalid close: %v is not finite", closePrice)
	}

	// optional columns default to zero
	open, _ := strconv.ParseFloat(getValue("Open"), 64)
	high, _ := strconv.ParseFloat(getValue("High"), 64)
	low, _ := strconv.ParseFloat(getValue("Low"), 64)
	adjClose, _ := strconv.ParseFloat(getValue("Adj Close"), 64)
	volume, _ := strconv.ParseFloat(getValue("Volume"), 64)

	return model.Candle{
		Date:     date,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		AdjClose: adjClose,
		Volume:   volume,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
