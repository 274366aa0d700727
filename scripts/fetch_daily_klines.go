package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Sobolyok/risk-project/pkg/logger"
	"github.com/Sobolyok/risk-project/pkg/model"
)

// Downloads daily Binance klines into the Date,Open,High,Low,Close,Adj Close,Volume
// layout read by data.CSVProvider.
func main() {
	symbol := flag.String("symbol", "BTCUSDT", "Trading symbol")
	start := flag.String("start", "2019-01-01", "First day to fetch (YYYY-MM-DD)")
	limit := flag.Int("limit", 1000, "Number of days to fetch (max 1000)")
	output := flag.String("output", "", "Output CSV file path")
	flag.Parse()

	log := logger.Get()

	if *output == "" {
		*output = filepath.Join("data", *symbol+".csv")
	}

	startTime, err := time.Parse(model.DateLayout, *start)
	if err != nil {
		log.Fatalw("Invalid start date", "start", *start, "error", err)
	}

	url := fmt.Sprintf("https://api.binance.com/api/v3/klines?symbol=%s&interval=1d&startTime=%d&limit=%d",
		*symbol, startTime.UnixMilli(), *limit)

	log.Infow("Fetching daily klines from Binance", "symbol", *symbol, "start", *start)

	resp, err := http.Get(url)
	if err != nil {
		log.Fatalw("Failed to fetch data", "error", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Fatalw("Unexpected response", "status", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalw("Failed to read response", "error", err)
	}

	var klines [][]interface{}
	if err := json.Unmarshal(body, &klines); err != nil {
		log.Fatalw("Failed to parse JSON", "error", err)
	}

	log.Infow("Fetched klines", "count", len(klines))

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		log.Fatalw("Failed to create output directory", "error", err)
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalw("Failed to create output file", "error", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	writer.Write([]string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"})

	for _, k := range klines {
		// [0] Open time (ms), [1] Open, [2] High, [3] Low, [4] Close, [5] Volume, ...
		openTime := time.UnixMilli(int64(k[0].(float64))).UTC()

		writer.Write([]string{
			openTime.Format(model.DateLayout),
			k[1].(string),
			k[2].(string),
			k[3].(string),
			k[4].(string),
			k[4].(string), // no adjustments on spot markets
			k[5].(string),
		})
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Fatalw("Failed to write CSV", "error", err)
	}

	log.Infow("Saved", "path", *output)
}
