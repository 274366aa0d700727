package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Sobolyok/risk-project/pkg/config"
	"github.com/Sobolyok/risk-project/pkg/data"
	"github.com/Sobolyok/risk-project/pkg/experiment"
	"github.com/Sobolyok/risk-project/pkg/logger"
	"github.com/Sobolyok/risk-project/pkg/model"
	"github.com/Sobolyok/risk-project/pkg/rerank"
	"github.com/Sobolyok/risk-project/pkg/store/duckdb"
	"github.com/Sobolyok/risk-project/pkg/store/milvus"
)

// Flags holds analog search options
type Flags struct {
	ConfigPath string
	CSVPath    string
	DuckDBPath string
	MilvusAddr string
	Symbol     string
	Date       string
	TopK       int
	Gap        int
	MinScore   float64
	Segments   bool
	SkipIndex  bool
	Reset      bool
}

func main() {
	flags, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Get().Fatalw("Failed to parse flags", "error", err)
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		logger.Get().Fatalw("Failed to load config", "error", err)
	}
	applyFlags(cfg, flags)

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Env); err != nil {
		logger.Get().Fatalw("Failed to initialize logger", "error", err)
	}
	defer logger.Sync()
	log := logger.Get().With("symbol", cfg.Data.Symbol)

	if cfg.Storage.MilvusAddr == "" {
		log.Fatalw("Milvus address required: set -milvus or storage.milvus_addr")
	}

	ctx := context.Background()

	// Prices come from DuckDB when a database is given, from the CSV otherwise
	var provider data.CandleProvider
	if cfg.Storage.DuckDBPath != "" {
		duckClient, err := duckdb.NewClient(cfg.Storage.DuckDBPath)
		if err != nil {
			log.Fatalw("Failed to connect to DuckDB", "error", err)
		}
		defer duckClient.Close()
		provider = duckdb.NewPriceRepo(duckClient)
	} else {
		provider = data.NewCSVProvider(cfg.Data.CSVPath, data.DefaultCSVOptions(cfg.Data.Symbol))
	}

	series, err := data.LoadSeries(ctx, provider, cfg.Data.Symbol, time.Time{}, time.Time{})
	if err != nil {
		log.Fatalw("Failed to load series", "error", err)
	}

	fc := cfg.FeatureConfig()
	ds, _, err := experiment.BuildDataset(series, fc, cfg.Target.Percent)
	if err != nil {
		log.Fatalw("Failed to build dataset", "error", err)
	}

	rows := milvus.RowsFromDataset(cfg.Data.Symbol, ds)
	if len(rows) == 0 {
		log.Fatalw("No complete feature rows", "days", series.Len(), "warmup", fc.Warmup())
	}

	query, err := pickQuery(rows, flags.Date)
	if err != nil {
		log.Fatalw("Invalid query date", "error", err)
	}
	log.Infow("Query row", "date", query.Date.Format(model.DateLayout))

	milvusCfg := milvus.DefaultConfig()
	milvusCfg.Address = cfg.Storage.MilvusAddr
	milvusClient, err := milvus.NewClient(ctx, milvusCfg)
	if err != nil {
		log.Fatalw("Failed to connect to Milvus", "error", err)
	}
	defer milvusClient.Close()

	collection := milvus.DefaultCollectionConfig(fc.P + fc.Q)

	if flags.Reset && flags.SkipIndex {
		log.Fatalw("-reset leaves an empty collection; drop -skip-index")
	}

	if !flags.SkipIndex {
		create := milvusClient.CreateCollection
		if flags.Reset {
			create = milvusClient.ResetCollection
			log.Infow("Rebuilding collection", "collection", collection.Name)
		}
		if err := create(ctx, collection); err != nil {
			log.Fatalw("Failed to create collection", "error", err)
		}
		if err := milvusClient.InsertBatch(ctx, collection.Name, rows); err != nil {
			log.Fatalw("Failed to index rows", "error", err)
		}
		if err := milvusClient.Flush(ctx, collection.Name); err != nil {
			log.Fatalw("Failed to flush collection", "error", err)
		}
		log.Infow("Rows indexed", "rows", len(rows), "dim", collection.Dimension)
	}

	if err := milvusClient.LoadCollection(ctx, collection.Name); err != nil {
		log.Fatalw("Failed to load collection", "error", err)
	}
	defer func() {
		if err := milvusClient.ReleaseCollection(ctx, collection.Name); err != nil {
			log.Warnw("Failed to release collection", "error", err)
		}
	}()

	// analogs must end before the query window starts to avoid overlapping lags
	gap := flags.Gap
	if gap < 0 {
		gap = fc.P
	}
	filter := milvus.AnalogFilter(cfg.Data.Symbol, query.Date.AddDate(0, 0, -gap))

	results, err := milvusClient.Search(ctx, collection.Name, query.Embedding, filter, 3*flags.TopK)
	if err != nil {
		log.Fatalw("Search failed", "error", err)
	}

	ranked := rankAnalogs(results, query.Date, flags)

	fmt.Printf("%-5s %-12s %-10s %-10s %-10s\n", "Rank", "Date", "Score", "Weight", "DaysToFall")
	fmt.Println("--------------------------------------------------")
	for i, r := range ranked {
		fmt.Printf("%-5d %-12s %-10.4f %-10.4f %-10.0f\n",
			i+1, r.Date.Format(model.DateLayout), r.OriginalScore, r.TimeWeight, r.DaysToFall)
	}

	if expected, ok := rerank.ExpectedDaysToFall(ranked); ok {
		fmt.Printf("\nExpected days to fall by %.4g%% after %s: %.2f\n",
			cfg.Target.Percent*100, query.Date.Format(model.DateLayout), expected)
	} else {
		fmt.Println("\nNo resolved analogs found")
	}
}

// applyFlags overrides config values with the flags that were set
func applyFlags(cfg *config.Config, f Flags) {
	if f.CSVPath != "" {
		cfg.Data.CSVPath = f.CSVPath
	}
	if f.DuckDBPath != "" {
		cfg.Storage.DuckDBPath = f.DuckDBPath
	}
	if f.MilvusAddr != "" {
		cfg.Storage.MilvusAddr = f.MilvusAddr
	}
	if f.Symbol != "" {
		cfg.Data.Symbol = f.Symbol
	}
}

// rankAnalogs reranks search hits by time decay, keeps the top f.TopK and
// drops those scoring under f.MinScore
func rankAnalogs(results []milvus.SearchResult, asOf time.Time, f Flags) []rerank.RankedResult {
	decay := rerank.DefaultTimeDecayConfig()
	if f.Segments {
		decay = rerank.SegmentConfig()
	}
	ranked := rerank.NewReranker(decay).TopN(results, asOf, f.TopK)
	if f.MinScore > 0 {
		ranked = rerank.FilterByMinScore(ranked, f.MinScore)
	}
	return ranked
}

// pickQuery returns the row dated on date, or the latest row when date is empty
func pickQuery(rows []*milvus.RowData, date string) (*milvus.RowData, error) {
	if date == "" {
		return rows[len(rows)-1], nil
	}
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.Date.Equal(t) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no complete feature row on %s", date)
}

func parseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	f := Flags{}

	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.StringVar(&f.CSVPath, "csv", "", "Daily price CSV (overrides data.csv_path)")
	fs.StringVar(&f.DuckDBPath, "duckdb", "", "Read prices from DuckDB instead of CSV")
	fs.StringVar(&f.MilvusAddr, "milvus", "", "Milvus address (overrides storage.milvus_addr)")
	fs.StringVar(&f.Symbol, "symbol", "", "Symbol (overrides data.symbol)")
	fs.StringVar(&f.Date, "date", "", "Query date YYYY-MM-DD (default: latest row)")
	fs.IntVar(&f.TopK, "topk", 10, "Number of analogs to show")
	fs.IntVar(&f.Gap, "gap", -1, "Minimum days between analog and query (default: p)")
	fs.Float64Var(&f.MinScore, "min-score", 0, "Drop analogs whose decayed score is below this")
	fs.BoolVar(&f.Segments, "segments", false, "Use segment weights instead of exponential decay")
	fs.BoolVar(&f.SkipIndex, "skip-index", false, "Search the existing collection without re-indexing")
	fs.BoolVar(&f.Reset, "reset", false, "Drop and rebuild the feature_rows collection before indexing")

	err := fs.Parse(args)
	return f, err
}
