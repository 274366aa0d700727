package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sobolyok/risk-project/pkg/chart"
	"github.com/Sobolyok/risk-project/pkg/config"
	"github.com/Sobolyok/risk-project/pkg/data"
	"github.com/Sobolyok/risk-project/pkg/experiment"
	"github.com/Sobolyok/risk-project/pkg/logger"
	"github.com/Sobolyok/risk-project/pkg/model"
	"github.com/Sobolyok/risk-project/pkg/queue/nats"
	"github.com/Sobolyok/risk-project/pkg/store/duckdb"
)

// Flags override individual configuration values
type Flags struct {
	ConfigPath string
	CSVPath    string
	Symbol     string
	ChartPath  string
	DuckDBPath string
	NATSUrl    string
	NoChart    bool
}

func main() {
	flags := parseFlags()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		logger.Get().Fatalw("Failed to load config", "error", err)
	}
	applyFlags(cfg, flags)

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Env); err != nil {
		logger.Get().Fatalw("Failed to initialize logger", "error", err)
	}
	defer logger.Sync()
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("Invalid configuration", "error", err)
	}

	settings, err := experiment.SettingsFromConfig(cfg)
	if err != nil {
		log.Fatalw("Invalid split", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []experiment.Option{experiment.WithLogger(log)}

	if hash, err := model.ConfigHash(cfg); err == nil {
		opts = append(opts, experiment.WithConfigHash(hash))
	}

	if !flags.NoChart && cfg.Chart.Output != "" {
		opts = append(opts, experiment.WithRenderer(&chart.FileRenderer{
			Path:   cfg.Chart.Output,
			Width:  cfg.Chart.Width,
			Height: cfg.Chart.Height,
		}))
	}

	var provider data.CandleProvider
	if cfg.Data.CSVPath != "" {
		provider = data.NewCSVProvider(cfg.Data.CSVPath, data.DefaultCSVOptions(cfg.Data.Symbol))
	}

	if cfg.Storage.DuckDBPath != "" {
		duckClient, err := duckdb.NewClient(cfg.Storage.DuckDBPath)
		if err != nil {
			log.Fatalw("Failed to connect to DuckDB", "path", cfg.Storage.DuckDBPath, "error", err)
		}
		defer duckClient.Close()

		if err := duckdb.InitializeSchema(duckClient); err != nil {
			log.Fatalw("Failed to initialize schema", "error", err)
		}

		priceRepo := duckdb.NewPriceRepo(duckClient)
		if provider != nil {
			candles, err := provider.FetchCandles(ctx, cfg.Data.Symbol, time.Time{}, time.Time{})
			if err != nil {
				log.Fatalw("Failed to load candles", "error", err)
			}
			if err := priceRepo.InsertBatch(ctx, candles); err != nil {
				log.Fatalw("Failed to store prices", "error", err)
			}
			log.Infow("Prices stored", "symbol", cfg.Data.Symbol, "days", len(candles))
		} else {
			provider = priceRepo
		}

		opts = append(opts, experiment.WithScoreSink(duckdb.NewScoreRepo(duckClient)))
	}

	if provider == nil {
		log.Fatalw("No data source: set data.csv_path or storage.duckdb_path")
	}

	if cfg.NATS.URL != "" {
		natsCfg := nats.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		natsCfg.StreamName = cfg.NATS.StreamName

		natsClient, err := nats.NewClient(natsCfg)
		if err != nil {
			log.Fatalw("Failed to connect to NATS", "url", cfg.NATS.URL, "error", err)
		}
		defer natsClient.Close()

		if err := natsClient.CreateStream(ctx, []string{nats.SubjectScoreWrite}); err != nil {
			log.Fatalw("Failed to create stream", "error", err)
		}
		opts = append(opts, experiment.WithPublisher(nats.NewScorePublisher(natsClient)))
	}

	series, err := data.LoadSeries(ctx, provider, cfg.Data.Symbol, time.Time{}, time.Time{})
	if err != nil {
		log.Fatalw("Failed to load series", "symbol", cfg.Data.Symbol, "error", err)
	}
	log.Infow("Series loaded", "symbol", series.Symbol, "days", series.Len())

	report, err := experiment.NewRunner(settings, opts...).Run(ctx, series)
	if err != nil {
		log.Fatalw("Experiment failed", "error", err)
	}

	if best, ok := report.Best(); ok {
		log.Infow("Experiment finished",
			"run_id", report.Run.RunID,
			"best_model", best.Name,
			"best_test_mse", best.Test.MSE,
		)
	}
	if !flags.NoChart && cfg.Chart.Output != "" {
		log.Infow("Chart written", "path", cfg.Chart.Output)
	}
}

func parseFlags() Flags {
	f := Flags{}

	flag.StringVar(&f.ConfigPath, "config", "", "Path to config file (yaml, json or toml)")
	flag.StringVar(&f.CSVPath, "csv", "", "Daily price CSV (overrides data.csv_path)")
	flag.StringVar(&f.Symbol, "symbol", "", "Symbol (overrides data.symbol)")
	flag.StringVar(&f.ChartPath, "chart", "", "Chart output file (overrides chart.output)")
	flag.StringVar(&f.DuckDBPath, "duckdb", "", "DuckDB file path (overrides storage.duckdb_path)")
	flag.StringVar(&f.NATSUrl, "nats", "", "NATS server URL (overrides nats.url)")
	flag.BoolVar(&f.NoChart, "no-chart", false, "Skip chart rendering")

	flag.Parse()

	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}

	return f
}

func applyFlags(cfg *config.Config, f Flags) {
	if f.CSVPath != "" {
		cfg.Data.CSVPath = f.CSVPath
	}
	if f.Symbol != "" {
		cfg.Data.Symbol = f.Symbol
	}
	if f.ChartPath != "" {
		cfg.Chart.Output = f.ChartPath
	}
	if f.DuckDBPath != "" {
		cfg.Storage.DuckDBPath = f.DuckDBPath
	}
	if f.NATSUrl != "" {
		cfg.NATS.URL = f.NATSUrl
	}
}
