package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/Sobolyok/risk-project/pkg/config"
	"github.com/Sobolyok/risk-project/pkg/logger"
	"github.com/Sobolyok/risk-project/pkg/queue/nats"
	"github.com/Sobolyok/risk-project/pkg/store/duckdb"
)

// Config holds writer worker configuration
type Config struct {
	ConfigPath string
	NATSUrl    string
	DuckDBPath string
	Consumer   string
}

func main() {
	flags := parseFlags()

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		logger.Get().Fatalw("Failed to load config", "error", err)
	}
	if flags.NATSUrl != "" {
		cfg.NATS.URL = flags.NATSUrl
	}
	if flags.DuckDBPath != "" {
		cfg.Storage.DuckDBPath = flags.DuckDBPath
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Env); err != nil {
		logger.Get().Fatalw("Failed to initialize logger", "error", err)
	}
	defer logger.Sync()
	log := logger.Get()

	if cfg.NATS.URL == "" || cfg.Storage.DuckDBPath == "" {
		fmt.Println("Usage: writer -nats <url> -duckdb <path> [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log.Infow("Starting writer worker", "nats", cfg.NATS.URL, "duckdb", cfg.Storage.DuckDBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	duckClient, err := duckdb.NewClient(cfg.Storage.DuckDBPath)
	if err != nil {
		log.Fatalw("Failed to connect to DuckDB", "error", err)
	}
	defer duckClient.Close()

	if err := duckdb.InitializeSchema(duckClient); err != nil {
		log.Fatalw("Failed to initialize schema", "error", err)
	}

	scoreRepo := duckdb.NewScoreRepo(duckClient)

	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.StreamName = cfg.NATS.StreamName

	natsClient, err := nats.NewClient(natsCfg)
	if err != nil {
		log.Fatalw("Failed to connect to NATS", "error", err)
	}
	defer natsClient.Close()

	if err := natsClient.CreateStream(ctx, []string{nats.SubjectScoreWrite}); err != nil {
		log.Fatalw("Failed to create stream", "error", err)
	}

	consumer, err := natsClient.Subscribe(ctx, nats.SubjectScoreWrite, flags.Consumer, func(msg jetstream.Msg) error {
		report, err := nats.DecodeScoreReport(msg.Data())
		if err != nil {
			log.Errorw("Failed to decode score report", "error", err)
			return nats.Permanent(err)
		}

		if err := scoreRepo.SaveRun(ctx, report.Run, report.Scores, report.Predictions); err != nil {
			log.Errorw("Failed to save run", "run_id", report.Run.RunID, "error", err)
			return err
		}

		log.Infow("Run stored",
			"run_id", report.Run.RunID,
			"symbol", report.Run.Symbol,
			"scores", len(report.Scores),
			"predictions", len(report.Predictions),
		)
		return nil
	})
	if err != nil {
		log.Fatalw("Failed to subscribe to score writes", "error", err)
	}
	defer consumer.Stop()

	log.Info("Writer worker started, waiting for messages...")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down writer worker...")
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.ConfigPath, "config", "", "Path to config file")
	flag.StringVar(&cfg.NATSUrl, "nats", "", "NATS server URL (overrides nats.url)")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "", "DuckDB file path (overrides storage.duckdb_path)")
	flag.StringVar(&cfg.Consumer, "consumer", "score-writer", "Durable consumer name")

	flag.Parse()

	return cfg
}
