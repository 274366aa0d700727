package duckdb

import "fmt"

// Schema contains table creation statements for all required tables

// CreatePricesTable creates the daily prices fact table
const CreatePricesTable = `
CREATE TABLE IF NOT EXISTS prices (
    symbol VARCHAR NOT NULL,
    date DATE NOT NULL,
    open DOUBLE,
    high DOUBLE,
    low DOUBLE,
    close DOUBLE NOT NULL,
    adj_close DOUBLE,
    volume DOUBLE,
    PRIMARY KEY (symbol, date)
);
`

// CreateExperimentRunsTable creates the experiment runs index table
const CreateExperimentRunsTable = `
CREATE TABLE IF NOT EXISTS experiment_runs (
    run_id VARCHAR PRIMARY KEY,
    symbol VARCHAR NOT NULL,
    percent DOUBLE NOT NULL,
    p INTEGER NOT NULL,
    q INTEGER NOT NULL,
    ma_window INTEGER NOT NULL,
    start_date DATE,
    boundary_date DATE NOT NULL,
    end_date DATE NOT NULL,
    train_rows INTEGER,
    test_rows INTEGER,
    config_hash VARCHAR,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_symbol ON experiment_runs(symbol);
`

// CreateModelScoresTable creates the per-model metrics table
const CreateModelScoresTable = `
CREATE TABLE IF NOT EXISTS model_scores (
    run_id VARCHAR NOT NULL,
    model VARCHAR NOT NULL,
    split VARCHAR NOT NULL,
    mae DOUBLE,
    mse DOUBLE,
    r2 DOUBLE,
    PRIMARY KEY (run_id, model, split)
);
`

// CreateTestPredictionsTable creates the test predictions table
const CreateTestPredictionsTable = `
CREATE TABLE IF NOT EXISTS test_predictions (
    run_id VARCHAR NOT NULL,
    model VARCHAR NOT NULL,
    date DATE NOT NULL,
    actual DOUBLE,
    predicted DOUBLE,
    PRIMARY KEY (run_id, model, date)
);
`

// InitializeSchema creates all required tables
func InitializeSchema(c *Client) error {
	schemas := []string{
		CreatePricesTable,
		CreateExperimentRunsTable,
		CreateModelScoresTable,
		CreateTestPredictionsTable,
	}

	for _, schema := range schemas {
		if err := c.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with caution)
func DropAllTables(c *Client) error {
	tables := []string{"test_predictions", "model_scores", "experiment_runs", "prices"}
	for _, table := range tables {
		if err := c.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
