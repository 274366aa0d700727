package duckdb

import (
	"context"
	"fmt"

	"github.com/Sobolyok/risk-project/pkg/metrics"
	"github.com/Sobolyok/risk-project/pkg/model"
)

// ScoreRepo handles model score and test prediction persistence
type ScoreRepo struct {
	client *Client
}

// NewScoreRepo creates a new score repository
func NewScoreRepo(client *Client) *ScoreRepo {
	return &ScoreRepo{client: client}
}

// SaveRun stores the run with its scores and predictions in one transaction
func (r *ScoreRepo) SaveRun(ctx context.Context, run *model.Run, scores []metrics.Score, preds []model.Prediction) error {
	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRun(ctx, tx, run); err != nil {
		return err
	}

	scoreStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO model_scores (run_id, model, split, mae, mse, r2)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, model, split) DO UPDATE SET
			mae = EXCLUDED.mae,
			mse = EXCLUDED.mse,
			r2 = EXCLUDED.r2
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer scoreStmt.Close()

	for _, s := range scores {
		if _, err := scoreStmt.ExecContext(ctx, run.RunID, s.Model, s.Split, s.MAE, s.MSE, s.R2); err != nil {
			return fmt.Errorf("failed to insert score: %w", err)
		}
	}

	predStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO test_predictions (run_id, model, date, actual, predicted)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (run_id, model, date) DO UPDATE SET
			actual = EXCLUDED.actual,
			predicted = EXCLUDED.predicted
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer predStmt.Close()

	for _, p := range preds {
		if _, err := predStmt.ExecContext(ctx, run.RunID, p.Model, p.Date, p.Actual, p.Predicted); err != nil {
			return fmt.Errorf("failed to insert prediction: %w", err)
		}
	}

	return tx.Commit()
}

// GetScores retrieves the scores of a run in insertion-independent order
func (r *ScoreRepo) GetScores(ctx context.Context, runID string) ([]metrics.Score, error) {
	rows, err := r.client.Query(ctx, `
		SELECT model, split, mae, mse, r2
		FROM model_scores
		WHERE run_id = ?
		ORDER BY model, split DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []metrics.Score
	for rows.Next() {
		var s metrics.Score
		if err := rows.Scan(&s.Model, &s.Split, &s.MAE, &s.MSE, &s.R2); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}

	return scores, rows.Err()
}

// GetPredictions retrieves the test predictions of one model in a run, oldest first
func (r *ScoreRepo) GetPredictions(ctx context.Context, runID, modelName string) ([]model.Prediction, error) {
	rows, err := r.client.Query(ctx, `
		SELECT model, date, actual, predicted
		FROM test_predictions
		WHERE run_id = ? AND model = ?
		ORDER BY date ASC
	`, runID, modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var preds []model.Prediction
	for rows.Next() {
		var p model.Prediction
		if err := rows.Scan(&p.Model, &p.Date, &p.Actual, &p.Predicted); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		preds = append(preds, p)
	}

	return preds, rows.Err()
}

// BestByTestMSE returns the model with the lowest test MSE in a run
func (r *ScoreRepo) BestByTestMSE(ctx context.Context, runID string) (metrics.Score, error) {
	var s metrics.Score
	row := r.client.QueryRow(ctx, `
		SELECT model, split, mae, mse, r2
		FROM model_scores
		WHERE run_id = ? AND split = ?
		ORDER BY mse ASC
		LIMIT 1
	`, runID, metrics.TestLabel)
	err := row.Scan(&s.Model, &s.Split, &s.MAE, &s.MSE, &s.R2)
	return s, err
}
