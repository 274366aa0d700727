package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run describes one experiment invocation
type Run struct {
	RunID      string    `json:"run_id"`
	Symbol     string    `json:"symbol"`
	Percent    float64   `json:"percent"`
	P          int       `json:"p"`
	Q          int       `json:"q"`
	MAWindow   int       `json:"ma_window"`
	Start      time.Time `json:"start"`
	Boundary   time.Time `json:"boundary"`
	End        time.Time `json:"end"`
	TrainRows  int       `json:"train_rows"`
	TestRows   int       `json:"test_rows"`
	ConfigHash string    `json:"config_hash"`
	CreatedAt  time.Time `json:"created_at"`
}

// Prediction is one model's prediction for one test date
type Prediction struct {
	Model     string    `json:"model"`
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// NewRunID returns a fresh experiment run identifier
func NewRunID() string {
	return uuid.NewString()
}

// ConfigHash returns a short stable digest of any JSON-encodable config
func ConfigHash(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}
