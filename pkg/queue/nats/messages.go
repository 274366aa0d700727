package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sobolyok/risk-project/pkg/metrics"
	"github.com/Sobolyok/risk-project/pkg/model"
)

// Subject constants
const (
	SubjectScoreWrite = "dayfall.scores.write"
)

// ScoreReportMsg carries one finished experiment run
type ScoreReportMsg struct {
	Run         *model.Run         `json:"run"`
	Scores      []metrics.Score    `json:"scores"`
	Predictions []model.Prediction `json:"predictions"`
}

// Validate checks that the message can be persisted
func (m *ScoreReportMsg) Validate() error {
	if m.Run == nil || m.Run.RunID == "" {
		return fmt.Errorf("score report without run id")
	}
	if len(m.Scores) == 0 {
		return fmt.Errorf("score report %s has no scores", m.Run.RunID)
	}
	return nil
}

// Encode serializes a message to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeScoreReport deserializes a ScoreReportMsg from JSON bytes
func DecodeScoreReport(data []byte) (*ScoreReportMsg, error) {
	var msg ScoreReportMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ScorePublisher publishes finished runs to the score subject
type ScorePublisher struct {
	client *Client
}

// NewScorePublisher creates a publisher on top of a connected client
func NewScorePublisher(client *Client) *ScorePublisher {
	return &ScorePublisher{client: client}
}

// PublishRun encodes and publishes one run report
func (p *ScorePublisher) PublishRun(ctx context.Context, run *model.Run, scores []metrics.Score, preds []model.Prediction) error {
	data, err := Encode(&ScoreReportMsg{Run: run, Scores: scores, Predictions: preds})
	if err != nil {
		return fmt.Errorf("failed to encode score report: %w", err)
	}
	return p.client.Publish(ctx, SubjectScoreWrite, data)
}
