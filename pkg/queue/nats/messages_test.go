package nats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sobolyok/risk-project/pkg/metrics"
	"github.com/Sobolyok/risk-project/pkg/model"
)

func TestDecodeScoreReport(t *testing.T) {
	data, err := Encode(&ScoreReportMsg{
		Run:    &model.Run{RunID: "run-1", Symbol: "AMZN", Percent: 0.02},
		Scores: []metrics.Score{{Model: "Ridge", Split: metrics.TestLabel, MSE: 4}},
	})
	require.NoError(t, err)

	msg, err := DecodeScoreReport(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", msg.Run.RunID)
	assert.Equal(t, 4.0, msg.Scores[0].MSE)
	assert.Empty(t, msg.Predictions)
}

func TestDecodeScoreReportRejectsIncomplete(t *testing.T) {
	cases := map[string]string{
		"not json":  "{",
		"no run":    `{"scores":[{"model":"Ridge"}]}`,
		"no run id": `{"run":{"symbol":"AMZN"},"scores":[{"model":"Ridge"}]}`,
		"no scores": `{"run":{"run_id":"x"}}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeScoreReport([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))

	base := errors.New("bad payload")
	err := Permanent(base)
	var perm *PermanentError
	require.True(t, errors.As(err, &perm))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "permanent: bad payload", err.Error())
}
