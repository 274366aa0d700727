package milvus

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sobolyok/risk-project/pkg/model"
)

func TestRowsFromDataset(t *testing.T) {
	nan := math.NaN()
	d := time.Date(2019, 10, 1, 0, 0, 0, 0, time.UTC)
	ds := &model.Dataset{
		Dates:   []time.Time{d, d.AddDate(0, 0, 1), d.AddDate(0, 0, 2)},
		Columns: []string{"lag_1", "lag_2", model.TargetName},
		Rows: [][]float64{
			{nan, 1, 3},
			{1, 2, 2},
			{2, 4, nan},
		},
	}

	rows := RowsFromDataset("AMZN", ds)
	require.Len(t, rows, 2)
	assert.Equal(t, "AMZN:2019-10-02", rows[0].RowID())
	assert.Equal(t, float32(2), rows[0].DaysToFall)
	assert.Equal(t, float32(Unresolved), rows[1].DaysToFall)
	assert.Len(t, rows[1].Embedding, 2)
}
