package milvus

import (
	"testing"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2019, 10, 1, 0, 0, 0, 0, time.UTC)

func TestRowID(t *testing.T) {
	d := &RowData{Symbol: "AMZN", Date: testDate}
	assert.Equal(t, "AMZN:2019-10-01", d.RowID())
}

func TestBuildColumns(t *testing.T) {
	rows := []*RowData{
		{Symbol: "AMZN", Date: testDate, Embedding: []float32{0.1, 0.2}, DaysToFall: 3},
		{Symbol: "AMZN", Date: testDate.AddDate(0, 0, 1), Embedding: []float32{0.3, 0.4}, DaysToFall: Unresolved},
	}

	columns, err := buildColumns(rows)
	require.NoError(t, err)
	require.Len(t, columns, 5)
	assert.Equal(t, "row_id", columns[0].Name())
	assert.Equal(t, 2, columns[0].Len())

	vec, ok := columns[1].(*entity.ColumnFloatVector)
	require.True(t, ok)
	assert.Equal(t, 2, vec.Dim())
}

func TestBuildColumnsDimensionMismatch(t *testing.T) {
	rows := []*RowData{
		{Symbol: "A", Date: testDate, Embedding: []float32{1, 2}},
		{Symbol: "A", Date: testDate.AddDate(0, 0, 1), Embedding: []float32{1}},
	}
	_, err := buildColumns(rows)
	assert.Error(t, err)

	_, err = buildColumns([]*RowData{{Symbol: "A", Date: testDate}})
	assert.Error(t, err)
}

func TestAnalogFilter(t *testing.T) {
	assert.Equal(t, "days_to_fall >= 0", AnalogFilter("", time.Time{}))
	assert.Equal(t,
		`days_to_fall >= 0 && symbol == "AMZN" && date < 1569888000`,
		AnalogFilter("AMZN", testDate))
}

func TestParseResults(t *testing.T) {
	res := client.SearchResult{
		ResultCount: 2,
		Scores:      []float32{0.9, 0.8},
		Fields: []entity.Column{
			entity.NewColumnVarChar("row_id", []string{"AMZN:2019-10-01", "AMZN:2019-09-30"}),
			entity.NewColumnVarChar("symbol", []string{"AMZN", "AMZN"}),
			entity.NewColumnInt64("date", []int64{testDate.Unix(), testDate.AddDate(0, 0, -1).Unix()}),
			entity.NewColumnFloat("days_to_fall", []float32{2, 5}),
		},
	}

	out := parseResults(res)
	require.Len(t, out, 2)
	assert.Equal(t, "AMZN:2019-09-30", out[1].RowID)
	assert.Equal(t, float32(0.8), out[1].Score)
	assert.True(t, out[0].Date.Equal(testDate))
	assert.Equal(t, float32(5), out[1].DaysToFall)
}
