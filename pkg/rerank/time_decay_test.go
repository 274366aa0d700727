package rerank

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sobolyok/risk-project/pkg/store/milvus"
)

var asOf = time.Date(2019, 10, 31, 0, 0, 0, 0, time.UTC)

func analog(id string, score float32, daysAgo int, daysToFall float32) milvus.SearchResult {
	return milvus.SearchResult{
		RowID:      id,
		Score:      score,
		Date:       asOf.AddDate(0, 0, -daysAgo),
		DaysToFall: daysToFall,
	}
}

func TestRerankPrefersRecentAnalogs(t *testing.T) {
	r := NewReranker(DefaultTimeDecayConfig())
	ranked := r.Rerank([]milvus.SearchResult{
		analog("old", 0.95, 700, 2),
		analog("recent", 0.90, 10, 4),
	}, asOf)

	require.Len(t, ranked, 2)
	assert.Equal(t, "recent", ranked[0].RowID)
	assert.InDelta(t, math.Exp(-0.002*10), ranked[0].TimeWeight, 1e-9)
	assert.Equal(t, float32(0.90), ranked[0].OriginalScore)
}

func TestRerankFutureAnalogHasFullWeight(t *testing.T) {
	r := NewReranker(DefaultTimeDecayConfig())
	ranked := r.Rerank([]milvus.SearchResult{analog("future", 0.5, -3, 1)}, asOf)
	assert.Equal(t, 1.0, ranked[0].TimeWeight)
}

func TestSegmentWeights(t *testing.T) {
	r := NewReranker(SegmentConfig())
	ranked := r.Rerank([]milvus.SearchResult{
		analog("a", 1, 30, 1),
		analog("b", 1, 200, 1),
		analog("c", 1, 1000, 1),
	}, asOf)

	assert.Equal(t, []float64{1.0, 0.7, 0.4},
		[]float64{ranked[0].TimeWeight, ranked[1].TimeWeight, ranked[2].TimeWeight})
}

func TestTopNAndFilter(t *testing.T) {
	r := NewReranker(SegmentConfig())
	results := []milvus.SearchResult{
		analog("a", 0.9, 10, 1),
		analog("b", 0.8, 10, 1),
		analog("c", 0.9, 1000, 1),
	}

	top := r.TopN(results, asOf, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].RowID)
	assert.Equal(t, "b", top[1].RowID)

	assert.Len(t, r.TopN(results, asOf, 10), 3)
	assert.Len(t, FilterByMinScore(r.Rerank(results, asOf), 0.5), 2)
}

func TestExpectedDaysToFall(t *testing.T) {
	expected, ok := ExpectedDaysToFall([]RankedResult{
		{SearchResult: milvus.SearchResult{DaysToFall: 2}, FinalScore: 0.75},
		{SearchResult: milvus.SearchResult{DaysToFall: 6}, FinalScore: 0.25},
		{SearchResult: milvus.SearchResult{DaysToFall: milvus.Unresolved}, FinalScore: 1},
		{SearchResult: milvus.SearchResult{DaysToFall: 9}, FinalScore: -0.5},
	})
	require.True(t, ok)
	assert.InDelta(t, 3.0, expected, 1e-12)

	_, ok = ExpectedDaysToFall(nil)
	assert.False(t, ok)
}
