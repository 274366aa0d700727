package milvus

import (
	"math"

	"github.com/Sobolyok/risk-project/pkg/feature"
	"github.com/Sobolyok/risk-project/pkg/model"
)

// RowsFromDataset embeds every dataset row whose features are complete.
// The last column is the target; a missing target is stored as Unresolved.
func RowsFromDataset(symbol string, ds *model.Dataset) []*RowData {
	features := ds.Features()
	target := ds.Target()

	var rows []*RowData
	for i, f := range features {
		if hasNaN(f) {
			continue
		}
		days := float32(Unresolved)
		if !math.IsNaN(target[i]) {
			days = float32(target[i])
		}
		rows = append(rows, &RowData{
			Symbol:     symbol,
			Date:       ds.Dates[i],
			Embedding:  feature.Embed(f, feature.DefaultClipStd),
			DaysToFall: days,
		})
	}
	return rows
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
