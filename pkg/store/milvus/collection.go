package milvus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/Sobolyok/risk-project/pkg/model"
)

const (
	// DefaultCollectionName is the default collection name for feature rows
	DefaultCollectionName = "feature_rows"

	// Unresolved marks a row whose days-to-fall target is missing
	Unresolved = -1
)

// CollectionConfig holds configuration for creating a collection
type CollectionConfig struct {
	Name      string
	Dimension int // Vector dimension, p+q of the feature table
	Shards    int
	NList     int // IVF_FLAT cluster count
}

// DefaultCollectionConfig returns default collection configuration for dimension dim
func DefaultCollectionConfig(dim int) CollectionConfig {
	return CollectionConfig{
		Name:      DefaultCollectionName,
		Dimension: dim,
		Shards:    2,
		NList:     64,
	}
}

// CreateCollection creates the feature_rows collection with its index
func (c *Client) CreateCollection(ctx context.Context, cfg CollectionConfig) error {
	exists, err := c.HasCollection(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: cfg.Name,
		Description:    "Daily ARMA feature rows for analog search",
		Fields: []*entity.Field{
			{
				Name:       "row_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(cfg.Dimension),
				},
			},
			{
				Name:     "symbol",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "date",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "days_to_fall",
				DataType: entity.FieldTypeFloat,
			},
		},
	}

	if err := c.conn.CreateCollection(ctx, schema, int32(cfg.Shards)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return c.CreateIndex(ctx, cfg.Name, "embedding", cfg.NList)
}

// RowData holds one feature row for insertion
type RowData struct {
	Symbol     string
	Date       time.Time
	Embedding  []float32
	DaysToFall float32 // Unresolved when the target is missing
}

// RowID returns the primary key of the row
func (d *RowData) RowID() string {
	return d.Symbol + ":" + d.Date.Format(model.DateLayout)
}

// InsertBatch upserts feature rows
func (c *Client) InsertBatch(ctx context.Context, collectionName string, dataList []*RowData) error {
	if len(dataList) == 0 {
		return nil
	}

	columns, err := buildColumns(dataList)
	if err != nil {
		return err
	}

	if _, err := c.conn.Upsert(ctx, collectionName, "", columns...); err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	return nil
}

func buildColumns(dataList []*RowData) ([]entity.Column, error) {
	dim := len(dataList[0].Embedding)
	if dim == 0 {
		return nil, fmt.Errorf("empty embedding for row %s", dataList[0].RowID())
	}

	rowIDs := make([]string, len(dataList))
	embeddings := make([][]float32, len(dataList))
	symbols := make([]string, len(dataList))
	dates := make([]int64, len(dataList))
	targets := make([]float32, len(dataList))

	for i, d := range dataList {
		if len(d.Embedding) != dim {
			return nil, fmt.Errorf("row %s has dimension %d, want %d", d.RowID(), len(d.Embedding), dim)
		}
		rowIDs[i] = d.RowID()
		embeddings[i] = d.Embedding
		symbols[i] = d.Symbol
		dates[i] = d.Date.Unix()
		targets[i] = d.DaysToFall
	}

	return []entity.Column{
		entity.NewColumnVarChar("row_id", rowIDs),
		entity.NewColumnFloatVector("embedding", dim, embeddings),
		entity.NewColumnVarChar("symbol", symbols),
		entity.NewColumnInt64("date", dates),
		entity.NewColumnFloat("days_to_fall", targets),
	}, nil
}

// SearchResult represents a single analog day
type SearchResult struct {
	RowID      string
	Score      float32
	Symbol     string
	Date       time.Time
	DaysToFall float32
}

// AnalogFilter restricts a search to resolved rows of symbol dated strictly before t
func AnalogFilter(symbol string, before time.Time) string {
	parts := []string{"days_to_fall >= 0"}
	if symbol != "" {
		parts = append(parts, fmt.Sprintf("symbol == %q", symbol))
	}
	if !before.IsZero() {
		parts = append(parts, fmt.Sprintf("date < %d", before.Unix()))
	}
	return strings.Join(parts, " && ")
}

// Search performs a TopK similarity search
func (c *Client) Search(ctx context.Context, collectionName string, embedding []float32, filter string, topK int) ([]SearchResult, error) {
	vectors := []entity.Vector{entity.FloatVector(embedding)}

	sp, err := entity.NewIndexIvfFlatSearchParam(c.searchLists)
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	outputFields := []string{"row_id", "symbol", "date", "days_to_fall"}

	results, err := c.conn.Search(
		ctx,
		collectionName,
		nil, // partitions
		filter,
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	return parseResults(results[0]), nil
}

func parseResults(res client.SearchResult) []SearchResult {
	out := make([]SearchResult, 0, res.ResultCount)
	for i := 0; i < res.ResultCount; i++ {
		result := SearchResult{
			Score: res.Scores[i],
		}

		for _, field := range res.Fields {
			switch col := field.(type) {
			case *entity.ColumnVarChar:
				val, _ := col.ValueByIdx(i)
				switch col.Name() {
				case "row_id":
					result.RowID = val
				case "symbol":
					result.Symbol = val
				}
			case *entity.ColumnInt64:
				if col.Name() == "date" {
					val, _ := col.ValueByIdx(i)
					result.Date = time.Unix(val, 0).UTC()
				}
			case *entity.ColumnFloat:
				if col.Name() == "days_to_fall" {
					val, _ := col.ValueByIdx(i)
					result.DaysToFall = val
				}
			}
		}

		out = append(out, result)
	}
	return out
}

// Flush flushes the collection to ensure data persistence
func (c *Client) Flush(ctx context.Context, collectionName string) error {
	return c.conn.Flush(ctx, collectionName, false)
}
