package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// DefaultSearchLists is the number of IVF clusters visited per analog search
const DefaultSearchLists = 16

// Client wraps a Milvus connection holding the feature_rows collection
type Client struct {
	conn        client.Client
	searchLists int
}

// Config holds Milvus connection and search settings
type Config struct {
	Address     string // e.g. "localhost:19530"
	Username    string
	Password    string
	SearchLists int // clusters searched out of CollectionConfig.NList
}

// DefaultConfig returns the connection settings used by the analog search
func DefaultConfig() Config {
	return Config{
		Address:     "localhost:19530",
		SearchLists: DefaultSearchLists,
	}
}

// NewClient connects to Milvus
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	conn, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus at %s: %w", cfg.Address, err)
	}
	return newClient(conn, cfg.SearchLists), nil
}

func newClient(conn client.Client, searchLists int) *Client {
	if searchLists <= 0 {
		searchLists = DefaultSearchLists
	}
	return &Client{conn: conn, searchLists: searchLists}
}

// Close closes the Milvus connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// HasCollection checks if a collection exists
func (c *Client) HasCollection(ctx context.Context, name string) (bool, error) {
	return c.conn.HasCollection(ctx, name)
}

// CreateIndex creates an IVF_FLAT cosine index on the embedding field
func (c *Client) CreateIndex(ctx context.Context, collectionName, fieldName string, nlist int) error {
	idx, err := entity.NewIndexIvfFlat(entity.COSINE, nlist)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return c.conn.CreateIndex(ctx, collectionName, fieldName, idx, false)
}

// LoadCollection loads a collection into memory
func (c *Client) LoadCollection(ctx context.Context, collectionName string) error {
	return c.conn.LoadCollection(ctx, collectionName, false)
}

// ReleaseCollection releases a loaded collection from memory
func (c *Client) ReleaseCollection(ctx context.Context, collectionName string) error {
	return c.conn.ReleaseCollection(ctx, collectionName)
}

// ResetCollection drops the collection if present and recreates it empty.
// Rows indexed under a different feature config or dimension are lost.
func (c *Client) ResetCollection(ctx context.Context, cfg CollectionConfig) error {
	exists, err := c.HasCollection(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		if err := c.conn.DropCollection(ctx, cfg.Name); err != nil {
			return fmt.Errorf("failed to drop collection %s: %w", cfg.Name, err)
		}
	}
	return c.CreateCollection(ctx, cfg)
}
