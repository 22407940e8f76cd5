// Package graph persists finished reports to a Neo4j store. All
// writes are best-effort: a failed write is logged and skipped, never
// surfaced to the caller.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ppiankov/veridex/internal/model"
)

// QueryRunner executes one Cypher write. Persister depends on this
// narrow interface rather than the driver directly.
type QueryRunner interface {
	Run(ctx context.Context, query string, params map[string]any) error
	Close(ctx context.Context) error
}

// Client is the Neo4j-backed QueryRunner.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewClient connects to Neo4j and verifies connectivity before
// returning.
func NewClient(ctx context.Context, cfg model.Neo4jConfig) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}
	return &Client{driver: driver, database: cfg.Database}, nil
}

// Run executes one Cypher statement in a managed write transaction.
func (c *Client) Run(ctx context.Context, query string, params map[string]any) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.database})
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	return err
}

// Close releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
