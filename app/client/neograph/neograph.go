// Package neograph stores user facts as a small per-user knowledge graph.
package neograph

import (
	"context"
	"fmt"

	"aria/app/config"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Client)(nil)

type Fact struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Client struct {
	driver neo4j.DriverWithContext
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	appCtx := do.MustInvoke[context.Context](di)

	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4j.URI,
		neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Pass, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err = driver.VerifyConnectivity(appCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Client{driver: driver}, nil
}

// SaveFact upserts a key/value fact on the user node; saving the same key
// twice overwrites the value.
func (c *Client) SaveFact(ctx context.Context, userID int64, key, value string) error {
	_, err := neo4j.ExecuteQuery(ctx, c.driver,
		`MERGE (u:User {id: $user_id})
		 MERGE (u)-[:HAS_FACT]->(f:Fact {key: $key})
		 SET f.value = $value`,
		map[string]any{"user_id": userID, "key": key, "value": value},
		neo4j.EagerResultTransformer,
	)
	if err != nil {
		return fmt.Errorf("failed to save fact %q: %w", key, err)
	}

	return nil
}

func (c *Client) GetFacts(ctx context.Context, userID int64) ([]Fact, error) {
	result, err := neo4j.ExecuteQuery(ctx, c.driver,
		`MATCH (u:User {id: $user_id})-[:HAS_FACT]->(f:Fact)
		 RETURN f.key AS key, f.value AS value
		 ORDER BY key`,
		map[string]any{"user_id": userID},
		neo4j.EagerResultTransformer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}

	facts := make([]Fact, 0, len(result.Records))

	for _, record := range result.Records {
		key, _, err := neo4j.GetRecordValue[string](record, "key")
		if err != nil {
			return nil, fmt.Errorf("failed to read fact key: %w", err)
		}

		value, _, err := neo4j.GetRecordValue[string](record, "value")
		if err != nil {
			return nil, fmt.Errorf("failed to read fact value: %w", err)
		}

		facts = append(facts, Fact{Key: key, Value: value})
	}

	return facts, nil
}

func (c *Client) Shutdown() error {
	return c.driver.Close(context.Background())
}
