// Package semantic is the long-term memory: every utterance is embedded and
// upserted into a per-user Pinecone namespace, and similar past utterances
// are retrieved as context for response generation.
package semantic

import (
	"context"
	"fmt"
	"sync"

	"aria/app/config"

	"github.com/google/uuid"
	"github.com/pinecone-io/go-pinecone/pinecone"
	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/protobuf/types/known/structpb"
)

type Match struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

type Client struct {
	pc        *pinecone.Client
	indexHost string
	embedder  *openai.Client
	model     string

	mu          sync.Mutex
	connections map[int64]*pinecone.IndexConnection
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	appCtx := do.MustInvoke[context.Context](di)

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.Pinecone.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone client: %w", err)
	}

	idx, err := pc.DescribeIndex(appCtx, cfg.Pinecone.Index)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %q: %w", cfg.Pinecone.Index, err)
	}

	return &Client{
		pc:          pc,
		indexHost:   idx.Host,
		embedder:    openai.NewClient(cfg.Pinecone.EmbeddingToken),
		model:       cfg.Pinecone.EmbeddingModel,
		connections: make(map[int64]*pinecone.IndexConnection),
	}, nil
}

// connection returns a cached per-user namespace connection.
func (c *Client) connection(userID int64) (*pinecone.IndexConnection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conn, ok := c.connections[userID]; ok {
		return conn, nil
	}

	conn, err := c.pc.Index(pinecone.NewIndexConnParams{
		Host:      c.indexHost,
		Namespace: fmt.Sprintf("user-%d", userID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection for user %d: %w", userID, err)
	}

	c.connections[userID] = conn

	return conn, nil
}

func (c *Client) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.embedder.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return resp.Data[0].Embedding, nil
}

func (c *Client) Store(ctx context.Context, userID int64, text string) error {
	conn, err := c.connection(userID)
	if err != nil {
		return err
	}

	embedding, err := c.embed(ctx, text)
	if err != nil {
		return err
	}

	metadata, err := structpb.NewStruct(map[string]any{"text": text})
	if err != nil {
		return fmt.Errorf("failed to build metadata: %w", err)
	}

	_, err = conn.UpsertVectors(ctx, []*pinecone.Vector{{
		Id:       uuid.NewString(),
		Values:   embedding,
		Metadata: metadata,
	}})
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}

	return nil
}

func (c *Client) Query(ctx context.Context, userID int64, text string, topK int) ([]Match, error) {
	conn, err := c.connection(userID)
	if err != nil {
		return nil, err
	}

	embedding, err := c.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	resp, err := conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          embedding,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	matches := make([]Match, 0, len(resp.Matches))

	for _, match := range resp.Matches {
		if match.Vector == nil || match.Vector.Metadata == nil {
			continue
		}

		value, ok := match.Vector.Metadata.Fields["text"]
		if !ok {
			continue
		}

		text := value.GetStringValue()
		if text == "" {
			continue
		}

		matches = append(matches, Match{Text: text, Score: match.Score})
	}

	return matches, nil
}
