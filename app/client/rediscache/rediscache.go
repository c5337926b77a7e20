// Package rediscache is the fast-read mirror of recent chat turns plus the
// once-a-day greeting guard.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aria/app/config"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
)

const (
	maxRecentChats = 50
	greetingTTL    = 24 * time.Hour
)

var _ do.Shutdownable = (*Client)(nil)

type Entry struct {
	Query          string    `json:"query"`
	Response       string    `json:"response"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

type Client struct {
	rdb *redis.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	appCtx := do.MustInvoke[context.Context](di)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Pass,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(appCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func chatKey(userID int64) string {
	return fmt.Sprintf("chat_history:%d", userID)
}

func greetingKey(userID int64) string {
	return fmt.Sprintf("greeted:%d:daily", userID)
}

func (c *Client) SaveChat(ctx context.Context, userID int64, query, response, conversationID string) error {
	entry := Entry{
		Query:          query,
		Response:       response,
		ConversationID: conversationID,
		Timestamp:      time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal chat entry: %w", err)
	}

	pipe := c.rdb.Pipeline()
	pipe.LPush(ctx, chatKey(userID), data)
	pipe.LTrim(ctx, chatKey(userID), 0, maxRecentChats-1)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save chat to redis: %w", err)
	}

	return nil
}

func (c *Client) GetLastChats(ctx context.Context, userID int64, limit int) ([]Entry, error) {
	raw, err := c.rdb.LRange(ctx, chatKey(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chats from redis: %w", err)
	}

	entries := make([]Entry, 0, len(raw))

	for _, item := range raw {
		var entry Entry
		if err = json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// WasGreeted reports whether the user already received the daily greeting.
func (c *Client) WasGreeted(ctx context.Context, userID int64) (bool, error) {
	count, err := c.rdb.Exists(ctx, greetingKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check greeting key: %w", err)
	}

	return count > 0, nil
}

func (c *Client) MarkGreeted(ctx context.Context, userID int64) error {
	if err := c.rdb.Set(ctx, greetingKey(userID), "1", greetingTTL).Err(); err != nil {
		return fmt.Errorf("failed to set greeting key: %w", err)
	}

	return nil
}

func (c *Client) Shutdown() error {
	return c.rdb.Close()
}
