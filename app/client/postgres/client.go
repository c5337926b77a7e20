// Package postgres owns the relational stores: users, tasks, chat history and
// the pending-task holding area.
package postgres

import (
	"context"
	"fmt"

	"aria/app/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Client)(nil)

type Client struct {
	pool *pgxpool.Pool
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	appCtx := do.MustInvoke[context.Context](di)

	pool, err := pgxpool.New(appCtx, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	client := &Client{pool: pool}

	if err = client.createTables(appCtx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return client, nil
}

func (c *Client) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			datetime TIMESTAMPTZ,
			priority TEXT NOT NULL DEFAULT 'medium',
			category TEXT NOT NULL DEFAULT 'personal',
			notes TEXT NOT NULL DEFAULT '',
			notified BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS chat_history (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			conversation_id TEXT NOT NULL,
			user_query TEXT NOT NULL,
			ai_response TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS pending_tasks (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_history_conversation
			ON chat_history (user_id, conversation_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due
			ON tasks (datetime) WHERE NOT notified`,
	}

	for _, stmt := range statements {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", stmt[:40], err)
		}
	}

	return nil
}

func (c *Client) Shutdown() error {
	c.pool.Close()

	return nil
}
