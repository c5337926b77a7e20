package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveChat persists one request/response pair and returns the canonical
// conversation id: a fresh one is minted when the caller has none yet.
func (c *Client) SaveChat(ctx context.Context, userID int64, query, response, conversationID string) (string, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	_, err := c.pool.Exec(ctx,
		`INSERT INTO chat_history (user_id, conversation_id, user_query, ai_response)
		 VALUES ($1, $2, $3, $4)`,
		userID, conversationID, query, response,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save chat: %w", err)
	}

	return conversationID, nil
}

// HasMessages reports whether any message is persisted for the conversation.
// This is the NEW vs CONTINUING check: an empty in-memory history string is
// not evidence of a new conversation.
func (c *Client) HasMessages(ctx context.Context, userID int64, conversationID string) (bool, error) {
	var exists bool

	err := c.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM chat_history WHERE user_id = $1 AND conversation_id = $2
		)`,
		userID, conversationID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check conversation %s: %w", conversationID, err)
	}

	return exists, nil
}

// GetMessagesByChat expands stored pairs into ordered user/assistant turns.
func (c *Client) GetMessagesByChat(ctx context.Context, userID int64, conversationID string, limit int) ([]ChatMessage, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT user_query, ai_response, created_at
		 FROM chat_history
		 WHERE user_id = $1 AND conversation_id = $2
		 ORDER BY created_at
		 LIMIT $3`,
		userID, conversationID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]ChatMessage, 0)

	for rows.Next() {
		var entry ChatEntry
		if err = rows.Scan(&entry.UserQuery, &entry.AIResponse, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat entry: %w", err)
		}

		messages = append(messages,
			ChatMessage{Sender: "user", Content: entry.UserQuery, CreatedAt: entry.CreatedAt},
			ChatMessage{Sender: "assistant", Content: entry.AIResponse, CreatedAt: entry.CreatedAt},
		)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading messages: %w", err)
	}

	return messages, nil
}

func (c *Client) GetChatHistory(ctx context.Context, userID int64, limit int) ([]ChatEntry, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT conversation_id, user_query, ai_response, created_at
		 FROM chat_history
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	entries := make([]ChatEntry, 0)

	for rows.Next() {
		var entry ChatEntry
		if err = rows.Scan(&entry.ConversationID, &entry.UserQuery, &entry.AIResponse, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading chat history: %w", err)
	}

	return entries, nil
}

func (c *Client) GetConversations(ctx context.Context, userID int64) ([]Conversation, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT conversation_id, COUNT(*), MAX(created_at) AS updated_at
		 FROM chat_history
		 WHERE user_id = $1
		 GROUP BY conversation_id
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]Conversation, 0)

	for rows.Next() {
		var conv Conversation
		if err = rows.Scan(&conv.ID, &conv.Messages, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, conv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading conversations: %w", err)
	}

	return conversations, nil
}
