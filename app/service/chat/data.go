package chat

import (
	"context"

	"aria/app/client/neograph"
	"aria/app/client/postgres"
	"aria/app/client/rediscache"
	"aria/app/client/semantic"
	"aria/app/service/nlu"
)

// UserInfo is the identity extracted from the session token. Name and Email
// may be empty; the user store is the fallback for personalization.
type UserInfo struct {
	ID    int64
	Name  string
	Email string
}

// Result is one processed chat turn.
type Result struct {
	Reply          string             `json:"reply"`
	Intent         nlu.Intent         `json:"intent"`
	ConversationID string             `json:"chat_id,omitempty"`
	Status         string             `json:"status,omitempty"`
	OpenURL        string             `json:"open_url,omitempty"`
	Tasks          []postgres.Task    `json:"tasks,omitempty"`
	History        []rediscache.Entry `json:"history,omitempty"`
}

// Collaborator contracts. The service depends on these narrow interfaces so
// orchestration behavior is testable without live stores.

type UserStore interface {
	GetUserByID(ctx context.Context, userID int64) (*postgres.User, error)
	UpdateUserProfile(ctx context.Context, userID int64, name, email string) error
}

type TaskStore interface {
	SaveTask(ctx context.Context, task postgres.Task) (int64, error)
	GetTasks(ctx context.Context, userID int64) ([]postgres.Task, error)
	SavePendingTask(ctx context.Context, userID int64, title string) error
	GetPendingTask(ctx context.Context, userID int64) (*postgres.PendingTask, error)
	DeletePendingTask(ctx context.Context, pendingID int64) error
}

type HistoryStore interface {
	SaveChat(ctx context.Context, userID int64, query, response, conversationID string) (string, error)
	HasMessages(ctx context.Context, userID int64, conversationID string) (bool, error)
	GetMessagesByChat(ctx context.Context, userID int64, conversationID string, limit int) ([]postgres.ChatMessage, error)
	GetChatHistory(ctx context.Context, userID int64, limit int) ([]postgres.ChatEntry, error)
}

type RecentCache interface {
	SaveChat(ctx context.Context, userID int64, query, response, conversationID string) error
	GetLastChats(ctx context.Context, userID int64, limit int) ([]rediscache.Entry, error)
}

type FactStore interface {
	SaveFact(ctx context.Context, userID int64, key, value string) error
	GetFacts(ctx context.Context, userID int64) ([]neograph.Fact, error)
}

type SemanticMemory interface {
	Store(ctx context.Context, userID int64, text string) error
	Query(ctx context.Context, userID int64, text string, topK int) ([]semantic.Match, error)
}

// Generator is the provider failover router surface the composer needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
	Summarize(ctx context.Context, text string) string
	ExtractIntent(ctx context.Context, message string) nlu.Intent
}
