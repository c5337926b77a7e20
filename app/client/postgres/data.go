package postgres

import "time"

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Task struct {
	ID       int64      `json:"id"`
	UserID   int64      `json:"-"`
	Title    string     `json:"title"`
	Datetime *time.Time `json:"datetime"`
	Priority string     `json:"priority"`
	Category string     `json:"category"`
	Notes    string     `json:"notes"`
	Notified bool       `json:"notified"`
}

// ChatMessage is a single turn side (user or assistant) of a conversation.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatEntry is one persisted request/response pair.
type ChatEntry struct {
	ConversationID string    `json:"conversation_id"`
	UserQuery      string    `json:"user_query"`
	AIResponse     string    `json:"ai_response"`
	CreatedAt      time.Time `json:"created_at"`
}

type Conversation struct {
	ID        string    `json:"id"`
	Messages  int       `json:"messages"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PendingTask struct {
	ID    int64
	Title string
}
