package model

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository owns persisted conversation state. History is
// append-only and ordered by arrival; all writes are persisted immediately.
type ConversationRepository interface {
	// Create allocates a new conversation and returns its identifier.
	Create(ctx context.Context, userID, title string) (string, error)

	// Exists reports whether the conversation is known.
	Exists(ctx context.Context, conversationID string) (bool, error)

	// AddMessage appends a message to the conversation history and bumps the
	// last-activity timestamp. Unknown identifiers signal errx.ErrNotFound.
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the full ordered history for a conversation.
	// Unknown identifiers signal errx.ErrNotFound.
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// Delete removes the conversation and its history, reporting whether it
	// existed.
	Delete(ctx context.Context, conversationID string) (bool, error)

	// List returns summaries of all conversations, most recently active first.
	List(ctx context.Context) ([]ConversationSummary, error)

	// Cleanup removes exactly the conversations whose last activity precedes
	// olderThan and returns how many were removed.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)
}

// ConversationSummary is the metadata kept per conversation.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	LastActive     time.Time `json:"last_active"`
	MessageCount   int       `json:"message_count"`
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	Summary  ConversationSummary
	Messages []*schema.Message
}
