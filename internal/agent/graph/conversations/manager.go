package conversations

import (
	"context"
	"strings"

	"github.com/agent-poc-v1/server/internal/agent/model"

	"github.com/cloudwego/eino/schema"
)

// MessagesManager mediates between the graph and the conversation repository:
// it persists incoming turns, rebuilds model context from history and saves
// final assistant answers.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	historyMaxTurns  int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		historyMaxTurns:  config.History.MaxTurns,
	}
}

// BuildTurnContext persists the user turn and returns the message sequence
// for the chat model: system prompt followed by recent history (which now
// ends with the just-saved user message).
func (cm *MessagesManager) BuildTurnContext(ctx context.Context, in model.QueryInput, systemPrompt string) ([]*schema.Message, error) {
	userMsg := schema.UserMessage(buildUserContent(in))
	if err := cm.conversationRepo.AddMessage(ctx, in.ConversationID, userMsg); err != nil {
		return nil, err
	}

	history, err := cm.conversationRepo.LoadHistory(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}

	messages := []*schema.Message{schema.SystemMessage(systemPrompt)}
	messages = append(messages, trimTail(history.Messages, cm.historyMaxTurns)...)
	return messages, nil
}

// SaveResponse appends the final assistant answer to the conversation.
func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg)
}

// buildUserContent frames the raw query with the request identifiers so the
// model can pass them to tools without guessing.
func buildUserContent(in model.QueryInput) string {
	var b strings.Builder
	b.WriteString("User Query: ")
	b.WriteString(in.Query)
	b.WriteString("\n\nContext:\n")
	b.WriteString("- User ID: " + in.UserID + "\n")
	if in.AccountID != "" {
		b.WriteString("- Account ID: " + in.AccountID + "\n")
	}
	if in.FacilityID != "" {
		b.WriteString("- Facility ID: " + in.FacilityID + "\n")
	}
	return b.String()
}

// trimTail keeps only the most recent maxTurns messages.
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
