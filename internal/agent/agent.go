package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	logx "github.com/agent-poc-v1/server/pkg/logger"

	"github.com/agent-poc-v1/server/internal/agent/cards"
	"github.com/agent-poc-v1/server/internal/agent/graph"
	"github.com/agent-poc-v1/server/internal/agent/model"
	errx "github.com/agent-poc-v1/server/internal/core/error"
)

const apologyResponse = "I'm sorry, I ran into a problem while looking that up. Please try again in a moment."

// ChatRequest is one user turn submitted to the agent.
type ChatRequest struct {
	Text           string `json:"text"`
	UserID         string `json:"user_id"`
	Title          string `json:"title,omitempty"`
	AccountID      string `json:"account_id,omitempty"`
	FacilityID     string `json:"facility_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Service drives a full chat turn: conversation resolution, graph invocation
// and card shaping. It also fronts the conversation lifecycle operations.
type Service struct {
	runner graph.Runner
	repo   model.ConversationRepository
}

func NewService(runner graph.Runner, repo model.ConversationRepository) *Service {
	return &Service{runner: runner, repo: repo}
}

// Chat runs one turn. Tool failures degrade to an apology with an "other"
// card; reasoning and storage failures surface to the caller.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*model.AgentResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, errx.InvalidArgument("text is required")
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, errx.InvalidArgument("user_id is required")
	}

	conversationID, err := s.resolveConversation(ctx, req, text)
	if err != nil {
		return nil, err
	}

	outcome, err := s.runner.Invoke(ctx, model.QueryInput{
		ConversationID: conversationID,
		Query:          text,
		UserID:         userID,
		AccountID:      strings.TrimSpace(req.AccountID),
		FacilityID:     strings.TrimSpace(req.FacilityID),
	})
	if err != nil {
		if errors.Is(err, errx.ErrToolExecution) {
			logx.Error().
				Err(err).
				Str("conversation_id", conversationID).
				Msg("Tool execution failed; degrading to apology response")
			if saveErr := s.repo.AddMessage(ctx, conversationID, schema.AssistantMessage(apologyResponse, nil)); saveErr != nil {
				logx.Error().Err(saveErr).Str("conversation_id", conversationID).Msg("Failed to persist apology response")
			}
			return model.NewOtherResponse(conversationID, apologyResponse), nil
		}
		return nil, err
	}

	return cards.Shape(conversationID, outcome.Content, outcome.ToolName, outcome.ToolResult), nil
}

func (s *Service) resolveConversation(ctx context.Context, req ChatRequest, text string) (string, error) {
	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID != "" {
		ok, err := s.repo.Exists(ctx, conversationID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errx.NotFound("conversation not found")
		}
		return conversationID, nil
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = text
		if len(title) > 80 {
			title = title[:80]
		}
	}

	conversationID, err := s.repo.Create(ctx, strings.TrimSpace(req.UserID), title)
	if err != nil {
		return "", err
	}
	logx.Debug().
		Str("conversation_id", conversationID).
		Msg("Created new conversation")
	return conversationID, nil
}

// GetConversation returns the full history for a conversation.
func (s *Service) GetConversation(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	return s.repo.LoadHistory(ctx, conversationID)
}

// DeleteConversation removes a conversation, signalling NotFound when the
// identifier is unknown.
func (s *Service) DeleteConversation(ctx context.Context, conversationID string) error {
	removed, err := s.repo.Delete(ctx, conversationID)
	if err != nil {
		return err
	}
	if !removed {
		return errx.NotFound("conversation not found")
	}
	return nil
}

// ListConversations returns summaries of all conversations, most recently
// active first.
func (s *Service) ListConversations(ctx context.Context) ([]model.ConversationSummary, error) {
	return s.repo.List(ctx)
}

// Cleanup removes conversations whose last activity is older than maxAge and
// returns how many were removed.
func (s *Service) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, errx.InvalidArgument("max_age must be positive")
	}
	olderThan := time.Now().UTC().Add(-maxAge)
	removed, err := s.repo.Cleanup(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logx.Info().
			Int("removed", removed).
			Dur("max_age", maxAge).
			Msg("Cleaned up stale conversations")
	}
	return removed, nil
}
