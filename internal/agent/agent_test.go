package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-poc-v1/server/internal/agent/graph/tools"
	"github.com/agent-poc-v1/server/internal/agent/model"
	errx "github.com/agent-poc-v1/server/internal/core/error"
)

type fakeRunner struct {
	outcome *model.ChatOutcome
	err     error
	lastIn  model.QueryInput
}

func (f *fakeRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.ChatOutcome, error) {
	f.lastIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

type memoryRepo struct {
	nextID   string
	messages map[string][]*schema.Message
	titles   map[string]string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		nextID:   "conv-1",
		messages: map[string][]*schema.Message{},
		titles:   map[string]string{},
	}
}

func (m *memoryRepo) Create(ctx context.Context, userID, title string) (string, error) {
	id := m.nextID
	m.messages[id] = []*schema.Message{}
	m.titles[id] = title
	return id, nil
}

func (m *memoryRepo) Exists(ctx context.Context, conversationID string) (bool, error) {
	_, ok := m.messages[conversationID]
	return ok, nil
}

func (m *memoryRepo) AddMessage(ctx context.Context, conversationID string, message *schema.Message) error {
	if _, ok := m.messages[conversationID]; !ok {
		return errx.NotFound("conversation not found")
	}
	m.messages[conversationID] = append(m.messages[conversationID], message)
	return nil
}

func (m *memoryRepo) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	msgs, ok := m.messages[conversationID]
	if !ok {
		return nil, errx.NotFound("conversation not found")
	}
	return &model.ConversationHistory{
		Summary:  model.ConversationSummary{ConversationID: conversationID, Title: m.titles[conversationID]},
		Messages: msgs,
	}, nil
}

func (m *memoryRepo) Delete(ctx context.Context, conversationID string) (bool, error) {
	if _, ok := m.messages[conversationID]; !ok {
		return false, nil
	}
	delete(m.messages, conversationID)
	return true, nil
}

func (m *memoryRepo) List(ctx context.Context) ([]model.ConversationSummary, error) {
	out := make([]model.ConversationSummary, 0, len(m.messages))
	for id := range m.messages {
		out = append(out, model.ConversationSummary{ConversationID: id, Title: m.titles[id]})
	}
	return out, nil
}

func (m *memoryRepo) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

func TestChatRejectsMissingFields(t *testing.T) {
	svc := NewService(&fakeRunner{}, newMemoryRepo())

	_, err := svc.Chat(context.Background(), ChatRequest{Text: "  ", UserID: "3867"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrInvalidArgument))

	_, err = svc.Chat(context.Background(), ChatRequest{Text: "hello", UserID: ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrInvalidArgument))
}

func TestChatCreatesConversationWhenNoneGiven(t *testing.T) {
	runner := &fakeRunner{outcome: &model.ChatOutcome{Content: "Hi there!"}}
	repo := newMemoryRepo()
	svc := NewService(runner, repo)

	resp, err := svc.Chat(context.Background(), ChatRequest{Text: "hello", UserID: "3867"})
	require.NoError(t, err)
	assert.Equal(t, "conv-1", resp.ConversationID)
	assert.Equal(t, model.CardOther, resp.CardKey)
	assert.Equal(t, "Hi there!", resp.FinalResponse)
	assert.Equal(t, "conv-1", runner.lastIn.ConversationID)
	assert.Equal(t, "3867", runner.lastIn.UserID)
}

func TestChatUnknownConversationSignalsNotFound(t *testing.T) {
	svc := NewService(&fakeRunner{outcome: &model.ChatOutcome{}}, newMemoryRepo())

	_, err := svc.Chat(context.Background(), ChatRequest{
		Text:           "hello",
		UserID:         "3867",
		ConversationID: "missing",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrNotFound))
}

func TestChatAccountLookupProducesAccountCard(t *testing.T) {
	toolResult := `{"account_overview":[{"account_id":"A-011977763","user_id":"3867","name":"Radiant Aesthetics Group","status":"active"}]}`
	runner := &fakeRunner{outcome: &model.ChatOutcome{
		Content:    "Here are your account details.",
		ToolName:   tools.ToolFetchAccountDetails,
		ToolResult: toolResult,
	}}
	svc := NewService(runner, newMemoryRepo())

	resp, err := svc.Chat(context.Background(), ChatRequest{Text: "fetch account details", UserID: "3867"})
	require.NoError(t, err)
	assert.Equal(t, model.CardAccountOverview, resp.CardKey)
	require.Len(t, resp.AccountOverview, 1)
	assert.Equal(t, "3867", resp.AccountOverview[0].UserID)
	assert.Empty(t, resp.FacilityOverview)
	assert.Empty(t, resp.NoteOverview)
}

func TestChatToolFailureDegradesToApology(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("%w: fetch notes: disk gone", errx.ErrToolExecution)}
	repo := newMemoryRepo()
	svc := NewService(runner, repo)

	resp, err := svc.Chat(context.Background(), ChatRequest{Text: "show my notes", UserID: "3867"})
	require.NoError(t, err)
	assert.Equal(t, model.CardOther, resp.CardKey)
	assert.Equal(t, apologyResponse, resp.FinalResponse)

	// the apology is persisted as the assistant turn
	history, err := repo.LoadHistory(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	require.NotEmpty(t, history.Messages)
	last := history.Messages[len(history.Messages)-1]
	assert.Equal(t, schema.Assistant, last.Role)
	assert.Equal(t, apologyResponse, last.Content)
}

func TestChatReasoningFailureSurfaces(t *testing.T) {
	runner := &fakeRunner{err: fmt.Errorf("%w: model call failed", errx.ErrUpstreamReasoning)}
	svc := NewService(runner, newMemoryRepo())

	_, err := svc.Chat(context.Background(), ChatRequest{Text: "hello", UserID: "3867"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrUpstreamReasoning))
}

func TestDeleteConversation(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(&fakeRunner{}, repo)

	_, err := repo.Create(context.Background(), "3867", "test")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(context.Background(), "conv-1"))

	err = svc.DeleteConversation(context.Background(), "conv-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrNotFound))
}

func TestCleanupRejectsNonPositiveMaxAge(t *testing.T) {
	svc := NewService(&fakeRunner{}, newMemoryRepo())

	_, err := svc.Cleanup(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrInvalidArgument))
}
