package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type AppState struct {
	ConversationID       string
	History              []*schema.Message // mutated only inside Eino state handlers
	ToolCallCount        int               // maintained in handlers (reset/increment)
	ToolCallLimitReached bool              // set when tool call limit is exceeded
	ToolCallIDSeq        int               // local sequence to synthesize tool_call_id when provider omits

	// PendingToolCalls tracks the assistant-requested calls awaiting execution
	// so tool result messages can be matched back to a tool name.
	PendingToolCalls []schema.ToolCall

	// LastToolName / LastToolResult record the most recently executed tool for
	// the response shaper.
	LastToolName   string
	LastToolResult string

	// Accumulated total LLM cost (USD) across model invocations for this turn.
	TotalCostUSD float64
}

// QueryInput represents the input for processing one chat turn.
type QueryInput struct {
	ConversationID string `json:"conversation_id"`
	Query          string `json:"query"`
	UserID         string `json:"user_id"`
	AccountID      string `json:"account_id,omitempty"`
	FacilityID     string `json:"facility_id,omitempty"`
}

// ChatOutcome is what the compiled graph yields for one turn: the final
// natural-language answer plus the single executed tool call, if any.
type ChatOutcome struct {
	Content    string
	ToolName   string
	ToolResult string
}

// Keys under schema.Message.Extra used to carry the executed tool call out of
// the graph on the final assistant message.
const (
	ExtraToolName   = "tool_name"
	ExtraToolResult = "tool_result"
)
