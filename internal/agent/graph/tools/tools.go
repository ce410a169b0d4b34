package tools

import (
	"context"
	"fmt"

	"github.com/agent-poc-v1/server/internal/data"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// The fixed tool enumeration the reasoning engine may request.
const (
	ToolFetchAccountDetails  = "fetch_account_details"
	ToolFetchFacilityDetails = "fetch_facility_details"
	ToolSaveNotes            = "save_notes"
	ToolFetchNotes           = "fetch_notes"
)

// Structured error codes carried inside tool result payloads. Domain
// failures (missing records, bad arguments) never abort the turn; the model
// receives these payloads and explains them, and the shaper falls back to an
// "other" card.
const (
	ErrCodeNotFound        = "not_found"
	ErrCodeInvalidArgument = "invalid_argument"
)

// GetAgentTools returns the four business tools bound to the mock data store.
func GetAgentTools(store *data.Store) []tool.BaseTool {
	return []tool.BaseTool{
		createFetchAccountDetailsTool(store),
		createFetchFacilityDetailsTool(store),
		createSaveNotesTool(store),
		createFetchNotesTool(store),
	}
}

// GetToolInfos resolves the schema infos for binding tools to the chat model.
func GetToolInfos(ctx context.Context, ts []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(ts))
	for _, t := range ts {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("get tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
