package cards

import (
	"encoding/json"

	logx "github.com/agent-poc-v1/server/pkg/logger"

	"github.com/agent-poc-v1/server/internal/agent/graph/tools"
	"github.com/agent-poc-v1/server/internal/agent/model"
)

// Shape maps a finished chat turn onto the structured card response. The card
// key is derived from the tool that ran this turn, never from the model text.
// Turns without a tool call, with an unknown tool, or with an error payload
// from the tool all collapse to the "other" card.
func Shape(conversationID, finalResponse string, toolName, toolResult string) *model.AgentResponse {
	resp := model.NewOtherResponse(conversationID, finalResponse)
	if toolName == "" || toolResult == "" {
		return resp
	}

	switch toolName {
	case tools.ToolFetchAccountDetails:
		var out tools.FetchAccountDetailsOutput
		if !decode(toolName, toolResult, &out) || out.Error != "" {
			return resp
		}
		resp.CardKey = model.CardAccountOverview
		resp.AccountOverview = out.AccountOverview

	case tools.ToolFetchFacilityDetails:
		var out tools.FetchFacilityDetailsOutput
		if !decode(toolName, toolResult, &out) || out.Error != "" {
			return resp
		}
		resp.CardKey = model.CardFacilityOverview
		resp.FacilityOverview = out.FacilityOverview

	case tools.ToolSaveNotes:
		var out tools.SaveNotesOutput
		if !decode(toolName, toolResult, &out) || out.Error != "" {
			return resp
		}
		resp.CardKey = model.CardNotesOverview
		resp.NoteOverview = out.NoteOverview

	case tools.ToolFetchNotes:
		var out tools.FetchNotesOutput
		if !decode(toolName, toolResult, &out) || out.Error != "" {
			return resp
		}
		resp.CardKey = model.CardNotesOverview
		resp.NoteOverview = out.NoteOverview

	default:
		logx.Warn().
			Str("tool_name", toolName).
			Msg("Unknown tool name while shaping card; falling back to other")
	}

	if resp.AccountOverview == nil {
		resp.AccountOverview = []model.AccountOverview{}
	}
	if resp.FacilityOverview == nil {
		resp.FacilityOverview = []model.FacilityOverview{}
	}
	if resp.NoteOverview == nil {
		resp.NoteOverview = []model.NoteOverview{}
	}
	return resp
}

func decode(toolName, raw string, v any) bool {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		logx.Warn().
			Err(err).
			Str("tool_name", toolName).
			Msg("Tool result is not valid JSON; falling back to other card")
		return false
	}
	return true
}
