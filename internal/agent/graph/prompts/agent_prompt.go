package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/agent-poc-v1/server/internal/agent/graph/tools"
	"github.com/agent-poc-v1/server/internal/agent/model"
)

//go:embed template/agent_prompt.txt
var agentSystemPrompt string

// RenderAgentSystem renders the agent system prompt via the Eino prompt
// component. This triggers Prompt callbacks and returns the final string.
func RenderAgentSystem(ctx context.Context, config model.AgentPromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(agentSystemPrompt),
	)
	vars := map[string]any{
		"ServiceName":    config.ServiceName,
		"AccountTool":    tools.ToolFetchAccountDetails,
		"FacilityTool":   tools.ToolFetchFacilityDetails,
		"SaveNotesTool":  tools.ToolSaveNotes,
		"FetchNotesTool": tools.ToolFetchNotes,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("agent prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("agent prompt render: empty result")
	}
	return msgs[0].Content, nil
}
