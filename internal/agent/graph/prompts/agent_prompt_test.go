package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-poc-v1/server/internal/agent/graph/tools"
	"github.com/agent-poc-v1/server/internal/agent/model"
)

func TestRenderAgentSystem(t *testing.T) {
	out, err := RenderAgentSystem(context.Background(), model.AgentPromptConfig{
		ServiceName: "account concierge",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "account concierge")
	assert.Contains(t, out, tools.ToolFetchAccountDetails)
	assert.Contains(t, out, tools.ToolFetchFacilityDetails)
	assert.Contains(t, out, tools.ToolSaveNotes)
	assert.Contains(t, out, tools.ToolFetchNotes)
}
