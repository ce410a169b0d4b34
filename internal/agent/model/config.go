package model

// ================ Config ================

type ConversationConfig struct {
	// TTL applies Redis expiry on touch; "0" disables it and leaves expiry to
	// the explicit cleanup endpoint.
	TTL    string `envconfig:"CONVERSATION_TTL" default:"0"`
	MaxAge string `envconfig:"CONVERSATION_MAX_AGE" default:"24h"`

	History struct {
		MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"20"`
	}
	Tools struct {
		MaxCalls int `envconfig:"CONVERSATION_TOOL_MAX_CALLS" default:"1"`
	}
}

type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.1"`
}

type AgentPromptConfig struct {
	ServiceName string `envconfig:"PROMPT_SERVICE_NAME" default:"account concierge"`
}

type DataConfig struct {
	Dir string `envconfig:"MOCK_DATA_DIR" default:"internal/data/mock"`
}
