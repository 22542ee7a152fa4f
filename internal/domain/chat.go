package domain

import "encoding/json"

// ChatMessage is the provider-agnostic chat message shape used by the usecase
// layer and LLM integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OutputSchema names a JSON Schema the model reply must conform to.
type OutputSchema struct {
	Name   string
	Schema json.RawMessage
}

// ToolDef describes a callable tool offered to an agent.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall is a single tool invocation requested by an agent.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}
