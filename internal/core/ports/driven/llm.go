package driven

import (
	"context"
	"encoding/json"
)

// Tool describes a function the model must call to return structured output.
// Parameters is a JSON schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolRequest is a prompt whose answer is forced through a single tool
type ToolRequest struct {
	System      string
	Prompt      string
	Tool        Tool
	Temperature float32
}

// ToolCall is one invocation of the tool by the model
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// LLMService provides language model capabilities for note taking and QA
type LLMService interface {
	// CallTool sends the prompt and returns every call the model made to
	// the requested tool. The model may call it more than once.
	CallTool(ctx context.Context, req ToolRequest) ([]ToolCall, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
