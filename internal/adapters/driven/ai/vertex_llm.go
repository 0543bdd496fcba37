package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/vertexai/genai"

	"github.com/custodia-labs/sercha-papers/internal/core/ports/driven"
)

// Ensure VertexLLM implements LLMService
var _ driven.LLMService = (*VertexLLM)(nil)

const defaultVertexModel = "gemini-1.5-pro"

// VertexLLM implements LLMService with Gemini on Vertex AI, forcing the
// answer through function calling.
type VertexLLM struct {
	client *genai.Client
	model  string
}

// NewVertexLLM creates a Vertex AI client for the project and region.
// Credentials come from the environment.
func NewVertexLLM(ctx context.Context, projectID, region, model string) (driven.LLMService, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexLLM: projectID and region cannot be empty")
	}
	if model == "" {
		model = defaultVertexModel
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexLLM{client: client, model: model}, nil
}

// generativeModel configures a model for a single tool request. Models
// hold per-request state, so one is built per call.
func (v *VertexLLM) generativeModel(req driven.ToolRequest) *genai.GenerativeModel {
	model := v.client.GenerativeModel(v.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        req.Tool.Name,
			Description: req.Tool.Description,
			Parameters:  schemaFromJSON(req.Tool.Parameters),
		}},
	}}
	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{req.Tool.Name},
		},
	}
	return model
}

// CallTool sends the prompt and returns the function calls in the response.
func (v *VertexLLM) CallTool(ctx context.Context, req driven.ToolRequest) ([]driven.ToolCall, error) {
	resp, err := v.generativeModel(req).GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("vertex generate content: %w", err)
	}
	return toolCallsFromResponse(resp)
}

// toolCallsFromResponse collects function calls from every candidate.
func toolCallsFromResponse(resp *genai.GenerateContentResponse) ([]driven.ToolCall, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("vertex returned no candidates")
	}

	var calls []driven.ToolCall
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			fc, ok := part.(genai.FunctionCall)
			if !ok {
				continue
			}
			args, err := json.Marshal(fc.Args)
			if err != nil {
				return nil, fmt.Errorf("encode function call args: %w", err)
			}
			calls = append(calls, driven.ToolCall{Name: fc.Name, Arguments: args})
		}
	}
	return calls, nil
}

// Model returns the model name being used
func (v *VertexLLM) Model() string {
	return v.model
}

// Ping counts tokens for a tiny prompt to verify credentials and quota
func (v *VertexLLM) Ping(ctx context.Context) error {
	if _, err := v.client.GenerativeModel(v.model).CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("vertex ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying client
func (v *VertexLLM) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

// schemaFromJSON converts a JSON schema object, as carried by driven.Tool,
// into the Vertex schema type. Unknown keywords are ignored.
func schemaFromJSON(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}

	s := &genai.Schema{}
	if t, ok := m["type"].(string); ok {
		s.Type = schemaType(t)
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, p := range props {
			if pm, ok := p.(map[string]any); ok {
				s.Properties[name] = schemaFromJSON(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = schemaFromJSON(items)
	}
	switch req := m["required"].(type) {
	case []string:
		s.Required = append([]string(nil), req...)
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	return s
}

func schemaType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
