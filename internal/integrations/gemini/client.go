// Package gemini adapts the Google Gen AI SDK to the completion and
// tool-call contract used by the note pipeline.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"notes-agent/internal/domain"
)

// generator is the slice of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// StatusError carries the HTTP status reported by the Gemini API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: api error %d: %s", e.Code, e.Message)
}

func (e *StatusError) HTTPStatusCode() int { return e.Code }

type Client struct {
	models generator
}

// NewClient builds a Gemini API client for apiKey.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key must not be empty")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{models: c.Models}, nil
}

func newWithGenerator(g generator) *Client {
	return &Client{models: g}
}

// Complete returns the text of the first candidate, constrained to schema
// when one is given.
func (c *Client) Complete(ctx context.Context, model string, messages []domain.ChatMessage, schema domain.OutputSchema) (string, error) {
	system, contents := splitMessages(messages)
	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if len(schema.Schema) > 0 {
		s, err := ToSchema(schema.Schema)
		if err != nil {
			return "", fmt.Errorf("gemini: Complete: %w", err)
		}
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = s
	}

	resp, err := c.generate(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: empty response text")
	}
	return text, nil
}

// CallTool declares a single function and requires the model to call it.
func (c *Client) CallTool(ctx context.Context, model string, messages []domain.ChatMessage, tool domain.ToolDef) (domain.ToolCall, error) {
	if strings.TrimSpace(tool.Name) == "" {
		return domain.ToolCall{}, errors.New("gemini: tool name must not be empty")
	}
	decl := &genai.FunctionDeclaration{Name: tool.Name, Description: tool.Description}
	if len(tool.Parameters) > 0 {
		params, err := ToSchema(tool.Parameters)
		if err != nil {
			return domain.ToolCall{}, fmt.Errorf("gemini: CallTool: %w", err)
		}
		// Gemini rejects OBJECT parameters with no properties.
		if len(params.Properties) > 0 {
			decl.Parameters = params
		}
	}

	system, contents := splitMessages(messages)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Tools:             []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{decl}}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{tool.Name},
			},
		},
	}

	resp, err := c.generate(ctx, model, contents, cfg)
	if err != nil {
		return domain.ToolCall{}, err
	}
	calls := resp.FunctionCalls()
	if len(calls) == 0 {
		return domain.ToolCall{}, errors.New("gemini: no function call in response")
	}
	call := calls[0]
	if call.Name != tool.Name {
		return domain.ToolCall{}, fmt.Errorf("gemini: model called %q, expected %q", call.Name, tool.Name)
	}
	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return domain.ToolCall{}, fmt.Errorf("gemini: marshal arguments: %w", err)
	}
	return domain.ToolCall{ID: call.ID, Name: call.Name, Arguments: raw}, nil
}

func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if model == "" {
		return nil, errors.New("gemini: model must not be empty")
	}
	if len(contents) == 0 {
		return nil, errors.New("gemini: at least one non-system message is required")
	}
	resp, err := c.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("gemini: generate content: %w", &StatusError{Code: apiErr.Code, Message: apiErr.Message})
		}
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New("gemini: no candidates in response")
	}
	return resp, nil
}

// splitMessages moves system messages into a system instruction and maps the
// rest onto user and model turns.
func splitMessages(messages []domain.ChatMessage) (*genai.Content, []*genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return nil, contents
	}
	return genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser), contents
}

// jsonSchema is the subset of JSON Schema the pipeline's schemas use.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Required    []string               `json:"required"`
	Items       *jsonSchema            `json:"items"`
	Enum        []string               `json:"enum"`
	MaxLength   *int64                 `json:"maxLength"`
	MinLength   *int64                 `json:"minLength"`
}

// ToSchema converts a JSON Schema document into the SDK's schema type.
// Keywords Gemini does not accept, such as additionalProperties, are dropped.
func ToSchema(raw json.RawMessage) (*genai.Schema, error) {
	var js jsonSchema
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, fmt.Errorf("decode json schema: %w", err)
	}
	return convert(&js)
}

func convert(js *jsonSchema) (*genai.Schema, error) {
	t, err := schemaType(js.Type)
	if err != nil {
		return nil, err
	}
	out := &genai.Schema{
		Type:        t,
		Description: js.Description,
		Required:    js.Required,
		Enum:        js.Enum,
		MaxLength:   js.MaxLength,
		MinLength:   js.MinLength,
	}
	if len(js.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(js.Properties))
		for name, p := range js.Properties {
			ps, err := convert(p)
			if err != nil {
				return nil, fmt.Errorf("property %q: %w", name, err)
			}
			out.Properties[name] = ps
		}
	}
	if js.Items != nil {
		items, err := convert(js.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	}
	return out, nil
}

func schemaType(t string) (genai.Type, error) {
	switch t {
	case "object":
		return genai.TypeObject, nil
	case "string":
		return genai.TypeString, nil
	case "array":
		return genai.TypeArray, nil
	case "integer":
		return genai.TypeInteger, nil
	case "number":
		return genai.TypeNumber, nil
	case "boolean":
		return genai.TypeBoolean, nil
	}
	return "", fmt.Errorf("unsupported schema type %q", t)
}
