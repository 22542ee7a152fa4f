package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"notes-agent/internal/domain"
)

// ResolveRequest is everything a resolver may use to fill in one tool call.
// Candidates is set only for retrieve and holds the existing titles.
type ResolveRequest struct {
	Intent      domain.Intent
	Instruction string
	Tool        domain.ToolDef
	Candidates  []string
}

// ArgumentResolver produces the arguments for the single tool a dispatch
// branch offers. It never chooses the tool.
type ArgumentResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (domain.ToolCall, error)
}

// TitleMatcher maps a loosely typed title onto an existing one.
type TitleMatcher interface {
	Best(query string, candidates []string) (string, bool)
}

// AgentResolver lets the action model fill in the arguments.
type AgentResolver struct {
	llm   LLMClient
	model string
}

func NewAgentResolver(llm LLMClient, model string) (*AgentResolver, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("usecase: action model must not be empty")
	}
	return &AgentResolver{llm: llm, model: model}, nil
}

func (r *AgentResolver) Resolve(ctx context.Context, req ResolveRequest) (domain.ToolCall, error) {
	return r.llm.CallTool(ctx, r.model, buildActionMessages(req.Instruction, req.Candidates), req.Tool)
}

// DirectResolver builds the arguments from the intent without a model call.
type DirectResolver struct {
	matcher TitleMatcher
}

func NewDirectResolver(matcher TitleMatcher) (*DirectResolver, error) {
	if matcher == nil {
		return nil, errors.New("usecase: title matcher must not be nil")
	}
	return &DirectResolver{matcher: matcher}, nil
}

func (r *DirectResolver) Resolve(_ context.Context, req ResolveRequest) (domain.ToolCall, error) {
	var args any
	switch req.Tool.Name {
	case ToolCreateNote:
		args = createArgs{Title: req.Intent.Title, Text: req.Intent.Text}
	case ToolRetrieveNote:
		title, _ := r.matcher.Best(req.Intent.Title, req.Candidates)
		args = retrieveArgs{Title: title}
	case ToolListNotes:
		args = struct{}{}
	default:
		return domain.ToolCall{}, fmt.Errorf("usecase: no direct arguments for tool %q", req.Tool.Name)
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return domain.ToolCall{}, fmt.Errorf("usecase: marshal %s arguments: %w", req.Tool.Name, err)
	}
	return domain.ToolCall{ID: "direct-" + newUUID(), Name: req.Tool.Name, Arguments: raw}, nil
}
