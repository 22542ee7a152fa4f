package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"notes-agent/internal/domain"
)

// Executor runs one intent: it picks the branch from the action, has the
// resolver fill in that branch's tool and runs the tool once.
type Executor struct {
	store    NoteStore
	tools    *ToolRegistry
	resolver ArgumentResolver
	logger   *zap.Logger
}

func NewExecutor(store NoteStore, resolver ArgumentResolver, logger *zap.Logger) (*Executor, error) {
	if resolver == nil {
		return nil, errors.New("usecase: argument resolver must not be nil")
	}
	tools, err := NewToolRegistry(store)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{store: store, tools: tools, resolver: resolver, logger: logger}, nil
}

func (e *Executor) Execute(ctx context.Context, intent domain.Intent) (domain.Response, error) {
	req := ResolveRequest{Intent: intent}
	switch intent.Action {
	case domain.ActionCreate:
		req.Instruction = createInstruction(intent.Title, intent.Text)
		req.Tool = e.mustTool(ToolCreateNote)
	case domain.ActionRetrieve:
		candidates, err := e.store.ListTitles(ctx)
		if err != nil {
			return domain.Response{}, newError(ErrorInternal, ReasonStoreListError, err)
		}
		if candidates == nil {
			candidates = []string{}
		}
		req.Instruction = retrieveInstruction(intent.Title)
		req.Tool = e.mustTool(ToolRetrieveNote)
		req.Candidates = candidates
	case domain.ActionList:
		req.Instruction = listInstruction()
		req.Tool = e.mustTool(ToolListNotes)
	default:
		e.logger.Info("action not recognized", zap.String("action", string(intent.Action)))
		return domain.Response{Message: domain.MessageNotRecognized}, nil
	}

	call, err := e.resolver.Resolve(ctx, req)
	if err != nil {
		return domain.Response{}, upstreamError(ReasonAgentRateLimited, ReasonAgentError, err)
	}
	if call.Name != req.Tool.Name {
		return domain.Response{}, newError(ErrorUpstream, ReasonAgentError,
			fmt.Errorf("resolver returned tool %q, expected %q", call.Name, req.Tool.Name))
	}

	e.logger.Debug("invoking tool", zap.String("tool", call.Name), zap.String("call_id", call.ID))
	resp, err := e.tools.Invoke(ctx, call)
	if err != nil {
		e.logger.Warn("tool failed", zap.String("tool", call.Name), zap.Error(err))
		return domain.Response{}, err
	}
	return resp, nil
}

func (e *Executor) mustTool(name string) domain.ToolDef {
	def, ok := e.tools.Definition(name)
	if !ok {
		panic("usecase: tool not registered: " + name)
	}
	return def
}
