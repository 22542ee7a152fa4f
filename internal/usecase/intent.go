package usecase

import (
	"context"
	"errors"
	"strings"

	"notes-agent/internal/domain"
)

// IntentExtractor turns free text into an Intent with one model call.
type IntentExtractor struct {
	llm   LLMClient
	model string
}

func NewIntentExtractor(llm LLMClient, model string) (*IntentExtractor, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("usecase: intent model must not be empty")
	}
	return &IntentExtractor{llm: llm, model: model}, nil
}

// Extract fails hard on any service or parse error. There is no fallback
// intent.
func (x *IntentExtractor) Extract(ctx context.Context, text string) (domain.Intent, error) {
	raw, err := x.llm.Complete(ctx, x.model, buildIntentMessages(text), IntentOutputSchema)
	if err != nil {
		return domain.Intent{}, upstreamError(ReasonIntentRateLimited, ReasonIntentError, err)
	}
	intent, err := parseIntent(raw)
	if err != nil {
		return domain.Intent{}, newError(ErrorUpstream, ReasonIntentMalformedResponse, err)
	}
	return intent, nil
}
