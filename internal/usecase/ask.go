package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"notes-agent/internal/domain"
)

const defaultMaxTextLength = 2000

// LLMClient is implemented by the OpenAI and Gemini integrations.
type LLMClient interface {
	Complete(ctx context.Context, model string, messages []domain.ChatMessage, schema domain.OutputSchema) (string, error)
	CallTool(ctx context.Context, model string, messages []domain.ChatMessage, tool domain.ToolDef) (domain.ToolCall, error)
}

// NoteStore is the persistence the tools run against.
type NoteStore interface {
	InsertIfAbsent(ctx context.Context, title, text string) (bool, error)
	FetchByTitle(ctx context.Context, title string) (*domain.Note, error)
	ListTitles(ctx context.Context) ([]string, error)
}

type Options struct {
	IntentModel string
	// MaxTextLength is counted in characters; zero means the default.
	MaxTextLength int
	// RequestTimeout bounds one Ask call; zero leaves it unbounded.
	RequestTimeout time.Duration
}

// NoteService runs the full pipeline for one instruction: validate, extract
// the intent, execute it.
type NoteService struct {
	extractor      *IntentExtractor
	executor       *Executor
	maxTextLen     int
	requestTimeout time.Duration
	logger         *zap.Logger
}

type AskInput struct {
	Text      string
	RequestID string
}

type AskOutput struct {
	Intent    domain.Intent
	Response  domain.Response
	RequestID string
}

func NewNoteService(llm LLMClient, store NoteStore, resolver ArgumentResolver, opts Options, logger *zap.Logger) (*NoteService, error) {
	if store == nil {
		return nil, errors.New("usecase: note store must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	extractor, err := NewIntentExtractor(llm, opts.IntentModel)
	if err != nil {
		return nil, err
	}
	executor, err := NewExecutor(store, resolver, logger)
	if err != nil {
		return nil, err
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = defaultMaxTextLength
	}
	if opts.RequestTimeout < 0 {
		opts.RequestTimeout = 0
	}
	return &NoteService{
		extractor:      extractor,
		executor:       executor,
		maxTextLen:     opts.MaxTextLength,
		requestTimeout: opts.RequestTimeout,
		logger:         logger,
	}, nil
}

func (s *NoteService) Ask(ctx context.Context, in AskInput) (AskOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return AskOutput{}, newError(ErrorInvalidInput, ReasonEmptyText, nil)
	}
	if utf8.RuneCountInString(text) > s.maxTextLen {
		return AskOutput{}, newError(ErrorInvalidInput, ReasonTextTooLong, nil)
	}

	requestID := strings.TrimSpace(in.RequestID)
	if requestID == "" {
		requestID = newUUID()
	}
	log := s.logger.With(zap.String("request_id", requestID))

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	start := time.Now()
	log.Debug("ask started", zap.Int("text_length", utf8.RuneCountInString(text)))

	intent, err := s.extractor.Extract(ctx, text)
	if err != nil {
		log.Warn("intent extraction failed", zap.Error(err))
		return AskOutput{RequestID: requestID}, err
	}
	log.Info("intent extracted",
		zap.String("action", string(intent.Action)),
		zap.Bool("known", intent.Action.Known()),
		zap.String("title", intent.Title),
	)

	resp, err := s.executor.Execute(ctx, intent)
	if err != nil {
		log.Warn("execution failed", zap.Error(err))
		return AskOutput{Intent: intent, RequestID: requestID}, err
	}
	log.Info("ask finished",
		zap.String("message", resp.Message),
		zap.Duration("elapsed", time.Since(start)),
	)
	return AskOutput{Intent: intent, Response: resp, RequestID: requestID}, nil
}

var newUUID = func() string {
	return uuid.NewString()
}
