package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"notes-agent/internal/config"
	"notes-agent/internal/integrations/gemini"
	"notes-agent/internal/integrations/openai"
	"notes-agent/internal/match"
	"notes-agent/internal/repository"
	"notes-agent/internal/usecase"
)

// deps holds everything a command needs to run the pipeline.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *repository.SQLStore
	service *usecase.NoteService
}

func (r *deps) Close() {
	if r.store != nil {
		_ = r.store.Close()
	}
	_ = r.logger.Sync()
}

// newLogger builds the zap logger for cfg. Interactive sessions own the
// terminal, so they only log when log_file is set.
func newLogger(cfg *config.Config, verbose, interactive bool) (*zap.Logger, error) {
	if interactive && cfg.LogFile == "" {
		return zap.NewNop(), nil
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.LogFile != "" {
		zcfg.OutputPaths = []string{cfg.LogFile}
		zcfg.ErrorOutputPaths = []string{cfg.LogFile}
	}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func newLLM(ctx context.Context, cfg *config.Config) (usecase.LLMClient, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		c, err := openai.NewClient(
			openai.WithAPIKey(cfg.OpenAIAPIKey),
			openai.WithBaseURL(cfg.OpenAIBaseURL),
			openai.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func newResolver(cfg *config.Config, llm usecase.LLMClient) (usecase.ArgumentResolver, error) {
	if cfg.Resolver == config.ResolverDirect {
		r, err := usecase.NewDirectResolver(match.New(cfg.MatchThreshold))
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	r, err := usecase.NewAgentResolver(llm, cfg.ActionModel)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// loadConfig reads configuration honouring the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newDeps wires config, logger, store, LLM and service.
func newDeps(ctx context.Context, interactive bool) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg, debug, interactive)
	if err != nil {
		return nil, err
	}

	store, err := repository.Open(cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	rt := &deps{cfg: cfg, logger: logger, store: store}

	llm, err := newLLM(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	resolver, err := newResolver(cfg, llm)
	if err != nil {
		rt.Close()
		return nil, err
	}
	svc, err := usecase.NewNoteService(llm, store, resolver, usecase.Options{
		IntentModel:    cfg.IntentModel,
		MaxTextLength:  cfg.MaxTextLength,
		RequestTimeout: cfg.RequestTimeout,
	}, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.service = svc

	logger.Debug("pipeline ready",
		zap.String("provider", cfg.Provider),
		zap.String("resolver", cfg.Resolver),
		zap.String("dialect", string(store.Dialect())),
		zap.String("intent_model", cfg.IntentModel),
		zap.String("action_model", cfg.ActionModel),
	)
	return rt, nil
}
