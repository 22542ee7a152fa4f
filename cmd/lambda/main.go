package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"notes-agent/handler"
	"notes-agent/internal/integrations/openai"
	"notes-agent/internal/integrations/paramstore"
	"notes-agent/internal/repository"
	"notes-agent/internal/usecase"
)

const (
	defaultIntentModel = "gpt-4o-mini"
	defaultActionModel = "gpt-4o"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// ---- Configuration (read only here) ----
	paramPrefix := strings.TrimRight(mustEnv(logger, "PARAM_PREFIX"), "/")
	dbDSN := os.Getenv("DB_DSN")
	maxTextLen, err := envInt("MAX_TEXT_LENGTH", 2000)
	if err != nil {
		logger.Fatal("invalid environment variable", zap.Error(err))
	}

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		logger.Fatal("failed to create SSM client", zap.Error(err))
	}
	intentModel, actionModel := loadModels(ctx, logger, ssmClient, paramPrefix)

	var store usecase.NoteStore
	if dbDSN != "" {
		sqlStore, err := repository.Open(dbDSN)
		if err != nil {
			logger.Fatal("failed to open SQL store", zap.Error(err))
		}
		defer sqlStore.Close()
		store = sqlStore
	} else {
		dynamoStore, err := repository.NewDynamoStore(awsdynamodb.NewFromConfig(cfg), mustEnv(logger, "NOTES_TABLE"))
		if err != nil {
			logger.Fatal("failed to create note store", zap.Error(err))
		}
		store = dynamoStore
	}

	openaiClient, err := openai.NewClient(openai.WithParamStore(ssmClient, paramPrefix))
	if err != nil {
		logger.Fatal("failed to create OpenAI client", zap.Error(err))
	}

	// ---- Handler ----
	resolver, err := usecase.NewAgentResolver(openaiClient, actionModel)
	if err != nil {
		logger.Fatal("failed to create resolver", zap.Error(err))
	}
	svc, err := usecase.NewNoteService(openaiClient, store, resolver, usecase.Options{
		IntentModel:   intentModel,
		MaxTextLength: maxTextLen,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create note service", zap.Error(err))
	}

	h, err := handler.NewHandler(svc, handler.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to create handler", zap.Error(err))
	}

	lambda.Start(h.Handle)
}

// loadModels reads model overrides from Parameter Store, keeping the
// defaults for anything missing or unreadable.
func loadModels(ctx context.Context, logger *zap.Logger, ps *paramstore.Client, prefix string) (string, string) {
	intentKey := prefix + "/config/intent_model"
	actionKey := prefix + "/config/action_model"
	intentModel, actionModel := defaultIntentModel, defaultActionModel

	values, err := ps.GetParameters(ctx, intentKey, actionKey)
	if err != nil {
		logger.Warn("using default models", zap.Error(err))
		return intentModel, actionModel
	}
	if v := strings.TrimSpace(values[intentKey]); v != "" {
		intentModel = v
	}
	if v := strings.TrimSpace(values[actionKey]); v != "" {
		actionModel = v
	}
	return intentModel, actionModel
}

func mustEnv(logger *zap.Logger, key string) string {
	v := os.Getenv(key)
	if v == "" {
		logger.Fatal("required environment variable is not set", zap.String("key", key))
	}
	return v
}

// envInt reads a positive integer from key, or def when it is unset.
func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}
