package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"advisor-chat/internal/config"
	"advisor-chat/internal/integrations/openai"
	"advisor-chat/internal/integrations/paramstore"
	"advisor-chat/internal/usecase"
)

// NewLogger installs a JSON slog logger on stdout as the default.
func NewLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// NewRelayService wires the parameter store, provider client and relay.
func NewRelayService(ctx context.Context, cfg *config.Config) (*usecase.RelayService, error) {
	params, err := newGetter(ctx, cfg.ParamSource)
	if err != nil {
		return nil, err
	}

	var opts []openai.Option
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client, err := openai.NewClient(params, cfg.ParamPrefix, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: create OpenAI client: %w", err)
	}
	slog.Info("provider credential source", "source", cfg.ParamSource, "parameter", client.TokenParameterName())

	svc, err := usecase.NewRelayService(client)
	if err != nil {
		return nil, fmt.Errorf("app: create relay service: %w", err)
	}
	return svc, nil
}

func newGetter(ctx context.Context, source string) (paramstore.Getter, error) {
	if source == paramstore.SourceEnv {
		return paramstore.Select(source, nil)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}
	getter, err := paramstore.Select(source, awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("app: create parameter store client: %w", err)
	}
	return getter, nil
}
