package usecase

import (
	"context"
	"errors"
	"net/http"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/integrations/openai"
)

const (
	completionModel       = "gpt-4o"
	completionTemperature = 0.7
	completionMaxTokens   = 500
)

type LLMClient interface {
	Complete(ctx context.Context, in openai.CompletionRequest) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// RelayService forwards a caller-held conversation to the completion
// provider. It keeps no state between calls and is safe for concurrent use.
type RelayService struct {
	llm LLMClient
}

type RelayInput struct {
	Messages []domain.ChatMessage
}

type RelayOutput struct {
	Response string
}

func NewRelayService(llm LLMClient) (*RelayService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	return &RelayService{llm: llm}, nil
}

func (s *RelayService) Relay(ctx context.Context, in RelayInput) (RelayOutput, error) {
	for _, m := range in.Messages {
		if !domain.ValidRole(m.Role) {
			return RelayOutput{}, newError(ErrorInvalidInput, "unknown_role", nil)
		}
	}

	reply, err := s.llm.Complete(ctx, openai.CompletionRequest{
		Model:       completionModel,
		Messages:    withSystemPrompt(in.Messages),
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
			return RelayOutput{}, newError(ErrorUpstream, "openai_rate_limited", err)
		}
		return RelayOutput{}, newError(ErrorUpstream, "openai_error", err)
	}
	return RelayOutput{Response: reply}, nil
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
