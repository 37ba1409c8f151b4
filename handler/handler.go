package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/usecase"
)

const (
	CorrelationHeader = "X-Correlation-Id"

	// GenericError is the only failure detail ever returned to callers.
	GenericError = "Failed to process your request"
)

type Relayer interface {
	Relay(ctx context.Context, in usecase.RelayInput) (usecase.RelayOutput, error)
}

// ChatRequest is the relay request body.
type ChatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// ChatResponse is the relay success body.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the relay failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	relay Relayer
}

func NewHandler(r Relayer) (*Handler, error) {
	if r == nil {
		return nil, errors.New("handler: relayer must not be nil")
	}
	return &Handler{relay: r}, nil
}

// Handle serves the chat relay behind API Gateway.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := CorrelationID(headerValue(event.Headers, CorrelationHeader))
	logger := slog.With("correlation_id", correlationID)

	if event.HTTPMethod != "" && event.HTTPMethod != http.MethodPost {
		logger.Warn("method not allowed", "method", event.HTTPMethod)
		return jsonResponse(http.StatusMethodNotAllowed, correlationID, ErrorResponse{Error: GenericError}), nil
	}

	status, body := Serve(ctx, h.relay, logger, []byte(event.Body))
	return jsonResponse(status, correlationID, body), nil
}

// Serve decodes a relay request, runs it and returns the status and body to
// write. Every failure collapses to 500 with GenericError.
func Serve(ctx context.Context, relay Relayer, logger *slog.Logger, raw []byte) (int, any) {
	var req ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		logger.Error("chat relay failed", "code", usecase.ErrorInvalidInput, "reason", "invalid_body", "err", err)
		return http.StatusInternalServerError, ErrorResponse{Error: GenericError}
	}
	// An empty array is a valid conversation; a missing or null field is not.
	if req.Messages == nil {
		logger.Error("chat relay failed", "code", usecase.ErrorInvalidInput, "reason", "missing_messages")
		return http.StatusInternalServerError, ErrorResponse{Error: GenericError}
	}

	out, err := relay.Relay(ctx, usecase.RelayInput{Messages: req.Messages})
	if err != nil {
		logRelayError(logger, err)
		return http.StatusInternalServerError, ErrorResponse{Error: GenericError}
	}
	logger.Info("chat relay completed", "messages", len(req.Messages))
	return http.StatusOK, ChatResponse{Response: out.Response}
}

// CorrelationID returns provided when set, otherwise a new random id.
func CorrelationID(provided string) string {
	if id := strings.TrimSpace(provided); id != "" {
		return id
	}
	return uuid.NewString()
}

func logRelayError(logger *slog.Logger, err error) {
	var relayErr *usecase.Error
	if errors.As(err, &relayErr) {
		logger.Error("chat relay failed", "code", relayErr.Code, "reason", relayErr.Reason, "err", relayErr.Err)
		return
	}
	logger.Error("chat relay failed", "code", usecase.ErrorInternal, "err", err)
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func jsonResponse(status int, correlationID string, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		raw = []byte(`{"error":"` + GenericError + `"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			CorrelationHeader: correlationID,
		},
		Body: string(raw),
	}
}
