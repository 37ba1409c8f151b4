package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"advisor-chat/internal/domain"
	"advisor-chat/internal/integrations/openai"
	"advisor-chat/internal/usecase"
)

type stubRelay struct {
	out    usecase.RelayOutput
	err    error
	in     usecase.RelayInput
	called bool
}

func (s *stubRelay) Relay(_ context.Context, in usecase.RelayInput) (usecase.RelayOutput, error) {
	s.in = in
	s.called = true
	return s.out, s.err
}

type tokenGetter struct{}

func (tokenGetter) GetParameter(context.Context, string) (string, error) {
	return `{"token":"sk-test"}`, nil
}

func makeEvent(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/chat",
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func parseBody[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return v
}

func TestNewHandler_ValidatesDependency(t *testing.T) {
	_, err := NewHandler(nil)
	require.Error(t, err)
}

func TestHandle_HappyPath(t *testing.T) {
	relay := &stubRelay{out: usecase.RelayOutput{Response: "hello"}}
	h, err := NewHandler(relay)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`{"messages":[{"role":"user","content":"What is an ETF?"}]}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, usecase.RelayInput{Messages: []domain.ChatMessage{{Role: "user", Content: "What is an ETF?"}}}, relay.in)

	require.JSONEq(t, `{"response":"hello"}`, resp.Body)
	require.Equal(t, "application/json", resp.Headers["Content-Type"])
	require.NotEmpty(t, resp.Headers[CorrelationHeader])
}

func TestHandle_InvalidBody(t *testing.T) {
	relay := &stubRelay{}
	h, err := NewHandler(relay)
	require.NoError(t, err)

	resp, err := h.Handle(context.Background(), makeEvent(`not-json`))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, GenericError, parseBody[ErrorResponse](t, resp.Body).Error)
	require.False(t, relay.called)
}

func TestHandle_AllFailuresCollapseToGenericError(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{name: "invalid input", err: &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "unknown_role"}},
		{name: "rate limited", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "openai_rate_limited"}},
		{name: "upstream", err: &usecase.Error{Code: usecase.ErrorUpstream, Reason: "openai_error", Err: errors.New("invalid_api_key")}},
		{name: "unexpected", err: errors.New("boom")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := NewHandler(&stubRelay{err: tc.err})
			require.NoError(t, err)

			resp, err := h.Handle(context.Background(), makeEvent(`{"messages":[{"role":"user","content":"Hi"}]}`))
			require.NoError(t, err)
			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			require.JSONEq(t, `{"error":"Failed to process your request"}`, resp.Body)
		})
	}
}

func TestHandle_RejectsNonPost(t *testing.T) {
	relay := &stubRelay{}
	h, err := NewHandler(relay)
	require.NoError(t, err)

	event := makeEvent("")
	event.HTTPMethod = http.MethodGet
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.False(t, relay.called)
}

func TestHandle_UsesProvidedCorrelationID_CaseInsensitive(t *testing.T) {
	h, err := NewHandler(&stubRelay{out: usecase.RelayOutput{Response: "ok"}})
	require.NoError(t, err)

	event := makeEvent(`{"messages":[]}`)
	event.Headers["x-correlation-id"] = "corr-123"
	resp, err := h.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, "corr-123", resp.Headers[CorrelationHeader])
}

func newProvider(t *testing.T, status int, body string, captured *[]domain.ChatMessage) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []domain.ChatMessage `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		*captured = req.Messages
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRelayHandler(t *testing.T, providerURL string) *Handler {
	t.Helper()
	client, err := openai.NewClient(tokenGetter{}, "/optivise", openai.WithBaseURL(providerURL))
	require.NoError(t, err)
	svc, err := usecase.NewRelayService(client)
	require.NoError(t, err)
	h, err := NewHandler(svc)
	require.NoError(t, err)
	return h
}

func TestHandle_EndToEnd_RoundTrip(t *testing.T) {
	var captured []domain.ChatMessage
	srv := newProvider(t, http.StatusOK, `{"choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"}}]}`, &captured)
	h := newRelayHandler(t, srv.URL)

	resp, err := h.Handle(context.Background(), makeEvent(`{"messages":[{"role":"user","content":"Hi"}]}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"response":"Hello!"}`, resp.Body)
	require.Equal(t, []domain.ChatMessage{
		{Role: "system", Content: usecase.SystemPrompt},
		{Role: "user", Content: "Hi"},
	}, captured)
}

func TestHandle_EndToEnd_ProviderErrorIsHidden(t *testing.T) {
	var captured []domain.ChatMessage
	srv := newProvider(t, http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, &captured)
	h := newRelayHandler(t, srv.URL)

	resp, err := h.Handle(context.Background(), makeEvent(`{"messages":[{"role":"user","content":"Hi"}]}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.JSONEq(t, `{"error":"Failed to process your request"}`, resp.Body)
	require.NotContains(t, resp.Body, "API key")
}

func TestHandle_MissingMessagesNeverReachesProvider(t *testing.T) {
	for _, body := range []string{`{}`, `null`, `{"messages":null}`} {
		t.Run(body, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"}}]}`))
			}))
			defer srv.Close()
			h := newRelayHandler(t, srv.URL)

			resp, err := h.Handle(context.Background(), makeEvent(body))
			require.NoError(t, err)
			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			require.JSONEq(t, `{"error":"Failed to process your request"}`, resp.Body)
			require.Zero(t, calls)
		})
	}
}

func TestHandle_EmptyMessagesIsForwarded(t *testing.T) {
	var captured []domain.ChatMessage
	srv := newProvider(t, http.StatusOK, `{"choices":[{"index":0,"message":{"role":"assistant","content":"Hello!"}}]}`, &captured)
	h := newRelayHandler(t, srv.URL)

	resp, err := h.Handle(context.Background(), makeEvent(`{"messages":[]}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []domain.ChatMessage{{Role: "system", Content: usecase.SystemPrompt}}, captured)
}
