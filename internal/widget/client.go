package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"advisor-chat/internal/domain"
)

type relayRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type relayResponse struct {
	Response string `json:"response"`
}

// RelayClient calls the chat relay endpoint. It never talks to the completion
// provider directly and holds no credentials.
type RelayClient struct {
	url        string
	httpClient *http.Client
}

func NewRelayClient(url string, httpClient *http.Client) (*RelayClient, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("widget: relay url must not be empty")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RelayClient{url: url, httpClient: httpClient}, nil
}

func (c *RelayClient) Send(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := json.Marshal(relayRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("widget: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("widget: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("widget: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("widget: relay returned status %d", res.StatusCode)
	}

	var out relayResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("widget: decode response: %w", err)
	}
	return out.Response, nil
}
