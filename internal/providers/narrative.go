package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	narrativeModel       = "claude-sonnet-4-5-20250929"
	narrativeMaxTokens   = 8192
)

// AnthropicClient streams the analysis narrative from the Anthropic
// Messages API. The stream's lifetime is tied to the request context;
// canceling the context tears the connection down.
type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
}

// NewAnthropicClient builds a narrative streamer. The timeout bounds
// the whole stream, not individual chunks.
func NewAnthropicClient(apiKey string, timeout time.Duration, logger *slog.Logger) *AnthropicClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		baseURL:    anthropicMessagesURL,
	}
}

// NewAnthropicClientWithBaseURL is the test hook for pointing the
// client at a local server.
func NewAnthropicClientWithBaseURL(baseURL, apiKey string, logger *slog.Logger) *AnthropicClient {
	c := NewAnthropicClient(apiKey, 30*time.Second, logger)
	c.baseURL = baseURL
	return c
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Stream sends the prompt and forwards each text delta to emit as it
// arrives. It returns an error when the producer fails or emit rejects
// a chunk; the caller decides how to degrade.
func (c *AnthropicClient) Stream(ctx context.Context, prompt string, emit func(chunk string) error) error {
	if c.apiKey == "" {
		return fmt.Errorf("narrative producer not configured")
	}

	body, err := json.Marshal(messagesRequest{
		Model:     narrativeModel,
		MaxTokens: narrativeMaxTokens,
		Stream:    true,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("narrative producer returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Text != "" {
				if err := emit(event.Delta.Text); err != nil {
					return err
				}
			}
		case "error":
			return fmt.Errorf("narrative stream error: %s", event.Error.Message)
		case "message_stop":
			return nil
		}
	}
	return scanner.Err()
}
