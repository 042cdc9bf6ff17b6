package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenRouter defaults.
const (
	DefaultOpenAIBaseURL = "https://openrouter.ai/api/v1"
	DefaultOpenAIModel   = "mistralai/mistral-7b-instruct:free"
	defaultAppTitle      = "Swipe Interview Assistant"
	defaultHTTPTimeout   = 60 * time.Second
	maxErrorBody         = 512
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Code    any    `json:"code"`
}

// OpenAICompleter completes prompts against an OpenAI-compatible chat
// completions endpoint such as OpenRouter.
type OpenAICompleter struct {
	baseURL string
	apiKey  string
	model   string
	referer string
	title   string
	client  *http.Client
}

// OpenAIOption configures an OpenAICompleter.
type OpenAIOption func(*OpenAICompleter)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) OpenAIOption {
	return func(c *OpenAICompleter) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithModel overrides the model name.
func WithModel(m string) OpenAIOption {
	return func(c *OpenAICompleter) {
		if m = strings.TrimSpace(m); m != "" {
			c.model = m
		}
	}
}

// WithReferer sets the HTTP-Referer attribution header.
func WithReferer(ref string) OpenAIOption {
	return func(c *OpenAICompleter) { c.referer = strings.TrimSpace(ref) }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAICompleter) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewOpenAICompleter creates a completer with OpenRouter defaults.
func NewOpenAICompleter(apiKey string, opts ...OpenAIOption) (*OpenAICompleter, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	c := &OpenAICompleter{
		baseURL: DefaultOpenAIBaseURL,
		apiKey:  apiKey,
		model:   DefaultOpenAIModel,
		title:   defaultAppTitle,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the model name.
func (c *OpenAICompleter) Model() string { return c.model }

// Complete sends p as a system and a user message and returns the first choice.
func (c *OpenAICompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	reqBody := chatRequest{Model: c.model}
	if p.System != "" {
		reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "system", Content: p.System})
	}
	reqBody.Messages = append(reqBody.Messages, chatMessage{Role: "user", Content: p.User})
	if p.JSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	req.Header.Set("X-Title", c.title)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return "", fmt.Errorf("chat completions: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chat completions: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
