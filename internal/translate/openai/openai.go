// Package openai translates with OpenAI. When an assistant id is configured it
// uses the Assistants thread/run flow and polls the run until it finishes;
// otherwise it issues a single chat completion.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/translate"
)

const (
	defaultBaseURL      = "https://api.openai.com/v1"
	defaultModel        = "gpt-4o-mini"
	defaultPollInterval = time.Second
	defaultRunTimeout   = 60 * time.Second
	requestTimeout      = 30 * time.Second
)

// Instructions is the system instruction attached to every translation run.
const Instructions = "You are a translator. Translate the text to the requested language only. Do not explain anything. Keep names and symbols unchanged."

// Prompt builds the user message for a translation.
func Prompt(text, language string) string {
	return fmt.Sprintf("Translate the following Sentence to %s. "+
		"Only provide the translation without any explanations or additional text. "+
		"If there are parts that cannot be translated (e.g., names, emojis), leave those unchanged: %s", language, text)
}

var _ translate.Translator = (*Client)(nil)

// Config selects credentials and endpoints.
type Config struct {
	APIKey       string
	AssistantID  string
	Model        string
	BaseURL      string
	PollInterval time.Duration
	RunTimeout   time.Duration
}

// Client calls the OpenAI HTTP API.
type Client struct {
	baseURL      string
	apiKey       string
	assistantID  string
	model        string
	pollInterval time.Duration
	runTimeout   time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient validates cfg and applies defaults.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	timeout := cfg.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		assistantID:  strings.TrimSpace(cfg.AssistantID),
		model:        model,
		pollInterval: poll,
		runTimeout:   timeout,
		httpClient:   &http.Client{Timeout: requestTimeout},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Translate implements translate.Translator.
func (c *Client) Translate(ctx context.Context, text, language string) (string, error) {
	if c.assistantID != "" {
		return c.translateWithAssistant(ctx, text, language)
	}
	return c.translateWithChat(ctx, text, language)
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) translateWithChat(ctx context.Context, text, language string) (string, error) {
	payload := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: Instructions},
			{Role: "user", Content: Prompt(text, language)},
		},
	}
	var resp chatCompletionResponse
	if err := c.do(ctx, http.MethodPost, "/chat/completions", payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", translate.NewError(translate.ChatGPT, translate.KindResponse, errors.New("response has no choices"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type threadResponse struct {
	ID string `json:"id"`
}

type runRequest struct {
	AssistantID  string `json:"assistant_id"`
	Instructions string `json:"instructions,omitempty"`
}

type runResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

type messageList struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

func (c *Client) translateWithAssistant(ctx context.Context, text, language string) (string, error) {
	var thread threadResponse
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return "", err
	}
	threadPath := "/threads/" + url.PathEscape(thread.ID)

	msg := chatMessage{Role: "user", Content: Prompt(text, language)}
	if err := c.do(ctx, http.MethodPost, threadPath+"/messages", msg, nil); err != nil {
		return "", err
	}

	var run runResponse
	if err := c.do(ctx, http.MethodPost, threadPath+"/runs", runRequest{AssistantID: c.assistantID, Instructions: Instructions}, &run); err != nil {
		return "", err
	}

	run, err := c.pollRun(ctx, threadPath, run)
	if err != nil {
		return "", err
	}
	if run.Status != "completed" {
		detail := ""
		if run.LastError != nil && run.LastError.Message != "" {
			detail = " (" + run.LastError.Message + ")"
		}
		return "", translate.NewError(translate.ChatGPT, translate.KindResponse,
			fmt.Errorf("Run not completed. Status: %s%s", run.Status, detail))
	}

	var messages messageList
	if err := c.do(ctx, http.MethodGet, threadPath+"/messages?order=desc&limit=10", nil, &messages); err != nil {
		return "", err
	}
	for _, m := range messages.Data {
		if m.Role != "assistant" {
			continue
		}
		for _, part := range m.Content {
			if part.Type == "text" {
				return strings.TrimSpace(part.Text.Value), nil
			}
		}
	}
	return "", translate.NewError(translate.ChatGPT, translate.KindResponse, errors.New("no assistant response found"))
}

// pollRun waits until run leaves the queued/in_progress states or the run
// timeout elapses.
func (c *Client) pollRun(ctx context.Context, threadPath string, run runResponse) (runResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for pending(run.Status) {
		select {
		case <-ctx.Done():
			return run, translate.NewError(translate.ChatGPT, translate.KindForContext(ctx.Err()),
				fmt.Errorf("run %s still %s: %w", run.ID, run.Status, ctx.Err()))
		case <-ticker.C:
		}
		var next runResponse
		if err := c.do(ctx, http.MethodGet, threadPath+"/runs/"+url.PathEscape(run.ID), nil, &next); err != nil {
			return run, err
		}
		run = next
	}
	return run, nil
}

func pending(status string) bool {
	switch status {
	case "queued", "in_progress", "cancelling":
		return true
	default:
		return false
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return translate.NewError(translate.ChatGPT, translate.KindResponse, fmt.Errorf("marshal request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return translate.NewError(translate.ChatGPT, translate.KindNetwork, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.HasPrefix(path, "/threads") {
		req.Header.Set("OpenAI-Beta", "assistants=v2")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := translate.KindNetwork
		if ctxErr := ctx.Err(); ctxErr != nil {
			kind = translate.KindForContext(ctxErr)
		}
		return translate.NewError(translate.ChatGPT, kind, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return translate.NewError(translate.ChatGPT, translate.KindNetwork, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("openai request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(data), 512)))
		return translate.NewError(translate.ChatGPT, translate.KindForStatus(resp.StatusCode),
			fmt.Errorf("api %s returned status %d", path, resp.StatusCode))
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return translate.NewError(translate.ChatGPT, translate.KindResponse, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
