// Package google translates through the public Google Translate web endpoint
// (client=gtx). The endpoint is rate-limit sensitive, so callers should not
// run it concurrently.
package google

import (
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
	defaultBaseURL   = "https://translate.googleapis.com"
	defaultUserAgent = "td2chat/1.0"
	requestTimeout   = 10 * time.Second
)

var _ translate.Translator = (*Client)(nil)

// Client calls the gtx endpoint.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
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

// WithLogger sets the logger used for failed responses.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a Client for baseURL; empty uses the public endpoint.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse google base url %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     zap.NewNop(),
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Translate implements translate.Translator.
func (c *Client) Translate(ctx context.Context, text, language string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	values := url.Values{}
	values.Set("client", "gtx")
	values.Set("sl", "auto")
	values.Set("tl", translate.ISOCode(language))
	values.Set("dt", "t")
	values.Set("q", text)
	rel := &url.URL{Path: "/translate_a/single", RawQuery: values.Encode()}
	reqURL := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", translate.NewError(translate.Google, translate.KindNetwork, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := translate.KindNetwork
		if ctxErr := ctx.Err(); ctxErr != nil {
			kind = translate.KindForContext(ctxErr)
		}
		return "", translate.NewError(translate.Google, kind, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", translate.NewError(translate.Google, translate.KindNetwork, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("google translate request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(data), 256)))
		return "", translate.NewError(translate.Google, translate.KindForStatus(resp.StatusCode),
			fmt.Errorf("google translate returned status %d", resp.StatusCode))
	}

	translated, err := parseResponse(data)
	if err != nil {
		return "", translate.NewError(translate.Google, translate.KindResponse, err)
	}
	return translated, nil
}

// parseResponse concatenates the translated segments of a gtx payload:
// [[["Hallo Welt","Hello world",null,null,10]],null,"en"].
func parseResponse(data []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", errors.New("empty response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", errors.New("unexpected response shape")
	}
	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("response has no translated segments")
	}
	return b.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
