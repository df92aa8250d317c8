// Package deepl implements translate.Translator on the DeepL v2 REST API.
package deepl

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
	proBaseURL     = "https://api.deepl.com"
	freeBaseURL    = "https://api-free.deepl.com"
	requestTimeout = 15 * time.Second
)

var _ translate.Translator = (*Client)(nil)

// Client talks to DeepL.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
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

// NewClient builds a DeepL client. An empty baseURL selects the free API for
// keys ending in ":fx" and the pro API otherwise.
func NewClient(apiKey, baseURL string, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, fmt.Errorf("deepl api key is empty")
	}
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = proBaseURL
		if strings.HasSuffix(key, ":fx") {
			base = freeBaseURL
		}
	}
	c := &Client{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     key,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UnsupportedMessage is the result text shown for languages DeepL cannot target.
func UnsupportedMessage(language string) string {
	return fmt.Sprintf("Target language '%s' not supported by Deepl", language)
}

type translateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate implements translate.Translator. Languages missing from the DeepL
// code table fail with an error wrapping translate.ErrUnsupportedLanguage.
func (c *Client) Translate(ctx context.Context, text, language string) (string, error) {
	code, ok := translate.DeepLCode(language)
	if !ok {
		return "", translate.NewUnsupported(translate.DeepL, UnsupportedMessage(language))
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", translate.NewError(translate.DeepL, translate.KindNetwork, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := translate.KindNetwork
		if ctxErr := ctx.Err(); ctxErr != nil {
			kind = translate.KindForContext(ctxErr)
		}
		return "", translate.NewError(translate.DeepL, kind, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", translate.NewError(translate.DeepL, translate.KindNetwork, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("deepl request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(data), 256)))
		kind := translate.KindForStatus(resp.StatusCode)
		if resp.StatusCode == 456 {
			return "", translate.NewError(translate.DeepL, translate.KindResponse, errors.New("deepl quota exceeded"))
		}
		return "", translate.NewError(translate.DeepL, kind, fmt.Errorf("deepl returned status %d", resp.StatusCode))
	}

	var payload translateResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", translate.NewError(translate.DeepL, translate.KindResponse, fmt.Errorf("decode response: %w", err))
	}
	if len(payload.Translations) == 0 {
		return "", translate.NewError(translate.DeepL, translate.KindResponse, errors.New("deepl response has no translations"))
	}
	return payload.Translations[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
