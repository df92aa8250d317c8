package stacjownik

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DriverFetcher looks up driver statistics. *Client implements it.
type DriverFetcher interface {
	FetchDriver(ctx context.Context, name string) (DriverInfo, error)
}

var _ DriverFetcher = (*Client)(nil)

// Client talks to the Stacjownik public API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL   = "https://stacjownik.spythere.eu"
	defaultUserAgent = "td2chat/1.0"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for baseURL; empty uses the public service.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchDriver retrieves the driver's aggregate statistics.
func (c *Client) FetchDriver(ctx context.Context, name string) (DriverInfo, error) {
	if c == nil {
		return DriverInfo{}, fmt.Errorf("client is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return DriverInfo{}, fmt.Errorf("driver name required")
	}
	values := url.Values{}
	values.Set("name", name)
	rel := &url.URL{Path: "/api/getDriverInfo", RawQuery: values.Encode()}
	var payload DriverInfo
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return DriverInfo{}, err
	}
	return payload, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse stacjownik url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
