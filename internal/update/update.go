// Package update checks GitHub releases for a newer td2chat build.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const requestTimeout = 3 * time.Second

// Release is the part of the GitHub release payload the check reads.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result describes the outcome of a check.
type Result struct {
	Current   string
	Latest    string
	URL       string
	Available bool
}

// Checker queries a release endpoint.
type Checker struct {
	url  string
	http *http.Client
}

// NewChecker builds a Checker for the latest-release endpoint url.
func NewChecker(url string) *Checker {
	return &Checker{url: url, http: &http.Client{Timeout: requestTimeout}}
}

// Check fetches the latest release and compares it with current.
func (c *Checker) Check(ctx context.Context, current string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "td2chat")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("release check returned status %d", resp.StatusCode)
	}
	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	return Result{
		Current:   current,
		Latest:    rel.TagName,
		URL:       rel.HTMLURL,
		Available: Newer(rel.TagName, current),
	}, nil
}

// Newer reports whether latest is a higher semantic version than current.
// Tags without a leading "v" are accepted. Invalid versions never compare newer.
func Newer(latest, current string) bool {
	l, c := canonical(latest), canonical(current)
	if !semver.IsValid(l) || !semver.IsValid(c) {
		return false
	}
	return semver.Compare(l, c) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
