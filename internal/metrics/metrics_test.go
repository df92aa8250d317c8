package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.LineClassified("player")
	m.LineClassified("player")
	m.Translation("google", OutcomeOK)
	m.ObserveLatency("google", 250*time.Millisecond)
	m.SetOpenTabs(3)

	body := scrape(t, m)
	assert.Contains(t, body, `td2chat_lines_classified_total{category="player"} 2`)
	assert.Contains(t, body, `td2chat_translations_total{backend="google",outcome="ok"} 1`)
	assert.Contains(t, body, `td2chat_translation_seconds_count{backend="google"} 1`)
	assert.Contains(t, body, `td2chat_open_tabs 3`)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.LineClassified("player")
	m.Translation("deepl", OutcomeError)
	m.ObserveLatency("deepl", time.Second)
	m.SetOpenTabs(1)
	assert.Nil(t, m.Registry())
}

func TestHandler(t *testing.T) {
	m := New()
	m.Translation("chatgpt", OutcomeFixed)

	assert.True(t, strings.Contains(scrape(t, m), `td2chat_translations_total{backend="chatgpt",outcome="fixed"} 1`))
}
