package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravuralion/td2-chat-translator/internal/chatlog"
	"github.com/bravuralion/td2-chat-translator/internal/masker"
	"github.com/bravuralion/td2-chat-translator/internal/resources"
	"github.com/bravuralion/td2-chat-translator/internal/translate"
)

// recordingTranslator upper-cases its input and records every call.
type recordingTranslator struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
	delay map[string]time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (r *recordingTranslator) Translate(ctx context.Context, text, language string) (string, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		cur := r.maxInFlight.Load()
		if n <= cur || r.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	r.mu.Lock()
	r.calls = append(r.calls, text)
	err := r.fail[text]
	delay := r.delay[text]
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return "", err
	}
	return strings.ToUpper(text) + " 【source】 ", nil
}

func (r *recordingTranslator) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func msg(body string) chatlog.Message {
	return chatlog.Message{Speaker: "(12:00:00) 1@Anna", Body: body, Category: chatlog.Player}
}

func TestFixedTranslationShortCircuits(t *testing.T) {
	tr := &recordingTranslator{}
	fixed := resources.FixedTable{}
	fixed.Add("hello", "German", "Hallo (fest)")

	d := New(Options{
		Translators: map[translate.Backend]translate.Translator{translate.ChatGPT: tr},
		Fixed:       fixed,
	})

	results := d.Dispatch(context.Background(), Request{
		Messages: []chatlog.Message{msg("Hello")},
		Language: "German",
		Backend:  translate.ChatGPT,
	})

	require.Len(t, results, 1)
	assert.Equal(t, "Hallo (fest)", results[0].Text)
	assert.True(t, results[0].Fixed)
	assert.Empty(t, tr.Calls())
}

func TestBackendErrorIsPerLine(t *testing.T) {
	tr := &recordingTranslator{fail: map[string]error{"test": errors.New("boom")}}
	d := New(Options{Translators: map[translate.Backend]translate.Translator{translate.ChatGPT: tr}})

	results := d.Dispatch(context.Background(), Request{
		Messages:      []chatlog.Message{msg("one"), msg("test"), msg("three")},
		Language:      "German",
		Backend:       translate.ChatGPT,
		PreserveOrder: true,
	})

	require.Len(t, results, 3)
	assert.Equal(t, "ONE", results[0].Text)
	assert.Equal(t, "[ChatGPT Error] boom", results[1].Text)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "THREE", results[2].Text)
	assert.Equal(t, "(12:00:00) 1@Anna: THREE", results[2].Display())
}

func TestUnsupportedLanguageShownVerbatim(t *testing.T) {
	tr := translate.TranslatorFunc(func(ctx context.Context, text, language string) (string, error) {
		return "", translate.NewUnsupported(translate.DeepL, "Target language 'Maltese' not supported by Deepl")
	})
	d := New(Options{Translators: map[translate.Backend]translate.Translator{translate.DeepL: tr}})

	results := d.Dispatch(context.Background(), Request{Messages: []chatlog.Message{msg("hi")}, Language: "Maltese", Backend: translate.DeepL})

	require.Len(t, results, 1)
	assert.Equal(t, "Target language 'Maltese' not supported by Deepl", results[0].Text)
}

func TestMaskingAroundBackend(t *testing.T) {
	tr := &recordingTranslator{}
	d := New(Options{
		Translators: map[translate.Backend]translate.Translator{translate.ChatGPT: tr},
		Masker:      masker.New([]string{"Kraków Główny"}),
	})

	results := d.Dispatch(context.Background(), Request{
		Messages: []chatlog.Message{msg("jadę do Kraków Główny")},
		Language: "English",
		Backend:  translate.ChatGPT,
	})

	require.Len(t, results, 1)
	calls := tr.Calls()
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0], "Kraków")
	// the fake upper-cases text, tokens included, so only exact tokens survive
	assert.Contains(t, results[0].Text, "JADĘ DO")
}

func TestIgnoredMessagesDropped(t *testing.T) {
	tr := &recordingTranslator{}
	d := New(Options{
		Translators: map[translate.Backend]translate.Translator{translate.ChatGPT: tr},
		Ignore:      resources.IgnoreSet{"gg": {}},
	})

	results := d.Dispatch(context.Background(), Request{
		Messages: []chatlog.Message{msg("gg"), msg("hi")},
		Language: "German",
		Backend:  translate.ChatGPT,
	})

	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, []string{"hi"}, tr.Calls())
}

func TestWorkerCaps(t *testing.T) {
	messages := make([]chatlog.Message, 8)
	delays := make(map[string]time.Duration)
	for i := range messages {
		body := string(rune('a' + i))
		messages[i] = msg(body)
		delays[body] = 20 * time.Millisecond
	}

	google := &recordingTranslator{delay: delays}
	deepl := &recordingTranslator{delay: delays}
	d := New(Options{
		Translators: map[translate.Backend]translate.Translator{
			translate.Google: google,
			translate.DeepL:  deepl,
		},
		Workers: 3,
	})

	assert.Equal(t, 1, d.Limit(translate.Google))
	assert.Equal(t, 3, d.Limit(translate.DeepL))

	d.Dispatch(context.Background(), Request{Messages: messages, Language: "German", Backend: translate.Google})
	d.Dispatch(context.Background(), Request{Messages: messages, Language: "German", Backend: translate.DeepL})

	assert.Equal(t, int32(1), google.maxInFlight.Load())
	assert.LessOrEqual(t, deepl.maxInFlight.Load(), int32(3))
	assert.Greater(t, deepl.maxInFlight.Load(), int32(1))
}

func TestCompletionOrderVersusPreserveOrder(t *testing.T) {
	tr := &recordingTranslator{delay: map[string]time.Duration{"slow": 50 * time.Millisecond}}
	d := New(Options{Translators: map[translate.Backend]translate.Translator{translate.ChatGPT: tr}})
	req := Request{Messages: []chatlog.Message{msg("slow"), msg("fast")}, Language: "German", Backend: translate.ChatGPT}

	results := d.Dispatch(context.Background(), req)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Index, "fast result should complete first")

	req.PreserveOrder = true
	results = d.Dispatch(context.Background(), req)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, "SLOW", results[0].Text)
}

func TestCancelledResultsDiscarded(t *testing.T) {
	tr := &recordingTranslator{delay: map[string]time.Duration{"late": 30 * time.Millisecond}}
	d := New(Options{Translators: map[translate.Backend]translate.Translator{translate.ChatGPT: tr}})

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Result, 1)
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	d.Stream(ctx, Request{Messages: []chatlog.Message{msg("late")}, Language: "German", Backend: translate.ChatGPT}, out)

	assert.Len(t, out, 0)
}

func TestMissingTranslator(t *testing.T) {
	d := New(Options{})
	_, err := d.TranslateText(context.Background(), "hi", "German", translate.DeepL)
	assert.ErrorIs(t, err, ErrNoTranslator)
	assert.False(t, d.Has(translate.DeepL))
}

func TestTranslateText(t *testing.T) {
	fixed := resources.FixedTable{}
	fixed.Add("thanks", "Polish", "dzięki")
	d := New(Options{
		Translators: map[translate.Backend]translate.Translator{translate.Google: &recordingTranslator{}},
		Fixed:       fixed,
	})

	got, err := d.TranslateText(context.Background(), "Thanks", "Polish", translate.Google)
	require.NoError(t, err)
	assert.Equal(t, "dzięki", got)

	got, err = d.TranslateText(context.Background(), "ok", "Polish", translate.Google)
	require.NoError(t, err)
	assert.Equal(t, "OK", got)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "Hallo Welt", Clean("  Hallo 【4:0†source】Welt 【x】"))
	assert.Equal(t, "Hallo  Welt", Clean("Hallo 【a】 Welt"))
}
