// Package feed tails open chat logs and turns new lines into transcript
// events. Each open file gets one goroutine that owns its cursor; translation
// batches run asynchronously so a slow backend never delays the next poll.
package feed

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/chatlog"
	"github.com/bravuralion/td2-chat-translator/internal/dispatch"
	"github.com/bravuralion/td2-chat-translator/internal/logtail"
	"github.com/bravuralion/td2-chat-translator/internal/metrics"
	"github.com/bravuralion/td2-chat-translator/internal/stacjownik"
	"github.com/bravuralion/td2-chat-translator/internal/state"
	"github.com/bravuralion/td2-chat-translator/internal/translate"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
	eventBuffer         = 256
	// truncatedHistory is how many chat lines are replayed from a file that
	// was truncated and rewritten between two polls.
	truncatedHistory = 200
)

// LiveTitle is the title of the manual translation tab.
const LiveTitle = "Live Translation"

// ErrStopped is returned by Open after Stop.
var ErrStopped = errors.New("feed stopped")

// Settings are the user choices applied to each new batch.
type Settings struct {
	Language string
	Backend  translate.Backend
}

// Options wire a Feed.
type Options struct {
	Dispatcher *dispatch.Dispatcher
	// Warner, when set, checks player drivers against Stacjownik.
	Warner *stacjownik.Warner
	// DriverWarnings enables the Warner at start. It can be toggled later.
	DriverWarnings bool
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	PollInterval   time.Duration
	// History is how many existing chat lines are shown when a file opens.
	History       int
	PreserveOrder bool
	Settings      Settings
}

type tab struct {
	path   string
	cancel context.CancelFunc
}

// Feed is safe for concurrent use.
type Feed struct {
	dispatcher    *dispatch.Dispatcher
	warner        *stacjownik.Warner
	metrics       *metrics.Metrics
	logger        *zap.Logger
	interval      time.Duration
	history       int
	preserveOrder bool

	mu       sync.Mutex
	settings Settings
	warnings bool
	tabs     map[string]*tab
	stopped  bool

	wg     sync.WaitGroup
	events chan state.Event
	done   chan struct{}
}

// New builds a Feed. Call Stop to release it.
func New(opts Options) *Feed {
	f := &Feed{
		dispatcher:    opts.Dispatcher,
		warner:        opts.Warner,
		metrics:       opts.Metrics,
		logger:        opts.Logger,
		interval:      opts.PollInterval,
		history:       opts.History,
		preserveOrder: opts.PreserveOrder,
		settings:      opts.Settings,
		warnings:      opts.DriverWarnings,
		tabs:          make(map[string]*tab),
		events:        make(chan state.Event, eventBuffer),
		done:          make(chan struct{}),
	}
	if f.interval <= 0 {
		f.interval = defaultPollInterval
	}
	if f.history < 0 {
		f.history = 0
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

// Events delivers transcript changes. It is never closed; consumers stop on
// their own context.
func (f *Feed) Events() <-chan state.Event {
	return f.events
}

// Settings returns the current language and backend.
func (f *Feed) Settings() Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

// SetLanguage changes the target language for later batches.
func (f *Feed) SetLanguage(language string) {
	f.mu.Lock()
	f.settings.Language = language
	f.mu.Unlock()
}

// SetBackend changes the backend for later batches.
func (f *Feed) SetBackend(backend translate.Backend) {
	f.mu.Lock()
	f.settings.Backend = backend
	f.mu.Unlock()
}

// DriverWarnings reports whether new player messages are checked against
// Stacjownik.
func (f *Feed) DriverWarnings() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.warnings && f.warner != nil
}

// SetDriverWarnings turns driver checks on or off for later batches. It has
// no effect without a Warner.
func (f *Feed) SetDriverWarnings(on bool) {
	f.mu.Lock()
	f.warnings = on
	f.mu.Unlock()
}

// IsOpen reports whether path is being tailed.
func (f *Feed) IsOpen(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tabs[path]
	return ok
}

// Open starts tailing path until ctx is done or Close is called. Opening a
// path twice is a no-op. A file that cannot be opened is reported as an
// error event as well as returned.
func (f *Feed) Open(ctx context.Context, path string) error {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return ErrStopped
	}
	if _, ok := f.tabs[path]; ok {
		f.mu.Unlock()
		return nil
	}
	// Reserve the path so a concurrent Open is a no-op while the file is read.
	tabCtx, cancel := context.WithCancel(ctx)
	t := &tab{path: path, cancel: cancel}
	f.tabs[path] = t
	f.wg.Add(1)
	f.mu.Unlock()

	cursor, err := logtail.Open(path, chatlog.ExtractChat, f.history)
	if err != nil {
		f.mu.Lock()
		if f.tabs[path] == t {
			delete(f.tabs, path)
		}
		f.mu.Unlock()
		cancel()
		f.wg.Done()
		f.logger.Warn("open log failed", zap.String("path", path), zap.Error(err))
		f.emit(ctx, state.Event{Kind: state.ErrorRaised, Err: err})
		return err
	}

	f.mu.Lock()
	open := len(f.tabs)
	f.mu.Unlock()
	f.metrics.SetOpenTabs(open)
	f.logger.Info("tailing log", zap.String("path", path), zap.Int64("offset", cursor.Offset()))
	f.emit(tabCtx, state.Event{Kind: state.TabOpened, Tab: path, Title: filepath.Base(path)})
	f.process(tabCtx, path, cursor.Recent())

	go f.tail(tabCtx, cursor)
	return nil
}

// Close stops tailing path and removes its tab. Translations still in flight
// for it are discarded. Closing the live tab only removes it.
func (f *Feed) Close(path string) {
	f.mu.Lock()
	t, ok := f.tabs[path]
	if ok {
		delete(f.tabs, path)
	}
	open := len(f.tabs)
	f.mu.Unlock()

	if ok {
		t.cancel()
		f.metrics.SetOpenTabs(open)
		f.logger.Info("closed log", zap.String("path", path))
	}
	f.emit(context.Background(), state.Event{Kind: state.TabClosed, Tab: path})
}

// Stop cancels every tab and waits for in-flight work. Later events are
// dropped.
func (f *Feed) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	for path, t := range f.tabs {
		t.cancel()
		delete(f.tabs, path)
	}
	f.mu.Unlock()

	close(f.done)
	f.wg.Wait()
}

// Notify sets the status notice, such as an available update.
func (f *Feed) Notify(ctx context.Context, notice string) {
	f.emit(ctx, state.Event{Kind: state.NoticeSet, Notice: notice})
}

// Translate runs text through the dispatcher with the current settings.
func (f *Feed) Translate(ctx context.Context, text string) (string, error) {
	s := f.Settings()
	return f.dispatcher.TranslateText(ctx, text, s.Language, s.Backend)
}

// Manual translates text and appends the result to the live tab.
func (f *Feed) Manual(ctx context.Context, text string) error {
	translated, err := f.Translate(ctx, text)
	entry := state.Entry{Time: time.Now(), Category: state.CategoryManual, Text: translated, Original: text}
	if err != nil {
		entry.Text = dispatch.ErrorText(f.Settings().Backend, err)
		entry.Failed = true
	}
	f.emit(ctx, state.Event{Kind: state.TabOpened, Tab: state.LiveTab, Title: LiveTitle})
	f.emit(ctx, state.Event{Kind: state.EntriesAdded, Tab: state.LiveTab, Entries: []state.Entry{entry}})
	return err
}

func (f *Feed) tail(ctx context.Context, cursor *logtail.Cursor) {
	defer f.wg.Done()
	defer func() { _ = cursor.Close() }()

	path := cursor.Path()
	failures := 0
	timer := time.NewTimer(f.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-timer.C:
		}

		lines, err := cursor.Poll()
		switch {
		case errors.Is(err, logtail.ErrTruncated):
			f.logger.Info("log truncated, reopening", zap.String("path", path))
			next, openErr := logtail.Open(path, chatlog.ExtractChat, truncatedHistory)
			if openErr != nil {
				failures++
				f.fail(ctx, path, openErr)
				break
			}
			_ = cursor.Close()
			cursor = next
			failures = 0
			f.process(ctx, path, cursor.Recent())
		case err != nil:
			failures++
			f.fail(ctx, path, err)
		default:
			failures = 0
			f.process(ctx, path, lines)
		}
		timer.Reset(calculateBackoff(failures, f.interval))
	}
}

func (f *Feed) fail(ctx context.Context, path string, err error) {
	f.logger.Warn("poll failed", zap.String("path", path), zap.Error(err))
	f.emit(ctx, state.Event{Kind: state.ErrorRaised, Err: fmt.Errorf("%s: %w", filepath.Base(path), err)})
}

// process classifies lines and hands the batch to a translation goroutine.
func (f *Feed) process(ctx context.Context, path string, lines []string) {
	var messages []chatlog.Message
	for _, line := range lines {
		msg, ok := chatlog.Classify(line)
		if !ok {
			continue
		}
		f.metrics.LineClassified(msg.Category.String())
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return
	}

	req := dispatch.Request{Messages: messages, PreserveOrder: f.preserveOrder}
	s := f.Settings()
	req.Language, req.Backend = s.Language, s.Backend

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.warn(ctx, path, messages)
		f.translate(ctx, path, req)
	}()
}

func (f *Feed) warn(ctx context.Context, path string, messages []chatlog.Message) {
	if !f.DriverWarnings() {
		return
	}
	var entries []state.Entry
	for _, msg := range messages {
		if msg.Category != chatlog.Player || f.dispatcher.Ignored(msg.Body) {
			continue
		}
		driver := chatlog.DriverName(msg.Speaker)
		if driver == "" {
			continue
		}
		if text, warn := f.warner.Check(ctx, driver); warn {
			entries = append(entries, state.Entry{Time: time.Now(), Category: state.CategoryWarning, Text: text})
		}
	}
	if len(entries) > 0 {
		f.emit(ctx, state.Event{Kind: state.EntriesAdded, Tab: path, Entries: entries})
	}
}

func (f *Feed) translate(ctx context.Context, path string, req dispatch.Request) {
	if req.PreserveOrder {
		for _, r := range f.dispatcher.Dispatch(ctx, req) {
			f.emit(ctx, resultEvent(path, r))
		}
		return
	}

	results := make(chan dispatch.Result)
	go func() {
		f.dispatcher.Stream(ctx, req, results)
		close(results)
	}()
	for r := range results {
		f.emit(ctx, resultEvent(path, r))
	}
}

func resultEvent(path string, r dispatch.Result) state.Event {
	return state.Event{
		Kind: state.EntriesAdded,
		Tab:  path,
		Entries: []state.Entry{{
			Time:     time.Now(),
			Category: state.FromChat(r.Message.Category),
			Text:     r.Display(),
			Original: r.Message.Body,
			Failed:   r.Err != nil,
		}},
	}
}

// emit delivers ev unless ctx is done or the feed stopped.
func (f *Feed) emit(ctx context.Context, ev state.Event) {
	if ctx.Err() != nil {
		return
	}
	select {
	case <-f.done:
	case <-ctx.Done():
	case f.events <- ev:
	}
}

// calculateBackoff returns the poll delay after consecutive failures,
// doubling from base and capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
