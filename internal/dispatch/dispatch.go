// Package dispatch turns classified chat messages into display-ready
// translations: fixed overrides first, then masked backend calls fanned out
// over a bounded worker pool.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bravuralion/td2-chat-translator/internal/chatlog"
	"github.com/bravuralion/td2-chat-translator/internal/masker"
	"github.com/bravuralion/td2-chat-translator/internal/metrics"
	"github.com/bravuralion/td2-chat-translator/internal/resources"
	"github.com/bravuralion/td2-chat-translator/internal/translate"
)

const (
	defaultWorkers       = 4
	defaultSerialWorkers = 1
)

// ErrNoTranslator is returned when the selected backend has no configured client.
var ErrNoTranslator = errors.New("backend not configured")

var annotationRe = regexp.MustCompile(`【[^】]*】`)

// Options wires the dispatcher. Translators, Fixed, Ignore and Masker are
// read-only once passed in and shared by all workers.
type Options struct {
	Translators map[translate.Backend]translate.Translator
	Fixed       resources.FixedTable
	Ignore      resources.IgnoreSet
	Masker      *masker.Masker

	// Workers caps concurrent calls for backends tolerant of parallel load.
	Workers int
	// SerialWorkers caps backends listed in Serial.
	SerialWorkers int
	// Serial lists rate-limit-sensitive backends. Nil means Google only.
	Serial []translate.Backend

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	translators   map[translate.Backend]translate.Translator
	fixed         resources.FixedTable
	ignore        resources.IgnoreSet
	masker        *masker.Masker
	workers       int
	serialWorkers int
	serial        map[translate.Backend]bool
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// New builds a Dispatcher.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		translators:   make(map[translate.Backend]translate.Translator, len(opts.Translators)),
		fixed:         opts.Fixed,
		ignore:        opts.Ignore,
		masker:        opts.Masker,
		workers:       opts.Workers,
		serialWorkers: opts.SerialWorkers,
		serial:        make(map[translate.Backend]bool),
		metrics:       opts.Metrics,
		logger:        opts.Logger,
	}
	for b, tr := range opts.Translators {
		if tr != nil {
			d.translators[b] = tr
		}
	}
	if d.workers <= 0 {
		d.workers = defaultWorkers
	}
	if d.serialWorkers <= 0 {
		d.serialWorkers = defaultSerialWorkers
	}
	serial := opts.Serial
	if serial == nil {
		serial = []translate.Backend{translate.Google}
	}
	for _, b := range serial {
		d.serial[b] = true
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// Request is one batch of messages to translate.
type Request struct {
	Messages []chatlog.Message
	Language string
	Backend  translate.Backend
	// PreserveOrder sorts Dispatch output by Index. Stream always delivers in
	// completion order.
	PreserveOrder bool
}

// Result is the outcome for one message. Index is the message's position in
// Request.Messages.
type Result struct {
	Index   int
	Message chatlog.Message
	// Text is the cleaned translation, or the rendered error when Err is set.
	Text  string
	Err   error
	Fixed bool
}

// Display renders "speaker: text".
func (r Result) Display() string {
	return r.Message.Speaker + ": " + r.Text
}

// Has reports whether the backend has a configured translator.
func (d *Dispatcher) Has(backend translate.Backend) bool {
	_, ok := d.translators[backend]
	return ok
}

// Limit returns the worker cap for backend.
func (d *Dispatcher) Limit(backend translate.Backend) int {
	if d.serial[backend] {
		return d.serialWorkers
	}
	return d.workers
}

// Ignored reports whether body is in the ignore set.
func (d *Dispatcher) Ignored(body string) bool {
	return d.ignore.Contains(body)
}

// Dispatch translates every non-ignored message and returns the results in
// completion order, or by Index when PreserveOrder is set.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) []Result {
	out := make(chan Result, len(req.Messages))
	d.Stream(ctx, req, out)
	close(out)

	results := make([]Result, 0, len(req.Messages))
	for r := range out {
		results = append(results, r)
	}
	if req.PreserveOrder {
		sort.SliceStable(results, func(i, j int) bool { return results[i].Index < results[j].Index })
	}
	return results
}

// Stream translates req and sends each result to out as it completes. It
// blocks until every dispatched call has returned. Results produced after ctx
// is cancelled are dropped. Stream never closes out.
func (d *Dispatcher) Stream(ctx context.Context, req Request, out chan<- Result) {
	deliver := func(r Result) {
		if ctx.Err() != nil {
			return
		}
		select {
		case out <- r:
		case <-ctx.Done():
		}
	}

	var g errgroup.Group
	g.SetLimit(d.Limit(req.Backend))
	for i, msg := range req.Messages {
		i, msg := i, msg
		if ctx.Err() != nil {
			break
		}
		if d.Ignored(msg.Body) {
			d.metrics.Translation(req.Backend.Short(), metrics.OutcomeIgnored)
			continue
		}
		if text, ok := d.fixed.Lookup(msg.Body, req.Language); ok {
			d.metrics.Translation(req.Backend.Short(), metrics.OutcomeFixed)
			deliver(Result{Index: i, Message: msg, Text: text, Fixed: true})
			continue
		}
		g.Go(func() error {
			text, err := d.translateMasked(ctx, msg.Body, req.Language, req.Backend)
			r := Result{Index: i, Message: msg, Text: text, Err: err}
			if err != nil {
				r.Text = ErrorText(req.Backend, err)
				d.logger.Warn("translation failed",
					zap.String("backend", req.Backend.String()),
					zap.String("speaker", msg.Speaker),
					zap.Error(err))
			}
			deliver(r)
			return nil
		})
	}
	_ = g.Wait()
}

// TranslateText runs a single text through the same fixed-table, masking and
// cleanup path as Dispatch. Errors are returned, not rendered.
func (d *Dispatcher) TranslateText(ctx context.Context, text, language string, backend translate.Backend) (string, error) {
	if fixed, ok := d.fixed.Lookup(text, language); ok {
		d.metrics.Translation(backend.Short(), metrics.OutcomeFixed)
		return fixed, nil
	}
	return d.translateMasked(ctx, text, language, backend)
}

func (d *Dispatcher) translateMasked(ctx context.Context, text, language string, backend translate.Backend) (string, error) {
	tr, ok := d.translators[backend]
	if !ok {
		d.metrics.Translation(backend.Short(), metrics.OutcomeError)
		return "", fmt.Errorf("%w: %s", ErrNoTranslator, backend)
	}

	masked := d.masker.Mask(text)
	start := time.Now()
	translated, err := tr.Translate(ctx, masked.Text, language)
	d.metrics.ObserveLatency(backend.Short(), time.Since(start))
	if err != nil {
		d.metrics.Translation(backend.Short(), metrics.OutcomeError)
		return "", err
	}
	d.metrics.Translation(backend.Short(), metrics.OutcomeOK)
	return masked.Unmask(Clean(translated)), nil
}

// Clean strips bracketed 【…】 annotations some backends append and trims
// surrounding whitespace.
func Clean(text string) string {
	return strings.TrimSpace(annotationRe.ReplaceAllString(text, ""))
}

// ErrorText renders a per-line failure. Unsupported-language errors carry a
// user-facing message and are shown verbatim.
func ErrorText(backend translate.Backend, err error) string {
	var te *translate.Error
	if errors.As(err, &te) && te.Kind == translate.KindUnsupported {
		return err.Error()
	}
	return fmt.Sprintf("[%s Error] %v", backend, err)
}
