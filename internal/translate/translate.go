// Package translate defines the backend-neutral translation capability and
// the language tables shared by the concrete backends.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Translator turns text into the named target language ("German", "Polish").
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, text, language string) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(ctx context.Context, text, language string) (string, error) {
	return f(ctx, text, language)
}

// Backend selects a translation service.
type Backend int

const (
	ChatGPT Backend = iota
	Google
	DeepL
)

var backendLabels = map[Backend]string{
	ChatGPT: "ChatGPT",
	Google:  "Google Translate",
	DeepL:   "Deepl",
}

// Backends lists the selectable backends in display order.
func Backends() []Backend {
	return []Backend{ChatGPT, Google, DeepL}
}

func (b Backend) String() string {
	if label, ok := backendLabels[b]; ok {
		return label
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// Short is a compact identifier used in metrics labels and error prefixes.
func (b Backend) Short() string {
	switch b {
	case ChatGPT:
		return "chatgpt"
	case Google:
		return "google"
	case DeepL:
		return "deepl"
	default:
		return "unknown"
	}
}

// Next returns the backend after b in display order.
func (b Backend) Next() Backend {
	all := Backends()
	for i, candidate := range all {
		if candidate == b {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

// ParseBackend accepts display labels and short names, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, b := range Backends() {
		if needle == strings.ToLower(b.String()) || needle == b.Short() {
			return b, nil
		}
	}
	switch needle {
	case "openai", "gpt":
		return ChatGPT, nil
	case "gtx", "googletranslate":
		return Google, nil
	}
	return 0, fmt.Errorf("unknown backend %q", s)
}

// ErrUnsupportedLanguage is wrapped by errors for languages a backend cannot target.
var ErrUnsupportedLanguage = errors.New("unsupported target language")

// Kind classifies backend failures.
type Kind int

const (
	KindNetwork Kind = iota
	KindAuth
	KindUnsupported
	KindResponse
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindUnsupported:
		return "unsupported"
	case KindResponse:
		return "response"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is returned by backends. Err carries the underlying cause.
type Error struct {
	Backend Backend
	Kind    Kind
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s error", e.Backend, e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

type unsupportedError struct{ msg string }

func (e unsupportedError) Error() string { return e.msg }

func (e unsupportedError) Is(target error) bool { return target == ErrUnsupportedLanguage }

// NewUnsupported builds a KindUnsupported error whose text is message verbatim.
func NewUnsupported(backend Backend, message string) *Error {
	return &Error{Backend: backend, Kind: KindUnsupported, Err: unsupportedError{msg: message}}
}

// NewError builds an *Error.
func NewError(backend Backend, kind Kind, err error) *Error {
	return &Error{Backend: backend, Kind: kind, Err: err}
}

// KindForStatus maps an HTTP status code to a failure kind.
func KindForStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 408 || status == 504:
		return KindTimeout
	default:
		return KindResponse
	}
}

// KindForContext maps a context error to a failure kind.
func KindForContext(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindNetwork
}
