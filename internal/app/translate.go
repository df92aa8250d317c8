package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/prefs"
)

// TranslateText translates one text with the same settings resolution and
// pipeline as the TUI. Logs go to logger, which callers usually point at
// stderr.
func TranslateText(ctx context.Context, opts Options, text string, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg, err := LoadConfig(opts)
	if err != nil {
		return "", err
	}
	userPrefs, _ := prefs.Load(opts.PrefsPath)
	settings, _, err := resolveSettings(cfg, userPrefs, opts)
	if err != nil {
		return "", err
	}

	svc, err := NewServices(cfg, logger)
	if err != nil {
		return "", err
	}
	out, err := svc.Dispatcher.TranslateText(ctx, text, settings.Language, settings.Backend)
	if err != nil {
		return "", fmt.Errorf("translate with %s: %w", settings.Backend, err)
	}
	return out, nil
}
