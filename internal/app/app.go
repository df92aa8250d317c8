package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/config"
	"github.com/bravuralion/td2-chat-translator/internal/feed"
	"github.com/bravuralion/td2-chat-translator/internal/logging"
	"github.com/bravuralion/td2-chat-translator/internal/monitor"
	"github.com/bravuralion/td2-chat-translator/internal/prefs"
	"github.com/bravuralion/td2-chat-translator/internal/state"
	"github.com/bravuralion/td2-chat-translator/internal/translate"
	"github.com/bravuralion/td2-chat-translator/internal/ui"
	"github.com/bravuralion/td2-chat-translator/internal/update"
)

// Options configure the td2chat application. Empty fields fall back to
// prefs.toml and then config.toml.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/td2chat/prefs.toml
	LogDir     string
	PollEvery  time.Duration
	Language   string
	Backend    string
	// Open lists log files to tail in addition to the monitored directory.
	Open    []string
	Version string
}

// Run boots the td2chat TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Logging, logging.Options{File: true})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()
	logger.Info("td2chat starting", zap.String("version", opts.Version), zap.String("config", cfg.Path))

	prefsPath := opts.PrefsPath
	if strings.TrimSpace(prefsPath) == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("load prefs failed", zap.Error(err))
	}
	settings, showOriginal, err := resolveSettings(cfg, userPrefs, opts)
	if err != nil {
		return err
	}
	userPrefs.ShowOriginal = &showOriginal
	driverWarnings := resolveDriverWarnings(cfg, userPrefs)
	userPrefs.DriverWarnings = &driverWarnings

	svc, err := NewServices(cfg, logger)
	if err != nil {
		return err
	}
	if !svc.Dispatcher.Has(settings.Backend) {
		logger.Warn("selected backend is not configured", zap.String("backend", settings.Backend.String()))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Metrics.Addr != "" {
		if err := svc.Metrics.Serve(ctx, cfg.Metrics.Addr, logger.Named("metrics")); err != nil {
			return fmt.Errorf("start metrics server: %w", err)
		}
	}

	store := state.NewStore(cfg.MaxLines)
	f := feed.New(feed.Options{
		Dispatcher:     svc.Dispatcher,
		Warner:         svc.Warner,
		DriverWarnings: driverWarnings,
		Metrics:        svc.Metrics,
		Logger:         logger.Named("feed"),
		PollInterval:   cfg.PollInterval,
		History:        cfg.HistoryLines,
		PreserveOrder:  cfg.Translation.PreserveOrder,
		Settings:       settings,
	})
	defer f.Stop()

	go consume(ctx, f, store)

	for _, path := range opts.Open {
		if err := f.Open(ctx, path); err != nil {
			logger.Warn("open requested log failed", zap.String("path", path), zap.Error(err))
		}
	}
	go f.Watch(ctx, monitor.New(cfg.LogDir, cfg.LogPattern), cfg.MonitorInterval)

	if cfg.Update.Enabled {
		go checkForUpdate(ctx, cfg.Update.URL, opts.Version, f, logger)
	}

	return ui.Run(ui.Options{
		Context:    ctx,
		Store:      store,
		Controller: f,
		Logger:     logger.Named("ui"),
		Prefs:      userPrefs,
		PrefsPath:  prefsPath,
	})
}

// consume is the single writer of store.
func consume(ctx context.Context, f *feed.Feed, store *state.Store) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-f.Events():
			store.Apply(ev)
		}
	}
}

func checkForUpdate(ctx context.Context, url, version string, f *feed.Feed, logger *zap.Logger) {
	res, err := update.NewChecker(url).Check(ctx, version)
	if err != nil {
		logger.Info("update check failed", zap.Error(err))
		return
	}
	if res.Available {
		logger.Info("update available", zap.String("latest", res.Latest), zap.String("url", res.URL))
		f.Notify(ctx, "Update available: "+res.Latest)
	}
}

// LoadConfig reads config.toml and applies command-line overrides that are
// not user preferences.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if dir := strings.TrimSpace(opts.LogDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return config.Config{}, fmt.Errorf("log dir: %w", err)
		}
		cfg.LogDir = expanded
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}
	return cfg, nil
}

// resolveSettings picks language and backend from flags, then prefs, then
// config.
func resolveSettings(cfg config.Config, p prefs.Prefs, opts Options) (feed.Settings, bool, error) {
	language := firstNonEmpty(opts.Language, p.Language, cfg.Language)
	backendName := firstNonEmpty(opts.Backend, p.Backend, cfg.Backend)
	backend, err := translate.ParseBackend(backendName)
	if err != nil {
		return feed.Settings{}, false, err
	}
	showOriginal := cfg.ShowOriginal
	if p.ShowOriginal != nil {
		showOriginal = *p.ShowOriginal
	}
	return feed.Settings{Language: language, Backend: backend}, showOriginal, nil
}

// resolveDriverWarnings prefers the toggle saved from the UI over config.
func resolveDriverWarnings(cfg config.Config, p prefs.Prefs) bool {
	if p.DriverWarnings != nil {
		return *p.DriverWarnings
	}
	return cfg.DriverWarnings
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
