package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/config"
	"github.com/bravuralion/td2-chat-translator/internal/dispatch"
	"github.com/bravuralion/td2-chat-translator/internal/masker"
	"github.com/bravuralion/td2-chat-translator/internal/metrics"
	"github.com/bravuralion/td2-chat-translator/internal/resources"
	"github.com/bravuralion/td2-chat-translator/internal/stacjownik"
	"github.com/bravuralion/td2-chat-translator/internal/translate"
	"github.com/bravuralion/td2-chat-translator/internal/translate/deepl"
	"github.com/bravuralion/td2-chat-translator/internal/translate/google"
	"github.com/bravuralion/td2-chat-translator/internal/translate/openai"
)

// Services are the long-lived collaborators built from a Config.
type Services struct {
	Resources  resources.Set
	Masker     *masker.Masker
	Metrics    *metrics.Metrics
	Dispatcher *dispatch.Dispatcher
	// Warner is always built so warnings can be switched on at runtime.
	Warner *stacjownik.Warner
}

// NewServices loads resources and builds every configured backend.
func NewServices(cfg config.Config, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	res, err := resources.LoadDir(cfg.ResourcesDir)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	if res.SkippedRows > 0 {
		logger.Warn("skipped malformed fixed translations",
			zap.Int("rows", res.SkippedRows),
			zap.String("file", resources.FixedTranslationsFile))
	}
	logger.Info("resources loaded",
		zap.String("dir", cfg.ResourcesDir),
		zap.Int("ignored", len(res.Ignore)),
		zap.Int("fixed", res.Fixed.Len()),
		zap.Int("scenery_names", len(res.SceneryNames)))

	m := metrics.New()
	mask := masker.New(res.SceneryNames)
	translators := Translators(cfg, logger)

	svc := &Services{
		Resources: res,
		Masker:    mask,
		Metrics:   m,
		Dispatcher: dispatch.New(dispatch.Options{
			Translators:   translators,
			Fixed:         res.Fixed,
			Ignore:        res.Ignore,
			Masker:        mask,
			Workers:       cfg.Translation.Workers,
			SerialWorkers: cfg.Translation.SerialWorkers,
			Metrics:       m,
			Logger:        logger.Named("dispatch"),
		}),
	}

	client, err := stacjownik.NewClient(cfg.Stacjownik.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("init stacjownik client: %w", err)
	}
	svc.Warner = stacjownik.NewWarner(client, logger.Named("stacjownik"))
	return svc, nil
}

// Translators builds a client for every backend whose credentials are
// present. Backends without credentials are left out and reported as not
// configured when selected.
func Translators(cfg config.Config, logger *zap.Logger) map[translate.Backend]translate.Translator {
	out := make(map[translate.Backend]translate.Translator, 3)

	if g, err := google.NewClient(cfg.Google.BaseURL, google.WithLogger(logger.Named("google"))); err != nil {
		logger.Warn("google translate disabled", zap.Error(err))
	} else {
		out[translate.Google] = g
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Info("chatgpt disabled: no api key")
	} else if c, err := openai.NewClient(openai.Config{
		APIKey:       cfg.OpenAI.APIKey,
		AssistantID:  cfg.OpenAI.AssistantID,
		Model:        cfg.OpenAI.Model,
		BaseURL:      cfg.OpenAI.BaseURL,
		PollInterval: cfg.OpenAI.PollInterval,
		RunTimeout:   cfg.OpenAI.Timeout,
	}, openai.WithLogger(logger.Named("openai"))); err != nil {
		logger.Warn("chatgpt disabled", zap.Error(err))
	} else {
		out[translate.ChatGPT] = c
	}

	if cfg.DeepL.APIKey == "" {
		logger.Info("deepl disabled: no api key")
	} else if c, err := deepl.NewClient(cfg.DeepL.APIKey, cfg.DeepL.BaseURL, deepl.WithLogger(logger.Named("deepl"))); err != nil {
		logger.Warn("deepl disabled", zap.Error(err))
	} else {
		out[translate.DeepL] = c
	}
	return out
}
