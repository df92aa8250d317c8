package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
)

// Config is the resolved td2chat configuration.
type Config struct {
	Path string

	LogDir          string
	LogPattern      string
	PollInterval    time.Duration
	MonitorInterval time.Duration
	MaxLines        int
	HistoryLines    int
	Language        string
	Backend         string
	ShowOriginal    bool
	DriverWarnings  bool
	ResourcesDir    string
	SecretsFile     string

	Translation TranslationConfig
	OpenAI      OpenAIConfig
	DeepL       DeepLConfig
	Google      GoogleConfig
	Logging     LoggingConfig
	Metrics     MetricsConfig
	Update      UpdateConfig
	Stacjownik  StacjownikConfig
}

type TranslationConfig struct {
	Workers       int
	SerialWorkers int
	PreserveOrder bool
}

type OpenAIConfig struct {
	APIKey       string
	AssistantID  string
	Model        string
	BaseURL      string
	PollInterval time.Duration
	Timeout      time.Duration
}

type DeepLConfig struct {
	APIKey  string
	BaseURL string
}

type GoogleConfig struct {
	BaseURL string
}

type LoggingConfig struct {
	Path       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type MetricsConfig struct {
	Addr string
}

type UpdateConfig struct {
	Enabled bool
	URL     string
}

type StacjownikConfig struct {
	BaseURL string
}

const (
	defaultConfigPath      = "~/.config/td2chat/config.toml"
	defaultLogDir          = "~/Documents/TTSK/TrainDriver2/Logs"
	defaultLogPattern      = "Log"
	defaultPollInterval    = 5 * time.Second
	defaultMonitorInterval = 10 * time.Second
	defaultMaxLines        = 50
	defaultHistoryLines    = 1
	defaultLanguage        = "English"
	defaultBackend         = "ChatGPT"
	defaultWorkers         = 4
	defaultSerialWorkers   = 1
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultOpenAIPoll      = time.Second
	defaultOpenAITimeout   = 60 * time.Second
	defaultGoogleBaseURL   = "https://translate.googleapis.com"
	defaultLogPath         = "~/.local/state/td2chat/td2chat.log"
	defaultLogLevel        = "info"
	defaultLogMaxSizeMB    = 10
	defaultLogMaxBackups   = 3
	defaultLogMaxAgeDays   = 28
	defaultUpdateURL       = "https://api.github.com/repos/bravuralion/TD2-Chat-Translator/releases/latest"
	defaultStacjownikURL   = "https://stacjownik.spythere.eu"
	resourcesDirName       = "resources"
	secretsFileName        = "config.cfg"
)

// Environment variables that override API keys from any file.
const (
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvDeepLKey  = "DEEPL_API_KEY"
)

type rawConfig struct {
	LogDir          string `toml:"log_dir"`
	LogPattern      string `toml:"log_pattern"`
	PollInterval    string `toml:"poll_interval"`
	MonitorInterval string `toml:"monitor_interval"`
	MaxLines        int    `toml:"max_lines"`
	HistoryLines    *int   `toml:"history_lines"`
	Language        string `toml:"language"`
	Backend         string `toml:"backend"`
	ShowOriginal    bool   `toml:"show_original"`
	DriverWarnings  *bool  `toml:"driver_warnings"`
	ResourcesDir    string `toml:"resources_dir"`
	SecretsFile     string `toml:"secrets_file"`

	Translation struct {
		Workers       int   `toml:"workers"`
		SerialWorkers int   `toml:"serial_workers"`
		PreserveOrder *bool `toml:"preserve_order"`
	} `toml:"translation"`

	OpenAI struct {
		APIKey       string `toml:"api_key"`
		AssistantID  string `toml:"assistant_id"`
		Model        string `toml:"model"`
		BaseURL      string `toml:"base_url"`
		PollInterval string `toml:"poll_interval"`
		Timeout      string `toml:"timeout"`
	} `toml:"openai"`

	DeepL struct {
		APIKey  string `toml:"api_key"`
		BaseURL string `toml:"base_url"`
	} `toml:"deepl"`

	Google struct {
		BaseURL string `toml:"base_url"`
	} `toml:"google"`

	Logging struct {
		Path       string `toml:"path"`
		Level      string `toml:"level"`
		MaxSizeMB  int    `toml:"max_size_mb"`
		MaxBackups int    `toml:"max_backups"`
		MaxAgeDays int    `toml:"max_age_days"`
		Compress   *bool  `toml:"compress"`
	} `toml:"logging"`

	Metrics struct {
		Addr string `toml:"addr"`
	} `toml:"metrics"`

	Update struct {
		Enabled *bool  `toml:"enabled"`
		URL     string `toml:"url"`
	} `toml:"update"`

	Stacjownik struct {
		BaseURL string `toml:"base_url"`
	} `toml:"stacjownik"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

// Load reads the config at path (empty uses the default location). A missing
// file yields defaults. API keys are then filled from the legacy INI secrets
// file and finally from the environment.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw rawConfig
	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg, err := fromRaw(raw, resolved)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.loadSecrets(); err != nil {
		return Config{}, err
	}
	if key := strings.TrimSpace(os.Getenv(EnvOpenAIKey)); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if key := strings.TrimSpace(os.Getenv(EnvDeepLKey)); key != "" {
		cfg.DeepL.APIKey = key
	}
	return cfg, nil
}

func fromRaw(raw rawConfig, resolved string) (Config, error) {
	configDir := filepath.Dir(resolved)
	cfg := Config{Path: resolved}

	cfg.LogDir = mustExpand(orDefault(raw.LogDir, defaultLogDir))
	cfg.LogPattern = orDefault(raw.LogPattern, defaultLogPattern)
	cfg.Language = orDefault(raw.Language, defaultLanguage)
	cfg.Backend = orDefault(raw.Backend, defaultBackend)
	cfg.ShowOriginal = raw.ShowOriginal
	cfg.DriverWarnings = boolOr(raw.DriverWarnings, true)
	cfg.ResourcesDir = mustExpand(orDefault(raw.ResourcesDir, filepath.Join(configDir, resourcesDirName)))
	cfg.SecretsFile = mustExpand(orDefault(raw.SecretsFile, filepath.Join(configDir, secretsFileName)))

	cfg.MaxLines = intOr(raw.MaxLines, defaultMaxLines)
	cfg.HistoryLines = defaultHistoryLines
	if raw.HistoryLines != nil && *raw.HistoryLines >= 0 {
		cfg.HistoryLines = *raw.HistoryLines
	}

	var err error
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, defaultPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.MonitorInterval, err = parseDuration("monitor_interval", raw.MonitorInterval, defaultMonitorInterval); err != nil {
		return Config{}, err
	}

	cfg.Translation = TranslationConfig{
		Workers:       intOr(raw.Translation.Workers, defaultWorkers),
		SerialWorkers: intOr(raw.Translation.SerialWorkers, defaultSerialWorkers),
		PreserveOrder: boolOr(raw.Translation.PreserveOrder, true),
	}

	cfg.OpenAI = OpenAIConfig{
		APIKey:      strings.TrimSpace(raw.OpenAI.APIKey),
		AssistantID: strings.TrimSpace(raw.OpenAI.AssistantID),
		Model:       orDefault(raw.OpenAI.Model, defaultOpenAIModel),
		BaseURL:     orDefault(raw.OpenAI.BaseURL, defaultOpenAIBaseURL),
	}
	if cfg.OpenAI.PollInterval, err = parseDuration("openai.poll_interval", raw.OpenAI.PollInterval, defaultOpenAIPoll); err != nil {
		return Config{}, err
	}
	if cfg.OpenAI.Timeout, err = parseDuration("openai.timeout", raw.OpenAI.Timeout, defaultOpenAITimeout); err != nil {
		return Config{}, err
	}

	cfg.DeepL = DeepLConfig{
		APIKey:  strings.TrimSpace(raw.DeepL.APIKey),
		BaseURL: strings.TrimSpace(raw.DeepL.BaseURL),
	}
	cfg.Google = GoogleConfig{BaseURL: orDefault(raw.Google.BaseURL, defaultGoogleBaseURL)}

	cfg.Logging = LoggingConfig{
		Path:       mustExpand(orDefault(raw.Logging.Path, defaultLogPath)),
		Level:      strings.ToLower(orDefault(raw.Logging.Level, defaultLogLevel)),
		MaxSizeMB:  intOr(raw.Logging.MaxSizeMB, defaultLogMaxSizeMB),
		MaxBackups: intOr(raw.Logging.MaxBackups, defaultLogMaxBackups),
		MaxAgeDays: intOr(raw.Logging.MaxAgeDays, defaultLogMaxAgeDays),
		Compress:   boolOr(raw.Logging.Compress, true),
	}
	cfg.Metrics = MetricsConfig{Addr: strings.TrimSpace(raw.Metrics.Addr)}
	cfg.Update = UpdateConfig{
		Enabled: boolOr(raw.Update.Enabled, true),
		URL:     orDefault(raw.Update.URL, defaultUpdateURL),
	}
	cfg.Stacjownik = StacjownikConfig{BaseURL: orDefault(raw.Stacjownik.BaseURL, defaultStacjownikURL)}

	return cfg, nil
}

// loadSecrets fills API keys missing from the TOML file from the INI file
// ([DEFAULT] OPENAI_API_KEY / deepl_api_key) when it exists.
func (c *Config) loadSecrets() error {
	if c.SecretsFile == "" {
		return nil
	}
	if _, err := os.Stat(c.SecretsFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat secrets file: %w", err)
	}
	file, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, c.SecretsFile)
	if err != nil {
		return fmt.Errorf("parse secrets file: %w", err)
	}
	section := file.Section(ini.DefaultSection)
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = strings.TrimSpace(section.Key("openai_api_key").String())
	}
	if c.DeepL.APIKey == "" {
		c.DeepL.APIKey = strings.TrimSpace(section.Key("deepl_api_key").String())
	}
	return nil
}

func parseDuration(key, value string, def time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive", key)
	}
	return d, nil
}

func orDefault(value, def string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return def
}

func intOr(value, def int) int {
	if value > 0 {
		return value
	}
	return def
}

func boolOr(value *bool, def bool) bool {
	if value == nil {
		return def
	}
	return *value
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// ExpandPath resolves ~ and relative paths the same way config values are.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}
