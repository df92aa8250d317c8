package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvOpenAIKey, "")
	t.Setenv(EnvDeepLKey, "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
	if cfg.PollInterval != 5*time.Second || cfg.MonitorInterval != 10*time.Second {
		t.Fatalf("intervals = %v/%v, want 5s/10s", cfg.PollInterval, cfg.MonitorInterval)
	}
	if cfg.MaxLines != 50 || cfg.HistoryLines != 1 {
		t.Fatalf("MaxLines/HistoryLines = %d/%d", cfg.MaxLines, cfg.HistoryLines)
	}
	if cfg.Backend != "ChatGPT" || cfg.Language != "English" {
		t.Fatalf("Backend/Language = %q/%q", cfg.Backend, cfg.Language)
	}
	if !cfg.DriverWarnings || !cfg.Translation.PreserveOrder || !cfg.Update.Enabled {
		t.Fatalf("boolean defaults not applied: %+v", cfg)
	}
	if cfg.Translation.Workers != 4 || cfg.Translation.SerialWorkers != 1 {
		t.Fatalf("workers = %d/%d", cfg.Translation.Workers, cfg.Translation.SerialWorkers)
	}
	if cfg.ResourcesDir != filepath.Join(home, "resources") {
		t.Fatalf("ResourcesDir = %q", cfg.ResourcesDir)
	}
	if cfg.OpenAI.Timeout != time.Minute {
		t.Fatalf("OpenAI.Timeout = %v", cfg.OpenAI.Timeout)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvOpenAIKey, "")
	t.Setenv(EnvDeepLKey, "")

	path := writeConfig(t, t.TempDir(), `
log_dir = "  ~/td2/logs  "
poll_interval = " 2s "
language = " Polish "
backend = "Deepl"
driver_warnings = false
history_lines = 0

[translation]
workers = 6
preserve_order = false

[openai]
api_key = " sk-file "
assistant_id = "asst_1"
timeout = "90s"

[deepl]
api_key = "abc:fx"

[logging]
level = "DEBUG"
compress = false

[metrics]
addr = "127.0.0.1:9464"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.HasPrefix(cfg.LogDir, home) {
		t.Fatalf("LogDir = %q, want it under HOME %q", cfg.LogDir, home)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.Language != "Polish" || cfg.Backend != "Deepl" {
		t.Fatalf("Language/Backend = %q/%q", cfg.Language, cfg.Backend)
	}
	if cfg.DriverWarnings || cfg.Translation.PreserveOrder || cfg.Logging.Compress {
		t.Fatalf("explicit false values ignored: %+v", cfg)
	}
	if cfg.HistoryLines != 0 {
		t.Fatalf("HistoryLines = %d, want 0", cfg.HistoryLines)
	}
	if cfg.Translation.Workers != 6 {
		t.Fatalf("Workers = %d", cfg.Translation.Workers)
	}
	if cfg.OpenAI.APIKey != "sk-file" || cfg.OpenAI.AssistantID != "asst_1" || cfg.OpenAI.Timeout != 90*time.Second {
		t.Fatalf("OpenAI = %+v", cfg.OpenAI)
	}
	if cfg.DeepL.APIKey != "abc:fx" {
		t.Fatalf("DeepL.APIKey = %q", cfg.DeepL.APIKey)
	}
	if cfg.Logging.Level != "debug" || cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Fatalf("Logging/Metrics = %+v / %+v", cfg.Logging, cfg.Metrics)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, t.TempDir(), `poll_interval = "soon"`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "poll_interval") {
		t.Fatalf("Load error = %v, want poll_interval parse error", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, t.TempDir(), `log_dir = [`)

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %v, want parse error", err)
	}
}

func TestLoad_SecretsFileAndEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvOpenAIKey, "")
	t.Setenv(EnvDeepLKey, "")

	dir := t.TempDir()
	path := writeConfig(t, dir, `
[deepl]
api_key = "from-toml"
`)
	secrets := "[DEFAULT]\nOPENAI_API_KEY = sk-ini\ndeepl_api_key = from-ini\n"
	if err := os.WriteFile(filepath.Join(dir, "config.cfg"), []byte(secrets), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-ini" {
		t.Fatalf("OpenAI.APIKey = %q, want value from config.cfg", cfg.OpenAI.APIKey)
	}
	if cfg.DeepL.APIKey != "from-toml" {
		t.Fatalf("DeepL.APIKey = %q, TOML should win over INI", cfg.DeepL.APIKey)
	}

	t.Setenv(EnvDeepLKey, "from-env")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DeepL.APIKey != "from-env" {
		t.Fatalf("DeepL.APIKey = %q, environment should win", cfg.DeepL.APIKey)
	}
}

func TestLoad_SecretsFileOnly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvOpenAIKey, "")
	t.Setenv(EnvDeepLKey, "")

	dir := t.TempDir()
	path := writeConfig(t, dir, "language = \"German\"\n")
	secrets := "[DEFAULT]\nopenai_api_key = sk-legacy\nDEEPL_API_KEY = legacy:fx\n"
	if err := os.WriteFile(filepath.Join(dir, "config.cfg"), []byte(secrets), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-legacy" {
		t.Fatalf("OpenAI.APIKey = %q, want sk-legacy", cfg.OpenAI.APIKey)
	}
	if cfg.DeepL.APIKey != "legacy:fx" {
		t.Fatalf("DeepL.APIKey = %q, want legacy:fx", cfg.DeepL.APIKey)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("ExpandPath(~/x) = %q", got)
	}
	if _, err := ExpandPath("  "); err == nil {
		t.Fatalf("ExpandPath(blank) succeeded")
	}
}
