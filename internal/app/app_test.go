package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravuralion/td2-chat-translator/internal/config"
	"github.com/bravuralion/td2-chat-translator/internal/prefs"
	"github.com/bravuralion/td2-chat-translator/internal/translate"
)

func TestResolveSettingsPrecedence(t *testing.T) {
	cfg := config.Config{Language: "German", Backend: "ChatGPT", ShowOriginal: true}
	show := false

	s, original, err := resolveSettings(cfg, prefs.Prefs{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "German", s.Language)
	assert.Equal(t, translate.ChatGPT, s.Backend)
	assert.True(t, original)

	s, original, err = resolveSettings(cfg, prefs.Prefs{Language: "Polish", Backend: "deepl", ShowOriginal: &show}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Polish", s.Language)
	assert.Equal(t, translate.DeepL, s.Backend)
	assert.False(t, original)

	s, _, err = resolveSettings(cfg, prefs.Prefs{Language: "Polish", Backend: "deepl"}, Options{Language: "French", Backend: "google"})
	require.NoError(t, err)
	assert.Equal(t, "French", s.Language)
	assert.Equal(t, translate.Google, s.Backend)
}

func TestResolveSettingsRejectsUnknownBackend(t *testing.T) {
	_, _, err := resolveSettings(config.Config{Language: "English"}, prefs.Prefs{}, Options{Backend: "babelfish"})
	assert.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(config.EnvOpenAIKey, "")
	t.Setenv(config.EnvDeepLKey, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_dir = \"/tmp/a\"\n"), 0o644))

	cfg, err := LoadConfig(Options{ConfigPath: path, LogDir: filepath.Join(dir, "logs")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs"), cfg.LogDir)
}

func TestNewServicesWithoutKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenery_names.txt"), []byte("Kraków Główny\n"), 0o644))

	cfg := config.Config{ResourcesDir: dir}
	svc, err := NewServices(cfg, nil)
	require.NoError(t, err)

	assert.True(t, svc.Dispatcher.Has(translate.Google))
	assert.False(t, svc.Dispatcher.Has(translate.ChatGPT))
	assert.False(t, svc.Dispatcher.Has(translate.DeepL))
	assert.Equal(t, 1, svc.Masker.Len())
	assert.NotNil(t, svc.Warner)
}

func TestNewServicesWithKeysAndWarnings(t *testing.T) {
	cfg := config.Config{
		ResourcesDir:   t.TempDir(),
		DriverWarnings: true,
		OpenAI:         config.OpenAIConfig{APIKey: "sk-test"},
		DeepL:          config.DeepLConfig{APIKey: "abc:fx"},
	}
	svc, err := NewServices(cfg, nil)
	require.NoError(t, err)
	for _, b := range translate.Backends() {
		assert.True(t, svc.Dispatcher.Has(b), b.String())
	}
	assert.NotNil(t, svc.Warner)
}

func TestResolveDriverWarnings(t *testing.T) {
	cfg := config.Config{DriverWarnings: true}
	assert.True(t, resolveDriverWarnings(cfg, prefs.Prefs{}))

	off := false
	assert.False(t, resolveDriverWarnings(cfg, prefs.Prefs{DriverWarnings: &off}))
}
