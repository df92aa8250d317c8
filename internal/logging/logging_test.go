package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravuralion/td2-chat-translator/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "td2chat.log")
	logger, closer, err := New(config.LoggingConfig{Path: path, Level: "debug", MaxSizeMB: 1}, Options{File: true})
	require.NoError(t, err)

	logger.Info("tab opened")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tab opened")
	assert.Contains(t, string(data), "logging initialized")
}

func TestNewWithoutSinksIsNop(t *testing.T) {
	logger, closer, err := New(config.LoggingConfig{Level: "bogus"}, Options{})
	require.NoError(t, err)
	logger.Info("dropped")
	assert.NoError(t, closer())
}

func TestContextRoundTrip(t *testing.T) {
	logger, closer, err := New(config.LoggingConfig{Level: "info"}, Options{Stderr: true})
	require.NoError(t, err)
	defer closer()

	ctx := WithContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
