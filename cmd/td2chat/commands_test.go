package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "td2chat "+version+"\n", out)
}

func TestSimulateCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Log_1.txt")
	require.NoError(t, os.WriteFile(src, []byte("[x] ChatMessage: (10:00:00) 1@Anna: hi\n"), 0o644))

	out, err := execute(t, "simulate", "--source", src, "--out", dir, "--interval", "1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "(1/1)")

	data, err := os.ReadFile(filepath.Join(dir, "demo_Log_1.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[x] ChatMessage:"))
}

func TestSimulateRequiresSource(t *testing.T) {
	_, err := execute(t, "simulate")
	assert.Error(t, err)
}

func TestTranslateRequiresText(t *testing.T) {
	_, err := execute(t, "translate")
	assert.Error(t, err)
}
