// Package simulator replays the chat messages of a recorded game log into a
// demo log, one message per interval, so the translator can be exercised
// without a running simulator session.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/chatlog"
	"github.com/bravuralion/td2-chat-translator/internal/logtail"
)

// DefaultInterval is the pause between two replayed messages.
const DefaultInterval = 15 * time.Second

// Options configure a replay.
type Options struct {
	Source   string
	OutDir   string
	Interval time.Duration
	Logger   *zap.Logger
	// Progress, when set, is called after each message is written.
	Progress func(index, total int, message string)
}

// Extract returns the chat messages in the log at path. A message is a line
// containing the chat marker plus any following lines that do not start
// with "[".
func Extract(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("source log: %w", err)
	}
	lines, err := logtail.Read(path, 0)
	if err != nil {
		return nil, fmt.Errorf("read source log: %w", err)
	}

	var messages []string
	for i := 0; i < len(lines); {
		if !strings.Contains(lines[i], chatlog.Marker) {
			i++
			continue
		}
		msg := lines[i]
		i++
		for i < len(lines) && !strings.HasPrefix(lines[i], "[") {
			msg += "\n" + lines[i]
			i++
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// OutputPath is the demo log written for source inside dir.
func OutputPath(source, dir string) string {
	return filepath.Join(dir, "demo_"+filepath.Base(source))
}

// Run truncates the demo log and appends the extracted messages until they
// are exhausted or ctx is done. It returns how many messages were written.
func Run(ctx context.Context, opts Options) (int, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	messages, err := Extract(opts.Source)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, errors.New("no chat messages found in source log")
	}

	out := OutputPath(opts.Source, opts.OutDir)
	if err := os.WriteFile(out, nil, 0o644); err != nil {
		return 0, fmt.Errorf("create demo log: %w", err)
	}
	logger.Info("simulation started",
		zap.String("source", opts.Source),
		zap.String("output", out),
		zap.Int("messages", len(messages)),
		zap.Duration("interval", interval),
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	written := 0
	for i, msg := range messages {
		if i > 0 {
			timer.Reset(interval)
			select {
			case <-ctx.Done():
				logger.Info("simulation stopped", zap.Int("written", written))
				return written, nil
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return 0, nil
		}

		if err := appendLine(out, msg); err != nil {
			return written, err
		}
		written++
		if opts.Progress != nil {
			opts.Progress(written, len(messages), msg)
		}
	}
	logger.Info("simulation finished", zap.Int("written", written))
	return written, nil
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open demo log: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("write demo log: %w", err)
	}
	return f.Close()
}
