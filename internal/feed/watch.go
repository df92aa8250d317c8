package feed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bravuralion/td2-chat-translator/internal/monitor"
	"github.com/bravuralion/td2-chat-translator/internal/state"
)

const defaultWatchInterval = 10 * time.Second

// Watch opens the newest log in m, then keeps opening logs that become
// active until ctx is done. It blocks.
func (f *Feed) Watch(ctx context.Context, m *monitor.Monitor, interval time.Duration) {
	if interval <= 0 {
		interval = defaultWatchInterval
	}

	if newest, ok, err := m.Newest(); err != nil {
		f.logger.Warn("list logs failed", zap.String("dir", m.Dir()), zap.Error(err))
		f.emit(ctx, state.Event{Kind: state.ErrorRaised, Err: err})
	} else if ok {
		_ = f.Open(ctx, newest)
	} else {
		f.logger.Info("no chat logs found yet", zap.String("dir", m.Dir()))
	}
	if err := m.Remember(); err != nil {
		f.logger.Warn("snapshot logs failed", zap.String("dir", m.Dir()), zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		case <-ticker.C:
		}

		active, err := m.Scan(f.IsOpen)
		if err != nil {
			f.logger.Warn("scan logs failed", zap.String("dir", m.Dir()), zap.Error(err))
			continue
		}
		for _, path := range active {
			f.logger.Info("log became active", zap.String("path", path))
			_ = f.Open(ctx, path)
		}
	}
}
