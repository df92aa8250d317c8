package stacjownik

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MinDistanceKM is the experience threshold below which a driver is flagged.
const MinDistanceKM = 100

// WarningText is shown once per inexperienced driver.
func WarningText(driver string) string {
	return fmt.Sprintf("ATTENTION: DRIVER %s drove less than 100 KM, be careful!", driver)
}

type lookup struct {
	distance float64
	known    bool
}

// Warner caches driver lookups and decides which drivers to warn about.
// It is safe for concurrent use.
type Warner struct {
	fetcher DriverFetcher
	logger  *zap.Logger

	mu     sync.Mutex
	cache  map[string]lookup
	warned map[string]struct{}
}

// NewWarner builds a Warner over fetcher.
func NewWarner(fetcher DriverFetcher, logger *zap.Logger) *Warner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Warner{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]lookup),
		warned:  make(map[string]struct{}),
	}
}

// Check returns the warning for driver if their distance is unknown or below
// MinDistanceKM and they have not been warned about yet.
func (w *Warner) Check(ctx context.Context, driver string) (string, bool) {
	if w == nil || driver == "" {
		return "", false
	}

	w.mu.Lock()
	if _, done := w.warned[driver]; done {
		w.mu.Unlock()
		return "", false
	}
	res, cached := w.cache[driver]
	w.mu.Unlock()

	if !cached {
		res = w.fetch(ctx, driver)
		if ctx.Err() != nil {
			// The lookup was abandoned, not answered; try again next time.
			return "", false
		}
		w.mu.Lock()
		w.cache[driver] = res
		w.mu.Unlock()
	}

	if res.known && res.distance >= MinDistanceKM {
		return "", false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, done := w.warned[driver]; done {
		return "", false
	}
	w.warned[driver] = struct{}{}
	return WarningText(driver), true
}

func (w *Warner) fetch(ctx context.Context, driver string) lookup {
	info, err := w.fetcher.FetchDriver(ctx, driver)
	if err != nil {
		w.logger.Debug("driver lookup failed", zap.String("driver", driver), zap.Error(err))
		return lookup{}
	}
	d, ok := info.Distance()
	return lookup{distance: d, known: ok}
}
