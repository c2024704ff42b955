package app

import (
	"context"
	"time"

	"github.com/mpetrenko/leadglass/internal/syncer"
)

const defaultRefreshInterval = 2 * time.Minute

// startRefresher launches a background goroutine that re-syncs every dataset
// at a fixed cadence, keeping caches warm while the user sits on one view.
// It returns immediately.
func startRefresher(ctx context.Context, ctrl *syncer.Controller, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			ctrl.SyncAll(ctx)
		}
	}()
}
