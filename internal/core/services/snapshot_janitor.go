package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/srgjo27/ticket_storefront/internal/core/ports"
)

// SnapshotJanitor deletes persisted carts nobody touched within the retention
// window. Only needed for stores without native key expiry.
type SnapshotJanitor struct {
	store     ports.StaleSnapshotStore
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewSnapshotJanitor(store ports.StaleSnapshotStore, retention, interval time.Duration, logger *slog.Logger) *SnapshotJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SnapshotJanitor{
		store:     store,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

func (j *SnapshotJanitor) RunBackgroundCleanup(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("snapshot janitor started", "retention", j.retention, "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("snapshot janitor stopped")
			return
		case <-ticker.C:
			j.purgeStale(ctx)
		}
	}
}

func (j *SnapshotJanitor) purgeStale(ctx context.Context) int {
	cutoff := j.now().Add(-j.retention)

	ids, err := j.store.GetStaleSessions(ctx, cutoff)
	if err != nil {
		j.logger.Error("failed to fetch stale carts", "error", err)
		return 0
	}

	if len(ids) == 0 {
		return 0
	}

	j.logger.Info("purging stale carts", "count", len(ids))

	purged := 0
	for _, id := range ids {
		if err := j.store.DeleteSnapshot(ctx, id, cutoff); err != nil {
			j.logger.Warn("failed to purge cart", "session_id", id, "error", err)
			continue
		}
		purged++
	}

	return purged
}
