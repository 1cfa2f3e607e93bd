package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/srgjo27/ticket_storefront/internal/core/domain"
)

const (
	keyPrefix  = "tkt4you-cart"
	DefaultTTL = 30 * 24 * time.Hour
)

// CartSnapshotRepository stores one JSON snapshot per session under a fixed
// key prefix. Every save refreshes the TTL. Concurrent writers for the same
// session are last-write-wins.
type CartSnapshotRepository struct {
	client goredis.Cmdable
	ttl    time.Duration
}

func NewCartSnapshotRepository(client goredis.Cmdable, ttl time.Duration) *CartSnapshotRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CartSnapshotRepository{client: client, ttl: ttl}
}

func (r *CartSnapshotRepository) Load(ctx context.Context, sessionID string) (domain.PersistedCartSnapshot, error) {
	data, err := r.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.PersistedCartSnapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.PersistedCartSnapshot{}, fmt.Errorf("redis get failed: %w", err)
	}

	var snap domain.PersistedCartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.PersistedCartSnapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}

	return snap, nil
}

func (r *CartSnapshotRepository) Save(ctx context.Context, sessionID string, snapshot domain.PersistedCartSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot failed: %w", err)
	}

	if err := r.client.Set(ctx, snapshotKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, sessionID)
}
