package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/srgjo27/ticket_storefront/internal/core/domain"
	"github.com/srgjo27/ticket_storefront/internal/core/ports"
)

const DefaultIdleTimeout = 30 * time.Minute

type RegistryConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	SubmitTimeout time.Duration
}

// CartRegistry hands out one CartStore per browser session. Stores are
// loaded from the snapshot store on first use and dropped from memory once
// idle; their lines are already persisted, so nothing but unsent attendee
// data is lost on eviction.
type CartRegistry struct {
	snapshots ports.CartSnapshotStore
	orders    ports.OrderAPI
	publisher ports.OrderEventPublisher
	logger    *slog.Logger
	cfg       RegistryConfig
	now       func() time.Time

	mu    sync.Mutex
	carts map[string]*CartStore
}

func NewCartRegistry(snapshots ports.CartSnapshotStore, orders ports.OrderAPI, publisher ports.OrderEventPublisher, logger *slog.Logger, cfg RegistryConfig) *CartRegistry {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CartRegistry{
		snapshots: snapshots,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		carts:     make(map[string]*CartStore),
	}
}

// Get returns the loaded cart of sessionID, creating it on first use.
func (r *CartRegistry) Get(ctx context.Context, sessionID string) (*CartStore, error) {
	r.mu.Lock()
	store, ok := r.carts[sessionID]
	if !ok {
		opts := []CartStoreOption{
			WithLogger(r.logger),
			WithSubmitTimeout(r.cfg.SubmitTimeout),
			WithClock(r.now),
		}
		if r.publisher != nil {
			opts = append(opts, WithPublisher(r.publisher))
		}

		store = NewCartStore(sessionID, r.snapshots, r.orders, opts...)
		store.Subscribe(func(state domain.CartState) {
			r.logger.Debug("cart changed",
				"session_id", sessionID,
				"items", state.ItemCount,
				"total", state.Total.StringFixed(2),
				"submitting", state.Submitting,
			)
		})
		r.carts[sessionID] = store
	}
	r.mu.Unlock()

	store.touch()

	if err := store.Load(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

func (r *CartRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.carts)
}

// RunIdleEviction drops idle carts from memory until ctx is cancelled.
func (r *CartRegistry) RunIdleEviction(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	r.logger.Info("cart eviction worker started", "idle_timeout", r.cfg.IdleTimeout, "interval", r.cfg.SweepInterval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("cart eviction worker stopped")
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *CartRegistry) evictIdle() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, store := range r.carts {
		idle, submitting := store.idleSince(now)
		if submitting || idle < r.cfg.IdleTimeout {
			continue
		}

		delete(r.carts, id)
		evicted++
	}

	if evicted > 0 {
		r.logger.Info("evicted idle carts", "count", evicted, "remaining", len(r.carts))
	}

	return evicted
}
