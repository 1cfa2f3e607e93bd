package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_storefront/internal/adapter/repository/memory"
	"github.com/srgjo27/ticket_storefront/internal/core/domain"
	"github.com/srgjo27/ticket_storefront/internal/core/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRegistry_GetReturnsSameStorePerSession(t *testing.T) {
	registry := NewCartRegistry(memory.NewCartSnapshotRepository(), mocks.NewOrderAPI(t), nil, nil, RegistryConfig{})
	ctx := context.Background()

	a, err := registry.Get(ctx, "a")
	require.NoError(t, err)
	again, err := registry.Get(ctx, "a")
	require.NoError(t, err)
	b, err := registry.Get(ctx, "b")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.True(t, a.State().Loaded)
	assert.Equal(t, 2, registry.Len())
}

func TestCartRegistry_EvictionKeepsPersistedLines(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	registry := NewCartRegistry(repo, mocks.NewOrderAPI(t), nil, nil, RegistryConfig{IdleTimeout: time.Minute})

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }
	ctx := context.Background()

	store, err := registry.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, store.AddLine(ctx, domain.CartLine{
		EventID:      42,
		TicketTierID: 7,
		UnitPrice:    decimal.NewFromInt(100),
		Quantity:     2,
	}))

	now = now.Add(30 * time.Second)
	assert.Zero(t, registry.evictIdle())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, registry.evictIdle())
	assert.Zero(t, registry.Len())

	reloaded, err := registry.Get(ctx, "a")
	require.NoError(t, err)
	assert.NotSame(t, store, reloaded)
	assert.Equal(t, 2, reloaded.State().ItemCount)
}

func TestCartRegistry_RunIdleEvictionStopsOnCancel(t *testing.T) {
	registry := NewCartRegistry(memory.NewCartSnapshotRepository(), mocks.NewOrderAPI(t), nil, nil, RegistryConfig{SweepInterval: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		registry.RunIdleEviction(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("eviction worker did not stop")
	}
}
