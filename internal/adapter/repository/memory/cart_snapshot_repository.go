package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/srgjo27/ticket_storefront/internal/core/domain"
)

// CartSnapshotRepository keeps snapshots in process memory, encoded the same
// way the redis store encodes them. It counts writes so tests can assert on
// persistence.
type CartSnapshotRepository struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes map[string]int
}

func NewCartSnapshotRepository() *CartSnapshotRepository {
	return &CartSnapshotRepository{
		data:   make(map[string][]byte),
		writes: make(map[string]int),
	}
}

func (r *CartSnapshotRepository) Load(ctx context.Context, sessionID string) (domain.PersistedCartSnapshot, error) {
	r.mu.Lock()
	raw, ok := r.data[sessionID]
	r.mu.Unlock()

	if !ok {
		return domain.PersistedCartSnapshot{}, domain.ErrSnapshotNotFound
	}

	var snap domain.PersistedCartSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.PersistedCartSnapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}

	return snap, nil
}

func (r *CartSnapshotRepository) Save(ctx context.Context, sessionID string, snapshot domain.PersistedCartSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[sessionID] = raw
	r.writes[sessionID]++
	return nil
}

// Raw returns the encoded snapshot of sessionID.
func (r *CartSnapshotRepository) Raw(sessionID string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok := r.data[sessionID]
	return append([]byte(nil), raw...), ok
}

// Put stores raw bytes for sessionID without counting a write.
func (r *CartSnapshotRepository) Put(sessionID string, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[sessionID] = raw
}

func (r *CartSnapshotRepository) Writes(sessionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writes[sessionID]
}
