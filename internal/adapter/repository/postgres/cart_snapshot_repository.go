package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/srgjo27/ticket_storefront/internal/core/domain"
)

const staleBatchSize = 100

type CartSnapshotRepository struct {
	db *sql.DB
}

func NewCartSnapshotRepository(db *sql.DB) *CartSnapshotRepository {
	return &CartSnapshotRepository{db: db}
}

func (r *CartSnapshotRepository) Load(ctx context.Context, sessionID string) (domain.PersistedCartSnapshot, error) {
	query := `
	SELECT snapshot
	FROM cart_snapshots
	WHERE session_id = $1
	`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PersistedCartSnapshot{}, domain.ErrSnapshotNotFound
		}

		return domain.PersistedCartSnapshot{}, fmt.Errorf("failed to load cart snapshot: %w", err)
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

	query := `
	INSERT INTO cart_snapshots (session_id, snapshot, item_count, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (session_id) DO UPDATE
	SET snapshot = EXCLUDED.snapshot,
		item_count = EXCLUDED.item_count,
		updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, sessionID, raw, domain.ItemCount(snapshot.Lines))
	if err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}

	return nil
}

// GetStaleSessions returns up to one batch of sessions whose snapshot was
// last written before the given time.
func (r *CartSnapshotRepository) GetStaleSessions(ctx context.Context, before time.Time) ([]string, error) {
	query := `
	SELECT session_id FROM cart_snapshots
	WHERE updated_at < $1
	ORDER BY updated_at
	LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, before, staleBatchSize)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DeleteSnapshot removes the snapshot unless it was rewritten after before.
func (r *CartSnapshotRepository) DeleteSnapshot(ctx context.Context, sessionID string, before time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_snapshots WHERE session_id = $1 AND updated_at < $2`, sessionID, before)
	return err
}
