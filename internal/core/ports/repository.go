package ports

import (
	"context"
	"time"

	"github.com/srgjo27/ticket_storefront/internal/core/domain"
)

// CartSnapshotStore persists the cart lines of one session. Load returns
// domain.ErrSnapshotNotFound when nothing was saved yet.
type CartSnapshotStore interface {
	Load(ctx context.Context, sessionID string) (domain.PersistedCartSnapshot, error)
	Save(ctx context.Context, sessionID string, snapshot domain.PersistedCartSnapshot) error
}

type OrderAPI interface {
	Checkout(ctx context.Context, submission domain.CheckoutSubmission) (*domain.Order, error)
	GetOrder(ctx context.Context, hash string) (*domain.Order, error)
	ValidateCoupon(ctx context.Context, code string, eventID int64, orderValue float64) (*domain.CouponValidation, error)
}

type CatalogAPI interface {
	ListEvents(ctx context.Context, filter domain.EventFilter) (*domain.EventPage, error)
	GetEvent(ctx context.Context, slug string) (*domain.Event, error)
}

type FavoritesAPI interface {
	CheckFavorites(ctx context.Context, token string, eventIDs []int64) ([]int64, error)
	ToggleFavorite(ctx context.Context, token string, eventID int64) (*domain.FavoriteToggle, error)
}

type OrderEventPublisher interface {
	PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmed) error
}

// StaleSnapshotStore is implemented by snapshot stores without native expiry.
type StaleSnapshotStore interface {
	GetStaleSessions(ctx context.Context, before time.Time) ([]string, error)
	DeleteSnapshot(ctx context.Context, sessionID string, before time.Time) error
}
