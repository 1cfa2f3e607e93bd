package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/srgjo27/ticket_storefront/internal/core/domain"
	"github.com/srgjo27/ticket_storefront/internal/core/ports"
)

type FavoriteStatus struct {
	EventID   int64 `json:"event_id"`
	Favorited bool  `json:"favorited"`
}

// FavoritesService relays favorite toggles to the event API and keeps an
// optimistic overlay per user until the next authoritative read.
type FavoritesService struct {
	api    ports.FavoritesAPI
	logger *slog.Logger

	mu       sync.Mutex
	overlays map[string]*domain.FavoriteOverlay
}

func NewFavoritesService(api ports.FavoritesAPI, logger *slog.Logger) *FavoritesService {
	if logger == nil {
		logger = slog.Default()
	}

	return &FavoritesService{
		api:      api,
		logger:   logger,
		overlays: make(map[string]*domain.FavoriteOverlay),
	}
}

// setPending records an optimistic flag, creating the token's overlay.
func (s *FavoritesService) setPending(token string, eventID int64, favorited bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overlays[token]
	if !ok {
		o = domain.NewFavoriteOverlay()
		s.overlays[token] = o
	}
	o.Set(eventID, favorited)
}

// clearPending drops one optimistic flag and forgets the token once nothing
// is pending for it.
func (s *FavoritesService) clearPending(token string, eventID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overlays[token]
	if !ok {
		return
	}
	o.Clear(eventID)
	if o.Empty() {
		delete(s.overlays, token)
	}
}

// Pending reports the optimistic state held for eventID.
func (s *FavoritesService) Pending(token string, eventID int64) domain.FavoriteState {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overlays[token]
	if !ok {
		return domain.FavoriteUnknown
	}
	return o.State(eventID)
}

// Len reports how many tokens currently hold pending toggles.
func (s *FavoritesService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.overlays)
}

// Toggle flips the favorite optimistically while the API call is in flight.
// The API's answer replaces the optimistic flag; on failure it is rolled back.
func (s *FavoritesService) Toggle(ctx context.Context, token string, eventID int64, currentlyFavorited bool) (FavoriteStatus, error) {
	s.setPending(token, eventID, !currentlyFavorited)

	res, err := s.api.ToggleFavorite(ctx, token, eventID)
	if err != nil {
		s.clearPending(token, eventID)
		s.logger.Warn("favorite toggle failed", "event_id", eventID, "error", err)
		return FavoriteStatus{EventID: eventID, Favorited: currentlyFavorited}, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	s.clearPending(token, eventID)
	return FavoriteStatus{EventID: eventID, Favorited: res.Favorited}, nil
}

// Check fetches the authoritative favorites and resets the overlay.
func (s *FavoritesService) Check(ctx context.Context, token string, eventIDs []int64) ([]FavoriteStatus, error) {
	ids, err := s.api.CheckFavorites(ctx, token, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check favorites: %w", err)
	}

	s.mu.Lock()
	delete(s.overlays, token)
	s.mu.Unlock()

	favorited := make(map[int64]bool, len(ids))
	for _, id := range ids {
		favorited[id] = true
	}

	out := make([]FavoriteStatus, 0, len(eventIDs))
	for _, id := range eventIDs {
		out = append(out, FavoriteStatus{EventID: id, Favorited: favorited[id]})
	}
	return out, nil
}
