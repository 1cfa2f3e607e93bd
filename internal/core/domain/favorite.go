package domain

import "sync"

type FavoriteState int

const (
	FavoriteUnknown FavoriteState = iota
	FavoriteOptimisticOn
	FavoriteOptimisticOff
)

type FavoriteToggle struct {
	Favorited bool `json:"favorited"`
	SaveCount int  `json:"save_count"`
}

// FavoriteOverlay holds optimistic favorite flags on top of the last
// authoritative answer.
type FavoriteOverlay struct {
	mu      sync.Mutex
	pending map[int64]FavoriteState
}

func NewFavoriteOverlay() *FavoriteOverlay {
	return &FavoriteOverlay{pending: make(map[int64]FavoriteState)}
}

func (o *FavoriteOverlay) Set(eventID int64, favorited bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if favorited {
		o.pending[eventID] = FavoriteOptimisticOn
	} else {
		o.pending[eventID] = FavoriteOptimisticOff
	}
}

func (o *FavoriteOverlay) State(eventID int64) FavoriteState {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.pending[eventID]
}

// Clear drops the pending state for one event.
func (o *FavoriteOverlay) Clear(eventID int64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.pending, eventID)
}

func (o *FavoriteOverlay) Empty() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.pending) == 0
}

// Resolve combines the overlay with an authoritative value.
func (o *FavoriteOverlay) Resolve(eventID int64, server bool) bool {
	switch o.State(eventID) {
	case FavoriteOptimisticOn:
		return true
	case FavoriteOptimisticOff:
		return false
	}
	return server
}
