package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/ticket_storefront/internal/core/domain"
	"github.com/srgjo27/ticket_storefront/internal/core/ports"
)

const (
	DefaultSubmitTimeout  = 30 * time.Second
	DefaultPublishTimeout = 10 * time.Second
)

// CheckoutInput carries what the buyer filled in on the checkout screen.
type CheckoutInput struct {
	Buyer           domain.BuyerRecord
	PaymentMethod   domain.PaymentMethod
	CouponCode      string
	AttendeesByTier map[int64][]domain.AttendeeRecord
}

type CartStoreOption func(*CartStore)

func WithPublisher(p ports.OrderEventPublisher) CartStoreOption {
	return func(s *CartStore) { s.publisher = p }
}

func WithLogger(l *slog.Logger) CartStoreOption {
	return func(s *CartStore) { s.logger = l }
}

func WithSubmitTimeout(d time.Duration) CartStoreOption {
	return func(s *CartStore) {
		if d > 0 {
			s.submitTimeout = d
		}
	}
}

func WithPublishTimeout(d time.Duration) CartStoreOption {
	return func(s *CartStore) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func WithClock(now func() time.Time) CartStoreOption {
	return func(s *CartStore) { s.now = now }
}

// CartStore owns the cart of one session: its lines, the attendee data
// collected for checkout and the checkout submission itself. Every line
// mutation is written to the snapshot store before it becomes visible.
type CartStore struct {
	sessionID     string
	snapshots     ports.CartSnapshotStore
	orders        ports.OrderAPI
	publisher      ports.OrderEventPublisher
	logger         *slog.Logger
	submitTimeout  time.Duration
	publishTimeout time.Duration
	now            func() time.Time

	mu         sync.Mutex
	lines      []domain.CartLine
	attendees  map[domain.AttendeeKey]domain.AttendeeRecord
	loaded     bool
	open       bool
	submitting bool
	lastUsed   time.Time

	subMu   sync.Mutex
	subs    map[int]func(domain.CartState)
	nextSub int
}

func NewCartStore(sessionID string, snapshots ports.CartSnapshotStore, orders ports.OrderAPI, opts ...CartStoreOption) *CartStore {
	s := &CartStore{
		sessionID:      sessionID,
		snapshots:      snapshots,
		orders:         orders,
		logger:         slog.Default(),
		submitTimeout:  DefaultSubmitTimeout,
		publishTimeout: DefaultPublishTimeout,
		now:            time.Now,
		attendees:      make(map[domain.AttendeeKey]domain.AttendeeRecord),
		subs:           make(map[int]func(domain.CartState)),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.lastUsed = s.now()
	s.logger = s.logger.With("session_id", sessionID)

	return s
}

// Load reads the persisted snapshot once. A missing or unreadable snapshot
// yields an empty cart; storage errors are returned and leave the store
// unloaded so the caller can retry.
func (s *CartStore) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return nil
	}

	snap, err := s.snapshots.Load(ctx, s.sessionID)
	switch {
	case err == nil:
		s.lines = snap.Lines
	case errors.Is(err, domain.ErrSnapshotNotFound):
		s.lines = nil
	case errors.Is(err, domain.ErrCorruptSnapshot):
		s.logger.Warn("discarding unreadable cart snapshot", "error", err)
		s.lines = nil
	default:
		s.mu.Unlock()
		return fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	s.loaded = true
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return nil
}

// State returns a copy of the current cart state.
func (s *CartStore) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stateLocked()
}

func (s *CartStore) stateLocked() domain.CartState {
	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)

	return domain.CartState{
		Lines:      lines,
		ItemCount:  domain.ItemCount(s.lines),
		Total:      domain.Total(s.lines),
		Loaded:     s.loaded,
		Open:       s.open,
		Submitting: s.submitting,
	}
}

// AddLine merges line into the cart. A line for another event is rejected
// with a *domain.CrossEventConflictError and the cart is left unchanged.
func (s *CartStore) AddLine(ctx context.Context, line domain.CartLine) error {
	if line.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	return s.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		if len(lines) > 0 && lines[0].EventID != line.EventID {
			return nil, &domain.CrossEventConflictError{
				CartEventID:      lines[0].EventID,
				RequestedEventID: line.EventID,
			}
		}

		next := make([]domain.CartLine, len(lines), len(lines)+1)
		copy(next, lines)

		for i := range next {
			if next[i].Matches(line.EventID, line.TicketTierID) {
				next[i].Quantity += line.Quantity
				return next, nil
			}
		}

		return append(next, line), nil
	}, func() { s.open = true })
}

func (s *CartStore) RemoveLine(ctx context.Context, eventID, tierID int64) error {
	return s.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		idx := indexOf(lines, eventID, tierID)
		if idx < 0 {
			return lines, nil
		}

		next := make([]domain.CartLine, 0, len(lines)-1)
		next = append(next, lines[:idx]...)
		return append(next, lines[idx+1:]...), nil
	}, nil)
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *CartStore) SetQuantity(ctx context.Context, eventID, tierID int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveLine(ctx, eventID, tierID)
	}

	return s.mutate(ctx, func(lines []domain.CartLine) ([]domain.CartLine, error) {
		idx := indexOf(lines, eventID, tierID)
		if idx < 0 {
			return lines, nil
		}

		next := make([]domain.CartLine, len(lines))
		copy(next, lines)
		next[idx].Quantity = quantity
		return next, nil
	}, nil)
}

func (s *CartStore) Clear(ctx context.Context) error {
	return s.mutate(ctx, func([]domain.CartLine) ([]domain.CartLine, error) {
		return nil, nil
	}, func() { s.attendees = make(map[domain.AttendeeKey]domain.AttendeeRecord) })
}

// SetOpen toggles the cart sidebar hint. It is not persisted.
func (s *CartStore) SetOpen(open bool) {
	s.mu.Lock()
	s.open = open
	s.lastUsed = s.now()
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
}

// mutate runs fn against the committed lines, persists the result and only
// then commits it. No-op mutations are persisted too.
func (s *CartStore) mutate(ctx context.Context, fn func([]domain.CartLine) ([]domain.CartLine, error), after func()) error {
	s.mu.Lock()

	if s.submitting {
		s.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}

	next, err := fn(s.lines)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if err := s.snapshots.Save(ctx, s.sessionID, domain.NewSnapshot(next)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	s.lines = next

	if after != nil {
		after()
	}
	s.lastUsed = s.now()
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return nil
}

// ExpandToTickets returns one entry per ticket unit, in line order then
// index order. It never mutates the cart.
func (s *CartStore) ExpandToTickets() []domain.ExpandedTicket {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.ExpandLines(s.lines)
}

func (s *CartStore) SetAttendee(key domain.AttendeeKey, field domain.AttendeeField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.attendees[key]
	if err := rec.Set(field, value); err != nil {
		return err
	}

	s.attendees[key] = rec
	s.lastUsed = s.now()
	return nil
}

// CopyBuyerToAttendee overwrites the attendee fields of one ticket only.
func (s *CartStore) CopyBuyerToAttendee(key domain.AttendeeKey, buyer domain.BuyerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attendees[key] = buyer.AsAttendee()
	s.lastUsed = s.now()
}

func (s *CartStore) Attendee(key domain.AttendeeKey) domain.AttendeeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.attendees[key]
}

// AttendeesByTier groups the collected attendee records by tier, one entry
// per ticket unit in index order. Tickets nobody filled in get an empty record.
func (s *CartStore) AttendeesByTier() map[int64][]domain.AttendeeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64][]domain.AttendeeRecord)
	for _, t := range domain.ExpandLines(s.lines) {
		out[t.TicketTierID] = append(out[t.TicketTierID], s.attendees[t.Key()])
	}
	return out
}

// Submit validates the checkout locally, sends it to the order API and, on
// success, empties the cart and returns the server's order. Validation
// failures return *domain.ValidationError without any network call. Remote
// failures return *domain.CheckoutFailedError and leave the cart untouched.
func (s *CartStore) Submit(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, domain.ErrSubmissionInFlight
	}

	submission, err := domain.BuildSubmission(s.lines, in.Buyer, in.PaymentMethod, in.CouponCode, in.AttendeesByTier)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.submitting = true
	s.lastUsed = s.now()
	state := s.stateLocked()
	s.mu.Unlock()
	s.notify(state)

	callCtx, cancel := context.WithTimeout(ctx, s.submitTimeout)
	defer cancel()

	order, err := s.orders.Checkout(callCtx, submission)
	if err == nil && order == nil {
		err = errors.New("order api returned no order")
	}

	s.mu.Lock()
	s.submitting = false

	if err != nil {
		state = s.stateLocked()
		s.mu.Unlock()
		s.notify(state)

		failed := domain.NewCheckoutFailed(err)
		s.logger.Warn("checkout failed", "event_id", submission.EventID, "status", failed.StatusCode, "error", err)
		return nil, failed
	}

	if err := s.snapshots.Save(ctx, s.sessionID, domain.NewSnapshot(nil)); err != nil {
		s.logger.Error("failed to clear persisted cart after checkout", "order", order.Hash, "error", err)
	}
	s.lines = nil
	s.attendees = make(map[domain.AttendeeKey]domain.AttendeeRecord)
	s.open = false
	state = s.stateLocked()
	s.mu.Unlock()
	s.notify(state)

	s.logger.Info("checkout confirmed", "order", order.Hash, "event_id", submission.EventID, "tickets", submission.TicketCount())
	s.publishConfirmed(ctx, submission, order)

	return order, nil
}

// publishConfirmed announces the order in the background; the buyer's
// response never waits on the broker.
func (s *CartStore) publishConfirmed(ctx context.Context, submission domain.CheckoutSubmission, order *domain.Order) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderConfirmed{
		MessageID:     uuid.NewString(),
		SessionID:     s.sessionID,
		OrderHash:     order.Hash,
		EventID:       submission.EventID,
		TicketCount:   submission.TicketCount(),
		Total:         order.Total,
		PaymentMethod: submission.PaymentMethod,
		BuyerEmail:    submission.Customer.Email,
		ConfirmedAt:   s.now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	go func() {
		defer cancel()

		if err := s.publisher.PublishOrderConfirmed(pubCtx, event); err != nil {
			s.logger.Warn("failed to publish order confirmation", "order", event.OrderHash, "error", err)
		}
	}()
}

// Subscribe registers fn to receive the state after every change. The
// returned function unregisters it.
func (s *CartStore) Subscribe(fn func(domain.CartState)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *CartStore) notify(state domain.CartState) {
	s.subMu.Lock()
	fns := make([]func(domain.CartState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func (s *CartStore) touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

func (s *CartStore) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return now.Sub(s.lastUsed), s.submitting
}

func indexOf(lines []domain.CartLine, eventID, tierID int64) int {
	for i, l := range lines {
		if l.Matches(eventID, tierID) {
			return i
		}
	}
	return -1
}
