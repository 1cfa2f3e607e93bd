package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/srgjo27/ticket_storefront/internal/adapter/repository/memory"
	"github.com/srgjo27/ticket_storefront/internal/core/domain"
	"github.com/srgjo27/ticket_storefront/internal/core/ports/mocks"
	"github.com/srgjo27/ticket_storefront/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sessionID = "session-1"

func line(eventID, tierID int64, qty int, price string) domain.CartLine {
	return domain.CartLine{
		EventID:         eventID,
		TicketTierID:    tierID,
		TicketTypeLabel: "Pista",
		UnitPrice:       decimal.RequireFromString(price),
		Quantity:        qty,
		EventTitle:      "Festival",
		EventDate:       "2026-12-01T20:00:00Z",
	}
}

func newLoadedStore(t *testing.T, repo *memory.CartSnapshotRepository, orders *mocks.OrderAPI, opts ...services.CartStoreOption) *services.CartStore {
	t.Helper()

	store := services.NewCartStore(sessionID, repo, orders, opts...)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func validBuyer() domain.BuyerRecord {
	return domain.BuyerRecord{
		Name:       "Maria Silva",
		Email:      "maria@example.com",
		NationalID: "123.456.789-01",
		Phone:      "(11) 98765-4321",
	}
}

func fillAttendees(store *services.CartStore) map[int64][]domain.AttendeeRecord {
	out := make(map[int64][]domain.AttendeeRecord)
	for _, tk := range store.ExpandToTickets() {
		out[tk.TicketTierID] = append(out[tk.TicketTierID], domain.AttendeeRecord{
			Name:       "Guest",
			Email:      "guest@example.com",
			NationalID: "987.654.321-00",
		})
	}
	return out
}

func TestAddLine_AggregatesSameTier(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	store := newLoadedStore(t, repo, mocks.NewOrderAPI(t))
	ctx := context.Background()

	require.NoError(t, store.AddLine(ctx, line(42, 7, 2, "100.00")))
	require.NoError(t, store.AddLine(ctx, line(42, 7, 1, "100.00")))

	state := store.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 3, state.Lines[0].Quantity)
	assert.Equal(t, 3, state.ItemCount)
	assert.True(t, decimal.RequireFromString("300").Equal(state.Total))
	assert.True(t, state.Open)
	assert.Equal(t, 2, repo.Writes(sessionID))
}

func TestAddLine_KeepsInsertionOrder(t *testing.T) {
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), mocks.NewOrderAPI(t))
	ctx := context.Background()

	require.NoError(t, store.AddLine(ctx, line(42, 9, 1, "50")))
	require.NoError(t, store.AddLine(ctx, line(42, 7, 1, "80")))
	require.NoError(t, store.AddLine(ctx, line(42, 9, 2, "50")))

	state := store.State()
	require.Len(t, state.Lines, 2)
	assert.Equal(t, int64(9), state.Lines[0].TicketTierID)
	assert.Equal(t, 3, state.Lines[0].Quantity)
	assert.Equal(t, int64(7), state.Lines[1].TicketTierID)
	assert.True(t, decimal.RequireFromString("230").Equal(state.Total))
}

func TestAddLine_CrossEventRejected(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	store := newLoadedStore(t, repo, mocks.NewOrderAPI(t))
	ctx := context.Background()

	require.NoError(t, store.AddLine(ctx, line(42, 7, 1, "100")))
	before := store.State()
	raw, _ := repo.Raw(sessionID)

	err := store.AddLine(ctx, line(99, 3, 1, "10"))

	var conflict *domain.CrossEventConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, domain.ErrCrossEventConflict)
	assert.Equal(t, int64(42), conflict.CartEventID)
	assert.Equal(t, int64(99), conflict.RequestedEventID)

	assert.Equal(t, before, store.State())
	after, _ := repo.Raw(sessionID)
	assert.Equal(t, raw, after)
	assert.Equal(t, 1, repo.Writes(sessionID))
}

func TestAddLine_InvalidQuantity(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	store := newLoadedStore(t, repo, mocks.NewOrderAPI(t))

	err := store.AddLine(context.Background(), line(42, 7, 0, "100"))

	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Empty(t, store.State().Lines)
	assert.Zero(t, repo.Writes(sessionID))
}

func TestAddLine_AcceptsLargeQuantity(t *testing.T) {
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), mocks.NewOrderAPI(t))

	require.NoError(t, store.AddLine(context.Background(), line(42, 7, 25, "1")))
	assert.Equal(t, 25, store.State().ItemCount)
}

func TestAddLine_PersistFailureLeavesCartUnchanged(t *testing.T) {
	snapshots := mocks.NewCartSnapshotStore(t)
	snapshots.On("Load", mock.Anything, sessionID).Return(domain.PersistedCartSnapshot{}, domain.ErrSnapshotNotFound)
	snapshots.On("Save", mock.Anything, sessionID, mock.Anything).Return(errors.New("redis down"))

	store := services.NewCartStore(sessionID, snapshots, mocks.NewOrderAPI(t))
	require.NoError(t, store.Load(context.Background()))

	err := store.AddLine(context.Background(), line(42, 7, 1, "100"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist cart")
	assert.Empty(t, store.State().Lines)
	assert.False(t, store.State().Open)
}

func TestSetQuantity(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	store := newLoadedStore(t, repo, mocks.NewOrderAPI(t))
	ctx := context.Background()

	require.NoError(t, store.AddLine(ctx, line(42, 7, 2, "100")))
	require.NoError(t, store.AddLine(ctx, line(42, 8, 1, "40")))

	require.NoError(t, store.SetQuantity(ctx, 42, 7, 5))
	assert.Equal(t, 5, store.State().Lines[0].Quantity)

	require.NoError(t, store.SetQuantity(ctx, 42, 7, 0))
	state := store.State()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, int64(8), state.Lines[0].TicketTierID)

	require.NoError(t, store.SetQuantity(ctx, 42, 1234, 0))
	require.NoError(t, store.SetQuantity(ctx, 42, 1234, 3))
	assert.Equal(t, state.Lines, store.State().Lines)
}

func TestRemoveLineAndClear(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	store := newLoadedStore(t, repo, mocks.NewOrderAPI(t))
	ctx := context.Background()

	require.NoError(t, store.AddLine(ctx, line(42, 7, 2, "100")))
	require.NoError(t, store.AddLine(ctx, line(42, 8, 1, "40")))

	require.NoError(t, store.RemoveLine(ctx, 42, 999))
	assert.Len(t, store.State().Lines, 2)

	require.NoError(t, store.RemoveLine(ctx, 42, 7))
	assert.Len(t, store.State().Lines, 1)

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.State().Lines)
	assert.Zero(t, store.State().ItemCount)

	snap, err := repo.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)
	assert.Equal(t, domain.SnapshotVersion, snap.Version)
}

func TestExpandToTickets(t *testing.T) {
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), mocks.NewOrderAPI(t))
	ctx := context.Background()

	require.NoError(t, store.AddLine(ctx, line(42, 7, 2, "100")))
	vip := line(42, 8, 3, "250")
	vip.TicketTypeLabel = "VIP"
	require.NoError(t, store.AddLine(ctx, vip))

	first := store.ExpandToTickets()
	second := store.ExpandToTickets()

	assert.Equal(t, first, second)
	assert.Len(t, first, store.State().ItemCount)
	assert.Equal(t, []domain.ExpandedTicket{
		{TicketTierID: 7, TicketTypeLabel: "Pista", Index: 0},
		{TicketTierID: 7, TicketTypeLabel: "Pista", Index: 1},
		{TicketTierID: 8, TicketTypeLabel: "VIP", Index: 0},
		{TicketTierID: 8, TicketTypeLabel: "VIP", Index: 1},
		{TicketTierID: 8, TicketTypeLabel: "VIP", Index: 2},
	}, first)
}

func TestLoad_RoundTrip(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	store := newLoadedStore(t, repo, mocks.NewOrderAPI(t))
	ctx := context.Background()

	withImage := line(42, 7, 2, "99.90")
	withImage.EventImage = "https://cdn.example.com/cover.jpg"
	require.NoError(t, store.AddLine(ctx, withImage))
	require.NoError(t, store.AddLine(ctx, line(42, 8, 1, "10.5")))

	reloaded := services.NewCartStore(sessionID, repo, mocks.NewOrderAPI(t))
	assert.False(t, reloaded.State().Loaded)
	require.NoError(t, reloaded.Load(ctx))

	want := store.State().Lines
	got := reloaded.State().Lines
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].EventID, got[i].EventID)
		assert.Equal(t, want[i].TicketTierID, got[i].TicketTierID)
		assert.Equal(t, want[i].TicketTypeLabel, got[i].TicketTypeLabel)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice))
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.Equal(t, want[i].EventTitle, got[i].EventTitle)
		assert.Equal(t, want[i].EventImage, got[i].EventImage)
		assert.Equal(t, want[i].EventDate, got[i].EventDate)
	}
	assert.True(t, reloaded.State().Loaded)
}

func TestLoad_CorruptSnapshotStartsEmpty(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	repo.Put(sessionID, []byte("{not json"))

	store := services.NewCartStore(sessionID, repo, mocks.NewOrderAPI(t))
	require.NoError(t, store.Load(context.Background()))

	assert.True(t, store.State().Loaded)
	assert.Empty(t, store.State().Lines)
}

func TestLoad_StorageErrorKeepsStoreUnloaded(t *testing.T) {
	snapshots := mocks.NewCartSnapshotStore(t)
	snapshots.On("Load", mock.Anything, sessionID).Return(domain.PersistedCartSnapshot{}, errors.New("connection refused"))

	store := services.NewCartStore(sessionID, snapshots, mocks.NewOrderAPI(t))
	err := store.Load(context.Background())

	assert.Error(t, err)
	assert.False(t, store.State().Loaded)
}

func TestAttendees(t *testing.T) {
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), mocks.NewOrderAPI(t))
	require.NoError(t, store.AddLine(context.Background(), line(42, 7, 2, "100")))

	first := domain.AttendeeKey{TierID: 7, Index: 0}
	second := domain.AttendeeKey{TierID: 7, Index: 1}

	require.NoError(t, store.SetAttendee(second, domain.AttendeeName, "João"))
	require.NoError(t, store.SetAttendee(second, domain.AttendeeEmail, "joao@example.com"))
	assert.ErrorIs(t, store.SetAttendee(second, "age", "30"), domain.ErrUnknownAttendeeField)

	store.CopyBuyerToAttendee(first, validBuyer())

	assert.Equal(t, domain.AttendeeRecord{
		Name:       "Maria Silva",
		Email:      "maria@example.com",
		NationalID: "123.456.789-01",
	}, store.Attendee(first))
	assert.Equal(t, "João", store.Attendee(second).Name)
	assert.Empty(t, store.Attendee(second).NationalID)

	byTier := store.AttendeesByTier()
	require.Len(t, byTier[7], 2)
	assert.Equal(t, "Maria Silva", byTier[7][0].Name)
	assert.Equal(t, "João", byTier[7][1].Name)
}

func TestSubscribe(t *testing.T) {
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), mocks.NewOrderAPI(t))
	ctx := context.Background()

	var seen []int
	cancel := store.Subscribe(func(s domain.CartState) { seen = append(seen, s.ItemCount) })

	require.NoError(t, store.AddLine(ctx, line(42, 7, 2, "100")))
	require.NoError(t, store.SetQuantity(ctx, 42, 7, 4))
	cancel()
	require.NoError(t, store.Clear(ctx))

	assert.Equal(t, []int{2, 4}, seen)
}

func TestSubmit_MissingAttendeeNameMakesNoCall(t *testing.T) {
	orders := mocks.NewOrderAPI(t)
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), orders)
	require.NoError(t, store.AddLine(context.Background(), line(42, 7, 2, "100")))

	attendees := fillAttendees(store)
	attendees[7][1].Name = "   "

	order, err := store.Submit(context.Background(), services.CheckoutInput{
		Buyer:           validBuyer(),
		PaymentMethod:   domain.PaymentPix,
		AttendeesByTier: attendees,
	})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "items[7].attendees[1].name", vErr.Field)
	assert.Nil(t, order)
	orders.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	assert.Len(t, store.State().Lines, 1)
}

func TestSubmit_BuyerValidation(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*domain.BuyerRecord)
		field string
	}{
		{"name", func(b *domain.BuyerRecord) { b.Name = "" }, "customer.name"},
		{"email", func(b *domain.BuyerRecord) { b.Email = " " }, "customer.email"},
		{"cpf", func(b *domain.BuyerRecord) { b.NationalID = "" }, "customer.cpf"},
		{"phone", func(b *domain.BuyerRecord) { b.Phone = "" }, "customer.phone"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orders := mocks.NewOrderAPI(t)
			store := newLoadedStore(t, memory.NewCartSnapshotRepository(), orders)
			require.NoError(t, store.AddLine(context.Background(), line(42, 7, 1, "100")))

			buyer := validBuyer()
			tc.edit(&buyer)

			_, err := store.Submit(context.Background(), services.CheckoutInput{
				Buyer:           buyer,
				PaymentMethod:   domain.PaymentCard,
				AttendeesByTier: fillAttendees(store),
			})

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestSubmit_EmptyCart(t *testing.T) {
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), mocks.NewOrderAPI(t))

	_, err := store.Submit(context.Background(), services.CheckoutInput{Buyer: validBuyer(), PaymentMethod: domain.PaymentCard})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "cart", vErr.Field)
}

func TestSubmit_RemoteFailureLeavesCartUntouched(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	orders := mocks.NewOrderAPI(t)
	store := newLoadedStore(t, repo, orders)
	ctx := context.Background()

	require.NoError(t, store.AddLine(ctx, line(42, 7, 2, "100")))
	before := store.State()
	raw, _ := repo.Raw(sessionID)
	writes := repo.Writes(sessionID)

	orders.On("Checkout", mock.Anything, mock.AnythingOfType("domain.CheckoutSubmission")).
		Return(nil, &domain.APIError{StatusCode: 422, Message: "Ingressos esgotados."}).Once()

	order, err := store.Submit(ctx, services.CheckoutInput{
		Buyer:           validBuyer(),
		PaymentMethod:   domain.PaymentBoleto,
		AttendeesByTier: fillAttendees(store),
	})

	assert.Nil(t, order)
	var failed *domain.CheckoutFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "Ingressos esgotados.", failed.Message)
	assert.Equal(t, 422, failed.StatusCode)

	assert.Equal(t, before, store.State())
	after, _ := repo.Raw(sessionID)
	assert.Equal(t, raw, after)
	assert.Equal(t, writes, repo.Writes(sessionID))
}

func TestSubmit_NetworkErrorUsesGenericMessage(t *testing.T) {
	orders := mocks.NewOrderAPI(t)
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), orders)
	require.NoError(t, store.AddLine(context.Background(), line(42, 7, 1, "100")))

	orders.On("Checkout", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused")).Once()

	_, err := store.Submit(context.Background(), services.CheckoutInput{
		Buyer:           validBuyer(),
		PaymentMethod:   domain.PaymentCard,
		AttendeesByTier: fillAttendees(store),
	})

	var failed *domain.CheckoutFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, domain.DefaultCheckoutFailureMessage, failed.Message)
	assert.Len(t, store.State().Lines, 1)
	assert.False(t, store.State().Submitting)
}

func TestSubmit_TimeoutIsCheckoutFailure(t *testing.T) {
	orders := mocks.NewOrderAPI(t)
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), orders, services.WithSubmitTimeout(20*time.Millisecond))
	require.NoError(t, store.AddLine(context.Background(), line(42, 7, 1, "100")))

	orders.On("Checkout", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, _ domain.CheckoutSubmission) (*domain.Order, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()

	_, err := store.Submit(context.Background(), services.CheckoutInput{
		Buyer:           validBuyer(),
		PaymentMethod:   domain.PaymentCard,
		AttendeesByTier: fillAttendees(store),
	})

	var failed *domain.CheckoutFailedError
	require.ErrorAs(t, err, &failed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, store.State().Lines, 1)
}

func TestSubmit_Success(t *testing.T) {
	repo := memory.NewCartSnapshotRepository()
	orders := mocks.NewOrderAPI(t)
	publisher := mocks.NewOrderEventPublisher(t)
	store := newLoadedStore(t, repo, orders, services.WithPublisher(publisher))
	ctx := context.Background()

	require.NoError(t, store.AddLine(ctx, line(42, 7, 2, "100")))
	require.NoError(t, store.AddLine(ctx, line(42, 8, 1, "50")))
	store.CopyBuyerToAttendee(domain.AttendeeKey{TierID: 7, Index: 0}, validBuyer())
	itemCount := store.State().ItemCount

	orders.On("Checkout", mock.Anything, mock.MatchedBy(func(s domain.CheckoutSubmission) bool {
		return s.EventID == 42 && s.Customer.CPF == "123.456.789-01" && len(s.Items) == 2 &&
			s.Items[0].TicketTierID == 7 && len(s.Items[0].Attendees) == 2 &&
			s.Items[1].TicketTierID == 8 && len(s.Items[1].Attendees) == 1 &&
			s.PaymentMethod == domain.PaymentPix
	})).Return(func(_ context.Context, s domain.CheckoutSubmission) (*domain.Order, error) {
		order := &domain.Order{Hash: "ORD-1", Total: decimal.RequireFromString("250")}
		for _, item := range s.Items {
			for _, a := range item.Attendees {
				order.IssuedTickets = append(order.IssuedTickets, domain.IssuedTicket{HolderName: a.Name, Status: "valid"})
			}
		}
		return order, nil
	}).Once()

	published := make(chan struct{})
	publisher.On("PublishOrderConfirmed", mock.Anything, mock.MatchedBy(func(e domain.OrderConfirmed) bool {
		return e.OrderHash == "ORD-1" && e.EventID == 42 && e.TicketCount == 3 && e.SessionID == sessionID
	})).Run(func(mock.Arguments) { close(published) }).Return(nil).Once()

	attendees := store.AttendeesByTier()
	guests := fillAttendees(store)
	for tier, recs := range attendees {
		for i := range recs {
			if recs[i].Name == "" {
				recs[i] = guests[tier][i]
			}
		}
	}

	order, err := store.Submit(ctx, services.CheckoutInput{
		Buyer:           validBuyer(),
		PaymentMethod:   domain.PaymentPix,
		AttendeesByTier: attendees,
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", order.Hash)
	assert.Len(t, order.IssuedTickets, itemCount)
	assert.Equal(t, "Maria Silva", order.IssuedTickets[0].HolderName)

	state := store.State()
	assert.Empty(t, state.Lines)
	assert.False(t, state.Submitting)
	assert.Empty(t, store.Attendee(domain.AttendeeKey{TierID: 7, Index: 0}).Name)

	snap, err := repo.Load(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, snap.Lines)

	waitFor(t, published)
}

func TestSubmit_PublishFailureDoesNotFailCheckout(t *testing.T) {
	orders := mocks.NewOrderAPI(t)
	publisher := mocks.NewOrderEventPublisher(t)
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), orders, services.WithPublisher(publisher))
	require.NoError(t, store.AddLine(context.Background(), line(42, 7, 1, "100")))

	orders.On("Checkout", mock.Anything, mock.Anything).Return(&domain.Order{Hash: "ORD-2"}, nil).Once()
	published := make(chan struct{})
	publisher.On("PublishOrderConfirmed", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { close(published) }).
		Return(errors.New("broker unreachable")).Once()

	order, err := store.Submit(context.Background(), services.CheckoutInput{
		Buyer:           validBuyer(),
		PaymentMethod:   domain.PaymentCard,
		AttendeesByTier: fillAttendees(store),
	})

	require.NoError(t, err)
	assert.Equal(t, "ORD-2", order.Hash)
	assert.Empty(t, store.State().Lines)

	waitFor(t, published)
}

func TestSubmit_DoesNotWaitForSlowBroker(t *testing.T) {
	orders := mocks.NewOrderAPI(t)
	publisher := mocks.NewOrderEventPublisher(t)
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), orders,
		services.WithPublisher(publisher),
		services.WithPublishTimeout(time.Second),
	)
	require.NoError(t, store.AddLine(context.Background(), line(42, 7, 1, "100")))

	orders.On("Checkout", mock.Anything, mock.Anything).Return(&domain.Order{Hash: "ORD-3"}, nil).Once()

	release := make(chan struct{})
	published := make(chan struct{})
	publisher.On("PublishOrderConfirmed", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			defer close(published)

			ctx := args.Get(0).(context.Context)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)

			select {
			case <-release:
			case <-ctx.Done():
			}
		}).
		Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := store.Submit(context.Background(), services.CheckoutInput{
			Buyer:           validBuyer(),
			PaymentMethod:   domain.PaymentPix,
			AttendeesByTier: fillAttendees(store),
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("checkout blocked on the order event publisher")
	}

	close(release)
	waitFor(t, published)
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for order event publish")
	}
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	orders := mocks.NewOrderAPI(t)
	store := newLoadedStore(t, memory.NewCartSnapshotRepository(), orders)
	ctx := context.Background()
	require.NoError(t, store.AddLine(ctx, line(42, 7, 1, "100")))

	input := services.CheckoutInput{
		Buyer:           validBuyer(),
		PaymentMethod:   domain.PaymentCard,
		AttendeesByTier: fillAttendees(store),
	}

	started := make(chan struct{})
	release := make(chan struct{})
	orders.On("Checkout", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&domain.Order{Hash: "ORD-3"}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := store.Submit(ctx, input)
		done <- err
	}()

	<-started
	assert.True(t, store.State().Submitting)

	_, err := store.Submit(ctx, input)
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
	assert.ErrorIs(t, store.AddLine(ctx, line(42, 7, 1, "100")), domain.ErrSubmissionInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, store.State().Submitting)
	orders.AssertNumberOfCalls(t, "Checkout", 1)
}
