package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/srgjo27/ticket_storefront/internal/core/domain"
	"github.com/srgjo27/ticket_storefront/internal/core/ports"
	"github.com/srgjo27/ticket_storefront/internal/core/services"
)

// MaxSelectableQuantity caps how many tickets of one tier a single request
// may ask for, matching the storefront's quantity selector.
const MaxSelectableQuantity = 10

type CartHandler struct {
	carts   *services.CartRegistry
	catalog ports.CatalogAPI
	logger  *slog.Logger
}

func NewCartHandler(carts *services.CartRegistry, catalog ports.CatalogAPI, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, logger: logger}
}

type AddLineRequest struct {
	EventSlug    string `json:"event_slug"`
	TicketTierID int64  `json:"ticket_tier_id"`
	Quantity     int    `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type SetOpenRequest struct {
	Open bool `json:"open"`
}

type SetAttendeeRequest struct {
	Field domain.AttendeeField `json:"field"`
	Value string               `json:"value"`
}

type AttendeeInput struct {
	TicketTierID int64  `json:"ticket_tier_id"`
	Index        int    `json:"index"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	CPF          string `json:"cpf"`
}

type CheckoutRequest struct {
	Buyer         domain.BuyerRecord   `json:"buyer"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	CouponCode    string               `json:"coupon_code"`
	Attendees     []AttendeeInput      `json:"attendees"`
}

type TicketView struct {
	domain.ExpandedTicket
	Attendee domain.AttendeeRecord `json:"attendee"`
}

type CartResponse struct {
	domain.CartState
	Tickets []TicketView `json:"tickets"`
}

func (h *CartHandler) cart(w http.ResponseWriter, r *http.Request) (*services.CartStore, bool) {
	store, err := h.carts.Get(r.Context(), sessionFromContext(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return store, true
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, store *services.CartStore) {
	tickets := store.ExpandToTickets()
	views := make([]TicketView, len(tickets))
	for i, t := range tickets {
		views[i] = TicketView{ExpandedTicket: t, Attendee: store.Attendee(t.Key())}
	}

	respondJSON(w, status, CartResponse{CartState: store.State(), Tickets: views})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cart(w, r)
	if !ok {
		return
	}

	h.respondCart(w, http.StatusOK, store)
}

// AddLine resolves the tier from the catalog so label and price are the
// server's, then merges it into the cart.
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.EventSlug == "" || req.TicketTierID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "event_slug and ticket_tier_id are required")
		return
	}
	if req.Quantity < 1 || req.Quantity > MaxSelectableQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 10")
		return
	}

	event, err := h.catalog.GetEvent(r.Context(), req.EventSlug)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	tier, err := event.Tier(req.TicketTierID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !tier.Purchasable() {
		respondError(w, http.StatusConflict, "tier_unavailable", "ticket tier is not on sale")
		return
	}
	if tier.MaxPerOrder > 0 && req.Quantity > tier.MaxPerOrder {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity exceeds the per-order limit of this tier")
		return
	}

	store, ok := h.cart(w, r)
	if !ok {
		return
	}

	if err := store.AddLine(r.Context(), domain.NewCartLine(*event, tier, req.Quantity)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondCart(w, http.StatusCreated, store)
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	eventID, tierID, ok := lineParams(w, r)
	if !ok {
		return
	}

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > MaxSelectableQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 10")
		return
	}

	store, ok := h.cart(w, r)
	if !ok {
		return
	}

	if err := store.SetQuantity(r.Context(), eventID, tierID, req.Quantity); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondCart(w, http.StatusOK, store)
}

func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	eventID, tierID, ok := lineParams(w, r)
	if !ok {
		return
	}

	store, ok := h.cart(w, r)
	if !ok {
		return
	}

	if err := store.RemoveLine(r.Context(), eventID, tierID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondCart(w, http.StatusOK, store)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.cart(w, r)
	if !ok {
		return
	}

	if err := store.Clear(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondCart(w, http.StatusOK, store)
}

func (h *CartHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	var req SetOpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store, ok := h.cart(w, r)
	if !ok {
		return
	}

	store.SetOpen(req.Open)
	h.respondCart(w, http.StatusOK, store)
}

func (h *CartHandler) SetAttendee(w http.ResponseWriter, r *http.Request) {
	var req SetAttendeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store, key, ok := h.ticket(w, r)
	if !ok {
		return
	}

	value := req.Value
	if req.Field == domain.AttendeeNationalID {
		value = domain.MaskCPF(value)
	}

	if err := store.SetAttendee(key, req.Field, value); err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, TicketView{
		ExpandedTicket: domain.ExpandedTicket{TicketTierID: key.TierID, Index: key.Index},
		Attendee:       store.Attendee(key),
	})
}

func (h *CartHandler) CopyBuyer(w http.ResponseWriter, r *http.Request) {
	var buyer domain.BuyerRecord
	if err := json.NewDecoder(r.Body).Decode(&buyer); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store, key, ok := h.ticket(w, r)
	if !ok {
		return
	}

	store.CopyBuyerToAttendee(key, maskBuyer(buyer))

	respondJSON(w, http.StatusOK, TicketView{
		ExpandedTicket: domain.ExpandedTicket{TicketTierID: key.TierID, Index: key.Index},
		Attendee:       store.Attendee(key),
	})
}

// Checkout records any attendee data sent with the request and submits the
// cart. The order API call is not tied to the browser connection, so a
// client that disconnects mid-checkout cannot abort an order half way.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store, ok := h.cart(w, r)
	if !ok {
		return
	}

	// An empty cart is reported by Submit; attendees only apply to tickets
	// of the current expansion.
	tickets := store.ExpandToTickets()
	attendees := req.Attendees
	if len(tickets) == 0 {
		attendees = nil
	}

	inCart := make(map[domain.AttendeeKey]bool, len(tickets))
	for _, t := range tickets {
		inCart[t.Key()] = true
	}
	for _, a := range attendees {
		key := domain.AttendeeKey{TierID: a.TicketTierID, Index: a.Index}
		if !inCart[key] {
			respondError(w, http.StatusBadRequest, "ticket_not_found", "no ticket "+key.String()+" in cart")
			return
		}
	}

	for _, a := range attendees {
		key := domain.AttendeeKey{TierID: a.TicketTierID, Index: a.Index}
		rec := domain.AttendeeRecord{Name: a.Name, Email: a.Email, NationalID: a.CPF}
		for field, value := range map[domain.AttendeeField]string{
			domain.AttendeeName:       rec.Name,
			domain.AttendeeEmail:      rec.Email,
			domain.AttendeeNationalID: domain.MaskCPF(rec.NationalID),
		} {
			if err := store.SetAttendee(key, field, value); err != nil {
				writeError(w, h.logger, err)
				return
			}
		}
	}

	order, err := store.Submit(context.WithoutCancel(r.Context()), services.CheckoutInput{
		Buyer:           maskBuyer(req.Buyer),
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
		AttendeesByTier: store.AttendeesByTier(),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, dataResponse{Data: order})
}

// ticket resolves the {tierID}/{index} route params against the current
// expansion of the cart.
func (h *CartHandler) ticket(w http.ResponseWriter, r *http.Request) (*services.CartStore, domain.AttendeeKey, bool) {
	tierID, err := strconv.ParseInt(chi.URLParam(r, "tierID"), 10, 64)
	if err != nil || tierID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_tier_id", "tier id must be a positive integer")
		return nil, domain.AttendeeKey{}, false
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondError(w, http.StatusBadRequest, "invalid_index", "index must be a non-negative integer")
		return nil, domain.AttendeeKey{}, false
	}

	store, ok := h.cart(w, r)
	if !ok {
		return nil, domain.AttendeeKey{}, false
	}

	key := domain.AttendeeKey{TierID: tierID, Index: index}
	for _, t := range store.ExpandToTickets() {
		if t.Key() == key {
			return store, key, true
		}
	}

	respondError(w, http.StatusNotFound, "ticket_not_found", "no ticket "+key.String()+" in cart")
	return nil, domain.AttendeeKey{}, false
}

func lineParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil || eventID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_event_id", "event id must be a positive integer")
		return 0, 0, false
	}

	tierID, err := strconv.ParseInt(chi.URLParam(r, "tierID"), 10, 64)
	if err != nil || tierID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_tier_id", "tier id must be a positive integer")
		return 0, 0, false
	}

	return eventID, tierID, true
}

func maskBuyer(b domain.BuyerRecord) domain.BuyerRecord {
	b.NationalID = domain.MaskCPF(b.NationalID)
	b.Phone = domain.MaskPhone(b.Phone)
	return b
}
