package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SnapshotVersion is written into every persisted cart snapshot.
const SnapshotVersion = 1

type CartLine struct {
	EventID         int64           `json:"event_id"`
	TicketTierID    int64           `json:"ticket_tier_id"`
	TicketTypeLabel string          `json:"ticket_type"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	EventTitle      string          `json:"event_title"`
	EventImage      string          `json:"event_image"`
	EventDate       string          `json:"event_date"`
}

// Subtotal is UnitPrice × Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l CartLine) Matches(eventID, tierID int64) bool {
	return l.EventID == eventID && l.TicketTierID == tierID
}

// NewCartLine builds a line from catalog data so that label and price come
// from the event API rather than from the caller.
func NewCartLine(event Event, tier TicketTier, quantity int) CartLine {
	image := ""
	if event.CoverImageURL != nil {
		image = *event.CoverImageURL
	}

	return CartLine{
		EventID:         event.ID,
		TicketTierID:    tier.ID,
		TicketTypeLabel: tier.Name,
		UnitPrice:       tier.Price,
		Quantity:        quantity,
		EventTitle:      event.Name,
		EventImage:      image,
		EventDate:       event.StartsAt,
	}
}

// ExpandedTicket is one attributable unit of a CartLine.
type ExpandedTicket struct {
	TicketTierID    int64  `json:"ticket_tier_id"`
	TicketTypeLabel string `json:"ticket_type"`
	Index           int    `json:"index"`
}

func (t ExpandedTicket) Key() AttendeeKey {
	return AttendeeKey{TierID: t.TicketTierID, Index: t.Index}
}

// ExpandLines returns one ExpandedTicket per unit, in line order then index order.
func ExpandLines(lines []CartLine) []ExpandedTicket {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}

	tickets := make([]ExpandedTicket, 0, total)
	for _, l := range lines {
		for i := 0; i < l.Quantity; i++ {
			tickets = append(tickets, ExpandedTicket{
				TicketTierID:    l.TicketTierID,
				TicketTypeLabel: l.TicketTypeLabel,
				Index:           i,
			})
		}
	}

	return tickets
}

type AttendeeKey struct {
	TierID int64
	Index  int
}

func (k AttendeeKey) String() string {
	return fmt.Sprintf("%d-%d", k.TierID, k.Index)
}

type AttendeeField string

const (
	AttendeeName       AttendeeField = "name"
	AttendeeEmail      AttendeeField = "email"
	AttendeeNationalID AttendeeField = "cpf"
)

type AttendeeRecord struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	NationalID string `json:"cpf"`
}

// Set assigns a single field. Unknown fields return ErrUnknownAttendeeField.
func (a *AttendeeRecord) Set(field AttendeeField, value string) error {
	switch field {
	case AttendeeName:
		a.Name = value
	case AttendeeEmail:
		a.Email = value
	case AttendeeNationalID:
		a.NationalID = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAttendeeField, field)
	}

	return nil
}

func (a AttendeeRecord) trimmed() AttendeeRecord {
	return AttendeeRecord{
		Name:       strings.TrimSpace(a.Name),
		Email:      strings.TrimSpace(a.Email),
		NationalID: strings.TrimSpace(a.NationalID),
	}
}

type BuyerRecord struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	NationalID string `json:"cpf"`
	Phone      string `json:"phone"`
}

func (b BuyerRecord) trimmed() BuyerRecord {
	return BuyerRecord{
		Name:       strings.TrimSpace(b.Name),
		Email:      strings.TrimSpace(b.Email),
		NationalID: strings.TrimSpace(b.NationalID),
		Phone:      strings.TrimSpace(b.Phone),
	}
}

// AsAttendee projects the buyer's identity onto an attendee record.
func (b BuyerRecord) AsAttendee() AttendeeRecord {
	return AttendeeRecord{Name: b.Name, Email: b.Email, NationalID: b.NationalID}
}

// PersistedCartSnapshot is the only cart state written to durable storage.
type PersistedCartSnapshot struct {
	Version int        `json:"version"`
	Lines   []CartLine `json:"lines"`
}

func NewSnapshot(lines []CartLine) PersistedCartSnapshot {
	out := make([]CartLine, len(lines))
	copy(out, lines)

	return PersistedCartSnapshot{Version: SnapshotVersion, Lines: out}
}

// CartState is the read-only view handed to consumers.
type CartState struct {
	Lines      []CartLine      `json:"lines"`
	ItemCount  int             `json:"item_count"`
	Total      decimal.Decimal `json:"total"`
	Loaded     bool            `json:"loaded"`
	Open       bool            `json:"open"`
	Submitting bool            `json:"submitting"`
}

func ItemCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func Total(lines []CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
