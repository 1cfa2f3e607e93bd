package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPix    PaymentMethod = "pix"
	PaymentBoleto PaymentMethod = "boleto"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentPix, PaymentBoleto:
		return true
	}
	return false
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
}

type CheckoutItem struct {
	TicketTierID int64            `json:"ticket_tier_id"`
	Quantity     int              `json:"quantity"`
	Attendees    []AttendeeRecord `json:"attendees"`
}

// CheckoutSubmission is the body of POST /public/checkout.
type CheckoutSubmission struct {
	EventID       int64          `json:"event_id"`
	Customer      Customer       `json:"customer"`
	Items         []CheckoutItem `json:"items"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	CouponCode    string         `json:"coupon_code,omitempty"`
}

// TicketCount is the number of attendee-bound tickets requested.
func (s CheckoutSubmission) TicketCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// BuildSubmission validates buyer and attendee data against the cart lines
// and derives the outbound request. The first violation is returned as a
// *ValidationError.
func BuildSubmission(lines []CartLine, buyer BuyerRecord, method PaymentMethod, coupon string, attendeesByTier map[int64][]AttendeeRecord) (CheckoutSubmission, error) {
	if len(lines) == 0 {
		return CheckoutSubmission{}, &ValidationError{Field: "cart", Message: "cart is empty"}
	}

	b := buyer.trimmed()
	required := []struct {
		field string
		value string
	}{
		{"customer.name", b.Name},
		{"customer.email", b.Email},
		{"customer.cpf", b.NationalID},
		{"customer.phone", b.Phone},
	}
	for _, r := range required {
		if r.value == "" {
			return CheckoutSubmission{}, &ValidationError{Field: r.field, Message: "is required"}
		}
	}

	if !method.Valid() {
		return CheckoutSubmission{}, &ValidationError{Field: "payment_method", Message: fmt.Sprintf("unsupported payment method %q", method)}
	}

	inCart := make(map[int64]bool, len(lines))
	items := make([]CheckoutItem, 0, len(lines))

	for _, l := range lines {
		inCart[l.TicketTierID] = true
		given := attendeesByTier[l.TicketTierID]

		attendees := make([]AttendeeRecord, 0, l.Quantity)
		for i := 0; i < l.Quantity; i++ {
			prefix := fmt.Sprintf("items[%d].attendees[%d]", l.TicketTierID, i)
			if i >= len(given) {
				return CheckoutSubmission{}, &ValidationError{
					Field:   prefix,
					Message: fmt.Sprintf("missing attendee for %s ticket #%d", l.TicketTypeLabel, i+1),
				}
			}

			a := given[i].trimmed()
			switch {
			case a.Name == "":
				return CheckoutSubmission{}, &ValidationError{Field: prefix + ".name", Message: "is required"}
			case a.Email == "":
				return CheckoutSubmission{}, &ValidationError{Field: prefix + ".email", Message: "is required"}
			case a.NationalID == "":
				return CheckoutSubmission{}, &ValidationError{Field: prefix + ".cpf", Message: "is required"}
			}
			attendees = append(attendees, a)
		}

		if len(given) > l.Quantity {
			return CheckoutSubmission{}, &ValidationError{
				Field:   fmt.Sprintf("items[%d].attendees", l.TicketTierID),
				Message: fmt.Sprintf("expected %d attendees, got %d", l.Quantity, len(given)),
			}
		}

		items = append(items, CheckoutItem{
			TicketTierID: l.TicketTierID,
			Quantity:     l.Quantity,
			Attendees:    attendees,
		})
	}

	for tierID, given := range attendeesByTier {
		if !inCart[tierID] && len(given) > 0 {
			return CheckoutSubmission{}, &ValidationError{
				Field:   fmt.Sprintf("items[%d].attendees", tierID),
				Message: "ticket tier is not in the cart",
			}
		}
	}

	return CheckoutSubmission{
		EventID: lines[0].EventID,
		Customer: Customer{
			Name:  b.Name,
			Email: b.Email,
			CPF:   b.NationalID,
			Phone: b.Phone,
		},
		Items:         items,
		PaymentMethod: method,
		CouponCode:    coupon,
	}, nil
}

type OrderEvent struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	CoverImageURL *string `json:"cover_image_url"`
	StartsAt      string  `json:"starts_at"`
	VenueName     string  `json:"venue_name"`
	VenueCity     string  `json:"venue_city"`
}

type OrderStatus struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type OrderItem struct {
	TicketTierName string          `json:"ticket_tier_name"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type IssuedTicket struct {
	Hash        string `json:"hash"`
	TierName    string `json:"tier_name"`
	HolderName  string `json:"holder_name"`
	HolderEmail string `json:"holder_email"`
	Status      string `json:"status"`
}

// Order is the server-confirmed order. It is authoritative once returned.
type Order struct {
	Hash              string          `json:"hash"`
	Event             OrderEvent      `json:"event"`
	Status            OrderStatus     `json:"status"`
	Items             []OrderItem     `json:"items"`
	IssuedTickets     []IssuedTicket  `json:"issued_tickets"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	Total             decimal.Decimal `json:"total"`
	PaymentMethod     string          `json:"payment_method"`
	CouponCode        *string         `json:"coupon_code"`
	BillingName       string          `json:"billing_name"`
	BillingEmail      string          `json:"billing_email"`
	BillingPhone      *string         `json:"billing_phone"`
	BillingDocument   string          `json:"billing_document"`
	PaidAt            *string         `json:"paid_at"`
	CreatedAt         string          `json:"created_at"`
	RefundStatus      *string         `json:"refund_status"`
	RefundRequestedAt *string         `json:"refund_requested_at"`
}

// OrderConfirmed is published after a successful checkout.
type OrderConfirmed struct {
	MessageID     string          `json:"message_id"`
	SessionID     string          `json:"session_id"`
	OrderHash     string          `json:"order_hash"`
	EventID       int64           `json:"event_id"`
	TicketCount   int             `json:"ticket_count"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	BuyerEmail    string          `json:"buyer_email"`
	ConfirmedAt   time.Time       `json:"confirmed_at"`
}

type CouponValidation struct {
	Valid    bool             `json:"valid"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
	Message  string           `json:"message,omitempty"`
}
