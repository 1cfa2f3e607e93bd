package domain

import (
	"errors"
	"fmt"
)

// DefaultCheckoutFailureMessage is surfaced when the order API gives no message.
const DefaultCheckoutFailureMessage = "Erro ao processar pedido."

var (
	ErrCrossEventConflict   = errors.New("cart already holds tickets for another event")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrSubmissionInFlight   = errors.New("checkout submission already in progress")
	ErrSnapshotNotFound     = errors.New("cart snapshot not found")
	ErrCorruptSnapshot      = errors.New("cart snapshot is corrupt")
	ErrUnknownAttendeeField = errors.New("unknown attendee field")
	ErrTierNotFound         = errors.New("ticket tier not found")
	ErrUpstreamUnavailable  = errors.New("order api temporarily unavailable")
)

type CrossEventConflictError struct {
	CartEventID      int64
	RequestedEventID int64
}

func (e *CrossEventConflictError) Error() string {
	return fmt.Sprintf("cart holds event %d, cannot add event %d", e.CartEventID, e.RequestedEventID)
}

func (e *CrossEventConflictError) Is(target error) bool {
	return target == ErrCrossEventConflict
}

// ValidationError names the first missing or invalid field of a checkout.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// CheckoutFailedError wraps a failed remote submission. Message is safe to
// show to the buyer.
type CheckoutFailedError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *CheckoutFailedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("checkout failed (status %d): %s", e.StatusCode, e.Message)
	}
	return "checkout failed: " + e.Message
}

func (e *CheckoutFailedError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the external order API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("order api: status %d: %s", e.StatusCode, e.Message)
}

// NewCheckoutFailed converts a transport error into a CheckoutFailedError,
// keeping the server's message when there is one.
func NewCheckoutFailed(err error) *CheckoutFailedError {
	failed := &CheckoutFailedError{Message: DefaultCheckoutFailureMessage, Err: err}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		failed.StatusCode = apiErr.StatusCode
		if apiErr.Message != "" {
			failed.Message = apiErr.Message
		}
	}

	return failed
}
