package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
//	pending ─accept─> accepted ─confirm─> confirmed ─quote─> quoted ─confirm_quote─> quote_confirmed
//	                                                         ^   │
//	                                                         └───┘ (re-quote)
//	quote_confirmed ─start─> in_progress ─complete─> completed ─pay─> paid ─rate─> rated
//
//	pending, accepted, confirmed, quoted, quote_confirmed, in_progress ─cancel─> cancelled
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Pending
	Accepted
	Confirmed
	Quoted
	QuoteConfirmed
	InProgress
	Completed
	Paid
	Rated
	Cancelled
)

var statusNames = map[Status]string{
	Unknown:        "unknown",
	Pending:        "pending",
	Accepted:       "accepted",
	Confirmed:      "confirmed",
	Quoted:         "quoted",
	QuoteConfirmed: "quote_confirmed",
	InProgress:     "in_progress",
	Completed:      "completed",
	Paid:           "paid",
	Rated:          "rated",
	Cancelled:      "cancelled",
}

// ParseStatus maps a persisted status name back to a Status.
//
// Parameters:
//   - s: one of the snake_case names produced by String
//
// Returns:
//   - Status: the matching status
//   - error: ValueIsInvalidError for unknown names, including "unknown"
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persistent snake_case name, "unknown" for invalid values.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// MarshalText encodes the status by name for JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsActive reports whether a worker is currently committed to the order.
// A worker has at most one order in an active status.
func (s Status) IsActive() bool {
	switch s {
	case Accepted, Confirmed, Quoted, QuoteConfirmed, InProgress:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition at all leaves the status.
func (s Status) IsTerminal() bool {
	return s == Rated || s == Cancelled
}

// HasWorker reports whether an order in this status must reference a worker.
// Cancelled is excluded: a cancelled order keeps its worker only if it had been accepted.
func (s Status) HasWorker() bool {
	return s.IsActive() || s == Completed || s == Paid || s == Rated
}

// ActiveStatuses lists the statuses in which a worker is committed to an order.
func ActiveStatuses() []Status {
	return []Status{Accepted, Confirmed, Quoted, QuoteConfirmed, InProgress}
}
