package order

import (
	"slices"

	"dispatch/internal/pkg/errs"
)

// Operation names a lifecycle transition.
type Operation string

const (
	OpAccept       Operation = "accept"
	OpConfirm      Operation = "confirm"
	OpQuote        Operation = "quote"
	OpConfirmQuote Operation = "confirm_quote"
	OpStart        Operation = "start"
	OpComplete     Operation = "complete"
	OpPay          Operation = "pay"
	OpRate         Operation = "rate"
	OpCancel       Operation = "cancel"
)

// Party is the kind of actor allowed to perform an operation.
type Party int

const (
	// PartyAnyWorker is any worker; approval is checked against the worker aggregate.
	PartyAnyWorker Party = iota + 1
	// PartyAssignedWorker is the worker recorded on the order.
	PartyAssignedWorker
	// PartyCustomer is the customer who created the order.
	PartyCustomer
	// PartyParticipant is the customer or the assigned worker. Admins act as the system.
	PartyParticipant
)

type transition struct {
	from  []Status
	to    Status
	party Party
}

// transitions is the whole lifecycle graph. Nothing outside this table changes a status.
var transitions = map[Operation]transition{
	OpAccept:       {from: []Status{Pending}, to: Accepted, party: PartyAnyWorker},
	OpConfirm:      {from: []Status{Accepted}, to: Confirmed, party: PartyCustomer},
	OpQuote:        {from: []Status{Confirmed, Quoted}, to: Quoted, party: PartyAssignedWorker},
	OpConfirmQuote: {from: []Status{Quoted}, to: QuoteConfirmed, party: PartyCustomer},
	OpStart:        {from: []Status{QuoteConfirmed}, to: InProgress, party: PartyAssignedWorker},
	OpComplete:     {from: []Status{InProgress}, to: Completed, party: PartyAssignedWorker},
	OpPay:          {from: []Status{Completed}, to: Paid, party: PartyCustomer},
	OpRate:         {from: []Status{Paid}, to: Rated, party: PartyCustomer},
	OpCancel: {
		from:  []Status{Pending, Accepted, Confirmed, Quoted, QuoteConfirmed, InProgress},
		to:    Cancelled,
		party: PartyParticipant,
	},
}

// Operations returns every known operation.
func Operations() []Operation {
	return []Operation{OpAccept, OpConfirm, OpQuote, OpConfirmQuote, OpStart, OpComplete, OpPay, OpRate, OpCancel}
}

// IsValid reports whether the operation is part of the lifecycle.
func (op Operation) IsValid() bool {
	_, ok := transitions[op]
	return ok
}

// Party returns who may perform the operation.
func (op Operation) Party() Party {
	return transitions[op].party
}

// Target returns the status the operation leads to, Unknown for invalid operations.
func (op Operation) Target() Status {
	return transitions[op].to
}

// AllowedFrom lists the predecessor statuses of the operation.
func (op Operation) AllowedFrom() []Status {
	return slices.Clone(transitions[op].from)
}

// Next validates op against the current status and returns the successor.
//
// Returns:
//   - Status: the successor status
//   - error: TransitionIsInvalidError when s is not an allowed predecessor,
//     ValueIsInvalidError for an unknown operation
//
// Example:
//
//	next, err := order.Confirmed.Next(order.OpQuote) // next == order.Quoted
//	_, err = order.Rated.Next(order.OpCancel)        // errs.ErrTransitionIsInvalid
func (s Status) Next(op Operation) (Status, error) {
	t, ok := transitions[op]
	if !ok {
		return Unknown, errs.NewValueIsInvalidError("operation")
	}
	if !slices.Contains(t.from, s) {
		return Unknown, errs.NewTransitionIsInvalidError("order", s.String(), string(op))
	}
	return t.to, nil
}

// Can reports whether op is allowed from s.
func (s Status) Can(op Operation) bool {
	_, err := s.Next(op)
	return err == nil
}
