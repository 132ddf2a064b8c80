package order

import (
	"dispatch/internal/pkg/errs"
)

// Priority expresses how urgently the customer needs a worker.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityUrgent    Priority = "urgent"
	PriorityEmergency Priority = "emergency"
)

// ParsePriority converts a raw priority. An empty string means PriorityNormal.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	p := Priority(s)
	if p.Rank() == 0 {
		return "", errs.NewValueIsInvalidError("priority")
	}
	return p, nil
}

// Rank orders priorities: normal 1, urgent 2, emergency 3, 0 for unknown values.
func (p Priority) Rank() int {
	switch p {
	case PriorityNormal:
		return 1
	case PriorityUrgent:
		return 2
	case PriorityEmergency:
		return 3
	default:
		return 0
	}
}

// IsElevated is true for urgent and emergency orders, which prefer emergency-capable workers.
func (p Priority) IsElevated() bool {
	return p.Rank() >= PriorityUrgent.Rank()
}

func (p Priority) String() string {
	return string(p)
}

// CancelledBy records which party cancelled an order.
type CancelledBy string

const (
	CancelledByCustomer CancelledBy = "customer"
	CancelledByWorker   CancelledBy = "worker"
	CancelledBySystem   CancelledBy = "system"
)
