// Package order provides the Order aggregate and the lifecycle state machine of a
// repair order, from a customer request to a rated, paid job.
//
// The package includes:
//   - Order: the aggregate root carrying identity, job details, amounts and the timeline
//   - Status: the lifecycle state with its persistent names
//   - Operation: the single transition table (predecessors, successor, required party)
//   - Priority and CancelledBy: small value types used by dispatch and cancellation
//
// Key business rules:
//   - An order is assigned to at most one worker and is never reassigned
//   - A worker is recorded if and only if the order has been accepted
//   - Every transition is validated against the table before any field changes
//   - Rated and cancelled orders accept no further transitions; paid orders can only be rated
//
// Transitions only mutate the in-memory aggregate. The conditional write that makes
// acceptance race-free lives in the repository.
package order
