// Package services provides domain services that work across the order and worker
// aggregates.
//
// The package includes:
//   - DispatchMatcher: ranks eligible workers for an order by great-circle distance,
//     and ranks pending orders around a worker for the nearby-orders browse
//
// The matcher is pure: it reads the aggregates it is given and never mutates them.
// Choosing a winner is left to the workers themselves through acceptance.
package services
