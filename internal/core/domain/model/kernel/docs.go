// Package kernel provides the shared value objects of the dispatch domain.
//
// The package includes:
//   - UUID: identifier for orders, workers and customers
//   - Location: a validated latitude/longitude pair with great-circle distance
//   - Role and Actor: the authenticated identity attached to every request and session
//
// All values are immutable. Zero values are invalid and fail Validate, so a value
// that was never built through a constructor cannot leak into an aggregate.
package kernel
