// Package worker provides the Worker aggregate: an electrician who can be matched
// to orders.
//
// The package includes:
//   - Worker: identity, availability, verification, last known location, eligibility
//     filters (specialties, emergency capability, minimum order amount) and job statistics
//   - WorkStatus and VerificationStatus: the two independent state dimensions of a worker
//
// Key business rules:
//   - New workers start offline and pending verification
//   - Only approved workers can become available or accept orders
//   - A worker is busy if and only if exactly one active order references them
//   - A busy worker cannot change their own work status; completing or cancelling the
//     active order releases them
package worker
