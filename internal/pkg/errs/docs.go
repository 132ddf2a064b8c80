// Package errs provides standardized error types for the dispatch application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ValueIsOutOfRangeError: For when a value falls outside its bounds
//   - ObjectNotFoundError: For when an object cannot be found
//   - NotAuthorizedError: For when the caller's role or ownership does not permit an operation
//   - TransitionIsInvalidError: For when an aggregate's current state excludes an operation
//   - AlreadyAssignedError: For when an order was accepted by someone else first
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// The first three types form the validation family; IsValidation reports membership so
// transport adapters can map the whole family to a single caller-fixable response.
package errs
