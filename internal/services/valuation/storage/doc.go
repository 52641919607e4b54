// Package storage defines persistence interfaces for stored valuations.
//
// A ValuationRecord keeps the queryable columns of a valuation next to its
// full JSON payload, so listing and filtering never decode payloads.
// Implementations (e.g., SQLite) live in subpackages.
//
// Common error types:
//   - ErrNotFound: requested valuation is missing
package storage
