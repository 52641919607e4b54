// Package sqlite provides a SQLite-backed valuation store.
//
// Valuations are written once and never updated. The indexed columns carry
// the fields that listings filter and order on; the payload column holds the
// complete JSON valuation returned to callers.
package sqlite
