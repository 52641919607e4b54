// Package report renders valuations as CSV, JSON or a localized text
// summary.
package report
