// Package app composes the valuation pipeline.
//
// A Pipeline validates raw attributes, evaluates them with the rule engine,
// collects predictions, blends the expert and predicted prices and, when a
// store is configured, records the result. Transports and the CLI call the
// pipeline; they never reach the domain packages directly.
package app
