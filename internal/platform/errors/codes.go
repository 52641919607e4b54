// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Valuation errors
	CodeInvalidAttributes Code = "VALUATION_INVALID_ATTRIBUTES"
	CodeInvalidEstimate   Code = "VALUATION_INVALID_ESTIMATE"
	CodeValuationNotFound Code = "VALUATION_NOT_FOUND"

	// Listing errors
	CodeInvalidFilter    Code = "VALUATION_INVALID_FILTER"
	CodeInvalidOrder     Code = "VALUATION_INVALID_ORDER"
	CodeInvalidPageToken Code = "VALUATION_INVALID_PAGE_TOKEN"

	// Storage errors
	CodeStoreUnavailable Code = "VALUATION_STORE_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidAttributes,
		CodeInvalidEstimate,
		CodeInvalidFilter,
		CodeInvalidOrder,
		CodeInvalidPageToken:
		return codes.InvalidArgument

	// NotFound - resource doesn't exist
	case CodeValuationNotFound:
		return codes.NotFound

	// FailedPrecondition - the service runs without history
	case CodeStoreUnavailable:
		return codes.FailedPrecondition

	default:
		return codes.Internal
	}
}
