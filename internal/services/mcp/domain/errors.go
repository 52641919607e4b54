package domain

import (
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
)

// callError reports a failed valuation call with the service's user-facing
// message.
type callError struct {
	op  string
	err error
}

func newCallError(op string, err error) error {
	return &callError{op: op, err: err}
}

func (e *callError) Error() string {
	return e.op + " failed: " + statusMessage(e.err)
}

func (e *callError) Unwrap() error {
	return e.err
}

// statusMessage prefers the localized detail of a gRPC status over its raw
// message.
func statusMessage(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return err.Error()
	}
	for _, detail := range st.Details() {
		if localized, ok := detail.(*errdetails.LocalizedMessage); ok && localized.GetMessage() != "" {
			return localized.GetMessage()
		}
	}
	return st.Message()
}
