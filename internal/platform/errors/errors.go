package errors

import (
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
)

// Domain is the ErrorInfo domain of every valuation error.
const Domain = "github.com/louisbranch/appraisal"

// Error is a valuation error with a machine-readable code. Message is the
// internal text; the user-facing text is rendered from Code and Metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	// Violations lists the individual input problems behind the error.
	Violations []string
	Cause      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates an error whose localized text uses metadata.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates an error around cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// InvalidAttributes reports property attributes that failed validation.
func InvalidAttributes(violations []string) *Error {
	joined := strings.Join(violations, "; ")
	return &Error{
		Code:       CodeInvalidAttributes,
		Message:    "invalid attributes: " + joined,
		Metadata:   map[string]string{"Errors": joined},
		Violations: violations,
	}
}

// ValuationNotFound reports a missing stored valuation.
func ValuationNotFound(id string, cause error) *Error {
	return &Error{
		Code:     CodeValuationNotFound,
		Message:  "valuation not found: " + id,
		Metadata: map[string]string{"ValuationID": id},
		Cause:    cause,
	}
}

// InvalidListArgument reports a rejected listing argument. key names the
// metadata field the localized message expects (Filter, OrderBy).
func InvalidListArgument(code Code, key, value string, cause error) *Error {
	message := string(code)
	if cause != nil {
		message = cause.Error()
	}
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: map[string]string{key: value},
		Cause:    cause,
	}
}

// ToGRPCStatus converts the error to a gRPC status. The status message is the
// internal message; userMessage travels as a LocalizedMessage detail and
// violations as BadRequest field violations.
func (e *Error) ToGRPCStatus(locale string, userMessage string) error {
	grpcCode := e.Code.GRPCCode()
	details := []protoadapt.MessageV1{
		&errdetails.ErrorInfo{
			Reason:   string(e.Code),
			Domain:   Domain,
			Metadata: e.Metadata,
		},
		&errdetails.LocalizedMessage{
			Locale:  locale,
			Message: userMessage,
		},
	}
	if len(e.Violations) > 0 {
		badRequest := &errdetails.BadRequest{}
		for _, violation := range e.Violations {
			badRequest.FieldViolations = append(badRequest.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       "attributes",
				Description: violation,
			})
		}
		details = append(details, badRequest)
	}

	st, err := status.New(grpcCode, e.Message).WithDetails(details...)
	if err != nil {
		return status.New(grpcCode, e.Message).Err()
	}
	return st.Err()
}
