package errors

import (
	"errors"

	"github.com/louisbranch/appraisal/internal/platform/errors/i18n"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultLocale renders messages when the caller names no locale.
const DefaultLocale = "en-US"

// HandleError converts err into the gRPC status returned to clients. Errors
// that already carry a status pass through; unclassified errors become an
// opaque Internal status so storage details never reach callers.
func HandleError(err error, locale string) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	appErr, ok := asError(err)
	if !ok {
		return status.Error(codes.Internal, "an unexpected error occurred")
	}
	catalog := i18n.GetCatalog(orDefault(locale))
	return appErr.ToGRPCStatus(catalog.Locale(), catalog.Format(string(appErr.Code), appErr.Metadata))
}

// LocalizedMessage renders the user-facing text of err in locale. Errors
// without a code render their own text.
func LocalizedMessage(err error, locale string) string {
	appErr, ok := asError(err)
	if !ok {
		return err.Error()
	}
	return i18n.GetCatalog(orDefault(locale)).Format(string(appErr.Code), appErr.Metadata)
}

// GetCode returns the code of err, or CodeUnknown.
func GetCode(err error) Code {
	if appErr, ok := asError(err); ok {
		return appErr.Code
	}
	return CodeUnknown
}

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata returns the message metadata of err, if any.
func GetMetadata(err error) map[string]string {
	if appErr, ok := asError(err); ok {
		return appErr.Metadata
	}
	return nil
}

func asError(err error) (*Error, bool) {
	var appErr *Error
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func orDefault(locale string) string {
	if locale == "" {
		return DefaultLocale
	}
	return locale
}
