package errors

import (
	"context"
	stderrors "errors"
)

// As re-exports the standard library matcher so callers need a single errors
// import.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Is re-exports the standard library matcher.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// Code extracts the error code from err's chain, or Unknown for foreign
// errors.
func Code(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code()
	}
	return Unknown
}

// CheckContext returns an error if the context is canceled or timed out.
// This provides a standardized way to check and wrap context errors.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}
