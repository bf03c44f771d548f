package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds used across the service. Handlers translate these to HTTP
// statuses in exactly one place; everything below the boundary works with
// codes, not statuses.
const (
	CodeValidation     = "validation_error"
	CodeModelTransport = "model_transport_error"
	CodeInvalidOutput  = "invalid_model_output"
	CodeUpstreamData   = "upstream_data_error"
	CodeInternal       = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(err error) *Error {
	return New(http.StatusBadRequest, CodeValidation, err)
}

func Validationf(format string, args ...any) *Error {
	return Validation(fmt.Errorf(format, args...))
}

func ModelTransport(err error) *Error {
	return New(http.StatusBadGateway, CodeModelTransport, err)
}

func InvalidOutput(err error) *Error {
	return New(http.StatusUnprocessableEntity, CodeInvalidOutput, err)
}

func InvalidOutputf(format string, args ...any) *Error {
	return InvalidOutput(fmt.Errorf(format, args...))
}

func UpstreamData(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeUpstreamData, err)
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// From returns err as an *Error, wrapping unclassified errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Is reports whether err carries the given kind code.
func Is(err error, code string) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
