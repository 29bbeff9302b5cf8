// Package apperr defines errors that carry a business meaning all the way to the HTTP boundary.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a typed error with an HTTP-style status and a machine-readable code.
// Handlers render it as the standard error envelope; anything that is not an *Error
// collapses to INTERNAL_ERROR.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Code + ": " + e.Message + ": " + e.err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.err }

// Is matches two *Error values by code so callers can use errors.Is with the constructors below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

// Wrap returns a copy of e that wraps cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.err = cause
	return &c
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

var (
	Validation              = newError(http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed")
	InvalidID               = newError(http.StatusBadRequest, "INVALID_ID", "invalid id format")
	UnknownSubject          = newError(http.StatusBadRequest, "UNKNOWN_SUBJECT", "There is no subject with that id")
	DocumentAlreadyExists   = newError(http.StatusConflict, "DOCUMENT_ALREADY_EXISTS", "There is already a document with these characteristics")
	DocumentNotFound        = newError(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
	DownloadFailed          = newError(http.StatusBadGateway, "DOWNLOAD_FILE_ERROR", "Error downloading file")
	DownloadTimeout         = newError(http.StatusGatewayTimeout, "DOWNLOAD_TIMEOUT", "Downloading the file timed out, try again later")
	InvalidStatusTransition = newError(http.StatusConflict, "INVALID_STATUS_TRANSITION", "The requested status change is not allowed")
	Conflict                = newError(http.StatusConflict, "CONFLICT", "The document was modified concurrently, reload and retry")
	OCREnqueueFailed        = newError(http.StatusBadGateway, "OCR_ENQUEUE_FAILED", "The document could not be queued for OCR")
	Unauthorized            = newError(http.StatusUnauthorized, "UNAUTHORIZED", "User is not authenticated")
	Forbidden               = newError(http.StatusForbidden, "FORBIDDEN", "User is not authorized")
	Internal                = newError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
