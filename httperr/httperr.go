// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

// Package httperr provides error types carrying HTTP status codes, used to
// classify remote source responses without losing the original cause.
package httperr

import (
	"errors"
	"net/http"
)

// CodedError wraps an error with the HTTP status code of the response that
// produced it. This lets adapters decide downstream whether a failure means
// "no data" (not found, access denied) or a transient fault (rate limit,
// server error) without string matching.
type CodedError struct {
	err  error
	code int
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As() compatibility.
func (e *CodedError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *CodedError) HTTPCode() int {
	return e.code
}

// WithCode wraps an error with an HTTP status code.
// If err is nil, WithCode returns nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodedError{err: err, code: code}
}

// New creates a new error with the given message and HTTP status code.
func New(message string, code int) error {
	return &CodedError{err: errors.New(message), code: code}
}

// Code extracts the HTTP status code from an error chain.
// If no CodedError is found, it returns http.StatusInternalServerError.
func Code(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.code
	}

	return http.StatusInternalServerError
}

// IsNotFound reports whether the error chain carries a 404 status.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsDenied reports whether the error chain carries a 401 or 403 status.
func IsDenied(err error) bool {
	return hasCode(err, http.StatusUnauthorized) || hasCode(err, http.StatusForbidden)
}

// IsRateLimited reports whether the error chain carries a 429 status.
func IsRateLimited(err error) bool {
	return hasCode(err, http.StatusTooManyRequests)
}

// IsAbsence reports whether the error represents absence of data rather than
// a fault: not found, or a deliberate access denial. Adapters collapse both
// to "no candidate".
func IsAbsence(err error) bool {
	return IsNotFound(err) || IsDenied(err)
}

func hasCode(err error, code int) bool {
	var coded *CodedError
	return errors.As(err, &coded) && coded.code == code
}
