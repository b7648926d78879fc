/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error
interface and carries a business code, a client-facing message, and an HTTP status
code for unified error reporting over both the HTTP and WebSocket surfaces.
*/
package errs

import (
	"fmt"
	"net/http"

	"roomchat/internal/pkg/logx"
)

// CustomError is the error structure used throughout the application.
// Every error in this server is recoverable and scoped to a single request:
// the worst outcome of any malformed event is one failed acknowledgment.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the client-facing error description. For WebSocket events
	// this exact string is delivered through the acknowledgment channel.
	Message string

	// Status is the HTTP status code used when the error is reported over
	// the REST surface.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError constructs a *CustomError from a predefined error code.
// Unknown codes fall back to ErrUnknown so a bad call site can never
// surface an empty error to a client.
func NewError(code int) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with a code missing from errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
			Status:  unknownErr.Status,
		}
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	return &customErr
}
