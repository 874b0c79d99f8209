package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned when the server rejects the session credential.
// The session has already been cleared when a caller sees it.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidCredentials is returned when login is rejected.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError is a local input error. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Unsupported returns a ValidationError for an operation the API lacks.
func Unsupported(op string) error {
	return &ValidationError{Message: op + " is not supported"}
}

// NetworkError means no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerRejected is a non-2xx response. Message is the server's text, verbatim.
type ServerRejected struct {
	Status  int
	Message string
}

func (e *ServerRejected) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

// IsNotFound reports whether err is a 404 rejection.
func IsNotFound(err error) bool {
	var rej *ServerRejected
	return errors.As(err, &rej) && rej.Status == http.StatusNotFound
}

// IsConflict reports whether err is a 409 rejection.
func IsConflict(err error) bool {
	var rej *ServerRejected
	return errors.As(err, &rej) && rej.Status == http.StatusConflict
}

// IsValidation reports whether err is a local validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// NetworkRetryMessage is shown for failures that carry no server detail.
const NetworkRetryMessage = "network error, please check your connection and try again"

// SessionExpiredMessage is shown when the credential was rejected.
const SessionExpiredMessage = "session expired or not logged in"

// UserMessage returns the text to show the user for err.
// Validation and server messages pass through verbatim.
func UserMessage(err error) string {
	var (
		v   *ValidationError
		rej *ServerRejected
		ne  *NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return SessionExpiredMessage
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials.Error()
	case errors.As(err, &v):
		return v.Message
	case errors.As(err, &rej):
		return rej.Error()
	case errors.As(err, &ne):
		return NetworkRetryMessage
	}
	return err.Error()
}
