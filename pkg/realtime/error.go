package realtime

import (
	"errors"
	"fmt"
)

// Error codes reported by this package.
const (
	// CodeAuthFailure means the credential endpoint was unreachable,
	// rejected the request, or issued an unusable credential.
	CodeAuthFailure = "auth_failure"

	// CodeConfigurationFailure means the credential endpoint reports
	// that no issuing key is configured server-side.
	CodeConfigurationFailure = "configuration_failure"

	// CodeSignalingFailure means the offer/answer exchange did not
	// complete with a success status.
	CodeSignalingFailure = "signaling_failure"
)

// Error is a structured failure from the realtime layer or the remote
// endpoint.
type Error struct {
	// Type is the error type reported by the remote endpoint, if any.
	Type string `json:"type,omitempty"`

	// Code classifies the failure.
	Code string `json:"code,omitempty"`

	// Message is the human-readable error message.
	Message string `json:"message,omitempty"`

	// HTTPStatus is the HTTP status code, if applicable.
	HTTPStatus int `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Code, e.Message)
	}
	if e.Type != "" {
		return fmt.Sprintf("realtime: %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("realtime: %s", e.Message)
}

// IsCode reports whether err is (or wraps) an Error with the given
// code.
func IsCode(err error, code string) bool {
	var re *Error
	return errors.As(err, &re) && re.Code == code
}

// EventError carries error details from an "error" protocol event.
type EventError struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Param   string `json:"param,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// ToError converts an EventError to an Error.
func (e *EventError) ToError() *Error {
	return &Error{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
	}
}
