package api

import (
	"errors"
	"fmt"
)

// Error is a server rejection: the request reached the API and came
// back with a non-2xx status. Message holds the server-supplied text
// verbatim so it can be shown to the user unmodified.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NetworkError means no response was received at all. It is never
// conflated with a server rejection; callers surface it as a generic
// retry-suggesting message.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusOf returns the HTTP status of a server rejection, or 0 when
// err is not one.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}
