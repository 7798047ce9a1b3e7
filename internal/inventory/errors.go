package inventory

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork means the request never produced a response.
	ErrNetwork = errors.New("inventory service unreachable")
	// ErrDecode means the response body was not the expected JSON.
	ErrDecode = errors.New("inventory response not decodable")
	// ErrServerRejected means the service answered with a non-2xx status.
	ErrServerRejected = errors.New("inventory service rejected request")
	// ErrInvalidInput means a form could not be mapped to a payload.
	ErrInvalidInput = errors.New("invalid item input")
)

// RejectedError carries the status of a non-2xx response. It matches
// ErrServerRejected under errors.Is.
type RejectedError struct {
	Op     string
	Status int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s (%d %s)", e.Op, ErrServerRejected, e.Status, http.StatusText(e.Status))
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrServerRejected
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Status
	}
	return 0
}
