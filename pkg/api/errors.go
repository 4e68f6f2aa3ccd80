package api

import (
	"errors"
	"fmt"
)

// ErrorKind is a coarse classification of client failures.
type ErrorKind string

const (
	// KindTransport covers connection failures, timeouts and cancellation.
	KindTransport ErrorKind = "transport"
	// KindStatus is a response outside the 2xx range.
	KindStatus ErrorKind = "status"
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode ErrorKind = "decode"
	// KindEncode is a request payload that could not be encoded.
	KindEncode ErrorKind = "encode"
)

// Error wraps a failed API call with the operation and classification.
type Error struct {
	Op     string
	Kind   ErrorKind
	Status int
	// Detail is the "detail" member of an error body, when present.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("api: %s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		base += fmt.Sprintf(" (status=%d)", e.Status)
	}
	if e.Detail != "" {
		base += fmt.Sprintf(": %s", e.Detail)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}
