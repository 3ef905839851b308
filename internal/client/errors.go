package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// StatusError represents a non-2xx response from a processing endpoint.
type StatusError struct {
	StatusCode int
	Message    string
	RequestID  string
	Endpoint   string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		if e.RequestID != "" {
			return fmt.Sprintf("processing error: status=%d request_id=%s message=%s", e.StatusCode, e.RequestID, e.Message)
		}
		return fmt.Sprintf("processing error: status=%d message=%s", e.StatusCode, e.Message)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("processing error: status=%d request_id=%s", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("processing error: status=%d", e.StatusCode)
}

// TransportError indicates the request never produced a usable response:
// connection failures, timeouts, or a body that could not be read.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport failure"
	}
	if e.Endpoint != "" {
		return fmt.Sprintf("endpoint unreachable at %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("endpoint unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline or client timeout.
func (e *TransportError) Timeout() bool {
	if e == nil || e.Err == nil {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(e.Err, &nerr) && nerr.Timeout()
}

// ResponseTooLargeError is returned when a body exceeds the configured cap.
type ResponseTooLargeError struct {
	Limit int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("response exceeds %d bytes", e.Limit)
}
