package service

import (
	"context"
	"errors"

	"dataapi-proxy/internal/client"
)

// Failure reasons, used as metric labels and log attributes.
const (
	ReasonTransport   = "transport"
	ReasonTimeout     = "timeout"
	ReasonCanceled    = "canceled"
	ReasonTooLarge    = "too_large"
	ReasonInvalidJSON = "invalid_json"
)

// DownstreamError reports a data API call that produced no usable JSON
// response. Callers answer it with 502 and the error text.
type DownstreamError struct {
	URL    string
	Reason string
	Err    error
}

func (e *DownstreamError) Error() string {
	return e.Err.Error()
}

func (e *DownstreamError) Unwrap() error {
	return e.Err
}

// classify maps a client error to a failure reason.
func classify(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, client.ErrResponseTooLarge):
		return ReasonTooLarge
	}
	var t interface{ Timeout() bool }
	if errors.As(err, &t) && t.Timeout() {
		return ReasonTimeout
	}
	return ReasonTransport
}
