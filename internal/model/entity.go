// Package model defines shared types for the proxy.
package model

import (
	"context"
	"encoding/json"
	"net/http"
)

// EntityRequest is an inbound request for one data API entity.
type EntityRequest struct {
	Ctx      context.Context
	Entity   string
	RawQuery string // inbound query string, forwarded verbatim
	Header   http.Header
}

// EntityResponse is a downstream response that parsed as JSON.
type EntityResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// ErrorBody is the envelope returned to callers when the data API call fails.
type ErrorBody struct {
	Error string `json:"error"`
}
