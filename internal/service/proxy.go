// Package service implements the entity forwarding logic.
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"dataapi-proxy/internal/client"
	"dataapi-proxy/internal/config"
	"dataapi-proxy/internal/metrics"
	"dataapi-proxy/internal/model"
)

// forwardableRequestHeaders are the only inbound headers passed to the data API.
var forwardableRequestHeaders = []string{
	"Accept-Language",
	"X-Request-Id",
}

const (
	userAgent = "dataapi-proxy/1.0"

	// snippetLen caps how much of a non-JSON body is quoted in the error.
	snippetLen = 200
)

// ErrInvalidEntity is returned for entity names that cannot stand as a
// single path segment under /api.
var ErrInvalidEntity = errors.New("entity must be a single path segment")

// ProxyService forwards entity requests to the data API.
type ProxyService struct {
	client  *client.DataAPIClient
	logger  *slog.Logger
	metrics *metrics.Metrics
	baseURL *url.URL
}

// NewProxyService creates a ProxyService bound to the configured data API URL.
// The metrics parameter is optional.
func NewProxyService(c *client.DataAPIClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*ProxyService, error) {
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse data API base URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	return &ProxyService{
		client:  c,
		logger:  logger.With("component", "proxy_service"),
		metrics: m,
		baseURL: u,
	}, nil
}

// Fetch calls GET <base>/api/<entity>?<query> and returns the downstream
// status and JSON body unaltered. Downstream 4xx and 5xx responses are
// successes as long as the body is JSON. Every other outcome is a
// *DownstreamError.
func (s *ProxyService) Fetch(er *model.EntityRequest) (*model.EntityResponse, error) {
	if !validEntity(er.Entity) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntity, er.Entity)
	}

	target := s.EntityURL(er.Entity, er.RawQuery)
	shown := redactURL(target)

	s.logger.Debug("fetching entity",
		"entity", er.Entity,
		"url", shown,
	)

	resp, err := s.client.Get(er.Ctx, target, s.filterRequestHeaders(er.Header))
	if err != nil {
		return nil, s.fail(shown, classify(err), err)
	}

	if !json.Valid(resp.Body) {
		return nil, s.fail(shown, ReasonInvalidJSON,
			fmt.Errorf("invalid JSON from %s (status %d): %q", shown, resp.StatusCode, snippet(resp.Body)))
	}

	return &model.EntityResponse{
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(resp.Body),
	}, nil
}

// EntityURL returns the data API address for entity with rawQuery attached
// verbatim. The entity is escaped as one segment, so a "/" inside it is sent
// as %2F and never adds path levels.
func (s *ProxyService) EntityURL(entity, rawQuery string) string {
	u := *s.baseURL
	u.Path = s.baseURL.Path + "/api/" + entity
	u.RawPath = s.baseURL.EscapedPath() + "/api/" + url.PathEscape(entity)
	u.RawQuery = rawQuery
	return u.String()
}

// BaseURL returns the data API base address with any password redacted.
func (s *ProxyService) BaseURL() string {
	return s.baseURL.Redacted()
}

func (s *ProxyService) fail(target, reason string, err error) *DownstreamError {
	if s.metrics != nil {
		s.metrics.UpstreamFailures.WithLabelValues(reason).Inc()
	}
	return &DownstreamError{URL: target, Reason: reason, Err: err}
}

func (s *ProxyService) filterRequestHeaders(src http.Header) http.Header {
	dst := make(http.Header)
	for _, key := range forwardableRequestHeaders {
		if vals := src.Values(key); len(vals) > 0 {
			dst[http.CanonicalHeaderKey(key)] = vals
		}
	}
	dst.Set("Accept", "application/json")
	dst.Set("User-Agent", userAgent)
	return dst
}

// validEntity rejects names that dot-segment resolution would collapse.
func validEntity(entity string) bool {
	return entity != "" && entity != "." && entity != ".."
}

func snippet(body []byte) string {
	if len(body) > snippetLen {
		body = body[:snippetLen]
	}
	return string(body)
}

// redactURL hides a password embedded in raw. net/http already strips it
// from transport errors; messages built here must do the same.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
