// Package client provides the downstream HTTP client for the data API.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"dataapi-proxy/internal/config"
	"dataapi-proxy/internal/metrics"
)

// ErrResponseTooLarge is returned when the downstream body exceeds the configured limit.
var ErrResponseTooLarge = errors.New("downstream response exceeds size limit")

// Response is a fully read downstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DataAPIClient sends requests to the downstream data API.
type DataAPIClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	maxBody    int64
}

// NewDataAPIClient creates a DataAPIClient with connection pooling and timeouts.
// The metrics parameter is optional; pass nil to disable upstream metrics recording.
func NewDataAPIClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *DataAPIClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &DataAPIClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		},
		logger:  logger.With("component", "dataapi_client"),
		metrics: m,
		maxBody: cfg.Upstream.MaxResponseBytes,
	}
}

// Get issues a GET against url and reads the whole response body.
// The provided context controls the lifetime of the downstream request:
// when the caller disconnects, the downstream request is canceled too.
func (c *DataAPIClient) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build downstream request: %w", err)
	}
	if header != nil {
		req.Header = header
	}

	c.logger.Debug("downstream request", "url", url)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(time.Since(start), "error")
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := c.readBody(resp.Body)
	c.observe(time.Since(start), strconv.Itoa(resp.StatusCode))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// readBody reads r fully, failing once more than maxBody bytes arrive.
// A zero limit means unbounded.
func (c *DataAPIClient) readBody(r io.Reader) ([]byte, error) {
	if c.maxBody > 0 {
		r = io.LimitReader(r, c.maxBody+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read downstream body: %w", err)
	}
	if c.maxBody > 0 && int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxBody)
	}
	return body, nil
}

func (c *DataAPIClient) observe(d time.Duration, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamDuration.WithLabelValues(http.MethodGet).Observe(d.Seconds())
	c.metrics.UpstreamResponses.WithLabelValues(http.MethodGet, status).Inc()
}
