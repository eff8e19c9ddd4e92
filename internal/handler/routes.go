// Package handler holds the HTTP handlers and route table.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dataapi-proxy/internal/config"
	"dataapi-proxy/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
// The static site is served by middleware, not by a route.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, m *metrics.Metrics, proxy *ProxyHandler, health *HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	// HEAD is answered with the GET status; the server drops the body.
	e.Match([]string{http.MethodGet, http.MethodHead}, "/api/:entity", proxy.Handle)

	if cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	}
}
