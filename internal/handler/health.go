package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"dataapi-proxy/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Healthz returns a simple OK response for liveness checks.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status returns proxy status information.
func (h *HealthHandler) Status(c echo.Context) error {
	dataAPI := h.cfg.Upstream.BaseURL
	if u, err := url.Parse(dataAPI); err == nil {
		dataAPI = u.Redacted()
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":          "ok",
		"version":         string(h.version),
		"data_api_url":    dataAPI,
		"data_api_source": h.cfg.Upstream.Source,
		"static_dir":      h.cfg.Static.Dir,
	})
}
