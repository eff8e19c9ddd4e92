package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"dataapi-proxy/internal/model"
	"dataapi-proxy/internal/service"
)

// ProxyHandler forwards entity requests to the data API.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle serves GET /api/:entity. The downstream JSON body and status are
// relayed unchanged; any failure becomes 502 with {"error": message}.
// Entity names that are not a usable path segment get 404 without a
// downstream call.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	er := &model.EntityRequest{
		Ctx:      req.Context(),
		Entity:   entityParam(c),
		RawQuery: req.URL.RawQuery,
		Header:   req.Header,
	}

	resp, err := h.service.Fetch(er)
	if err != nil {
		return h.writeError(c, er.Entity, err)
	}

	return c.JSONBlob(resp.StatusCode, resp.Body)
}

func (h *ProxyHandler) writeError(c echo.Context, entity string, err error) error {
	attrs := []any{
		"err", err,
		"entity", entity,
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
	}
	var de *service.DownstreamError
	if errors.As(err, &de) {
		attrs = append(attrs, "url", de.URL, "reason", de.Reason)
	}
	if errors.Is(err, service.ErrInvalidEntity) {
		h.logger.Warn("rejected entity", attrs...)
		return c.JSON(http.StatusNotFound, model.ErrorBody{Error: err.Error()})
	}
	h.logger.Error("proxy error", attrs...)

	return c.JSON(http.StatusBadGateway, model.ErrorBody{Error: err.Error()})
}

// entityParam returns the decoded :entity path segment. It may contain "/"
// once decoded; the service re-escapes it as a single segment.
func entityParam(c echo.Context) string {
	raw := c.Param("entity")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}
