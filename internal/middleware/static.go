package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"dataapi-proxy/internal/config"
)

// routedPrefixes are never looked up on disk so a stray file cannot shadow
// the proxy's own routes.
var routedPrefixes = []string{"/api/", "/healthz", "/proxy/status"}

// StaticSite returns an Echo middleware serving the single-page application
// from cfg.Dir. GET / answers with the index page. With SPAFallback set,
// requests that would otherwise 404 also get the index page. skipPaths are
// further exact paths owned by routes, such as the metrics endpoint.
func StaticSite(cfg config.StaticConfig, skipPaths ...string) echo.MiddlewareFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return echomw.StaticWithConfig(echomw.StaticConfig{
		Skipper: func(c echo.Context) bool {
			if _, ok := skip[c.Request().URL.Path]; ok {
				return true
			}
			return skipStatic(c)
		},
		Root:  cfg.Dir,
		Index: cfg.Index,
		HTML5: cfg.SPAFallback,
	})
}

func skipStatic(c echo.Context) bool {
	req := c.Request()
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return true
	}
	for _, p := range routedPrefixes {
		if strings.HasPrefix(req.URL.Path, p) {
			return true
		}
	}
	return false
}
