package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"dataapi-proxy/internal/config"
)

const indexHTML = `<!doctype html><html><body><div id="root"></div></body></html>`

// newSite writes a minimal site into a temp dir and returns an Echo instance
// serving it, with an /api/:entity route registered alongside.
func newSite(t *testing.T, spaFallback bool) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":      indexHTML,
		"app.jsx":         "const App = () => null;",
		"api/Product":     "shadow",
		"css/site.css":    "body{}",
		"nested/x/y.json": `{"y":true}`,
	}
	for name, body := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	e := echo.New()
	e.Use(StaticSite(config.StaticConfig{Dir: dir, Index: "index.html", SPAFallback: spaFallback}))
	e.GET("/api/:entity", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"entity": c.Param("entity")})
	})
	return e
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStaticSite_RootServesIndex(t *testing.T) {
	e := newSite(t, false)
	rec := get(e, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != indexHTML {
		t.Errorf("body = %q, want index.html contents", rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestStaticSite_Assets(t *testing.T) {
	e := newSite(t, false)

	tests := []struct {
		path string
		want string
	}{
		{"/app.jsx", "const App = () => null;"},
		{"/css/site.css", "body{}"},
		{"/nested/x/y.json", `{"y":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(e, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if rec.Body.String() != tt.want {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestStaticSite_APINotShadowed(t *testing.T) {
	e := newSite(t, false)
	rec := get(e, "/api/Product")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"entity":"Product"`) {
		t.Errorf("body = %q, want the API handler response", rec.Body.String())
	}
}

func TestStaticSite_SkipPathNotShadowed(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"index.html": indexHTML, "metrics": "stale file"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	e := echo.New()
	e.Use(StaticSite(config.StaticConfig{Dir: dir, Index: "index.html"}, "/metrics"))
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "# exposition")
	})

	rec := get(e, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "# exposition" {
		t.Errorf("body = %q, want the route response", rec.Body.String())
	}

	// Files next to the skipped path are still served.
	if rec := get(e, "/"); rec.Body.String() != indexHTML {
		t.Errorf("/ body = %q, want index.html contents", rec.Body.String())
	}
}

func TestStaticSite_MissingFile(t *testing.T) {
	e := newSite(t, false)
	if rec := get(e, "/does-not-exist"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStaticSite_SPAFallback(t *testing.T) {
	e := newSite(t, true)

	rec := get(e, "/warehouses/3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != indexHTML {
		t.Errorf("body = %q, want index.html contents", rec.Body.String())
	}

	// The API route keeps its own 404 semantics.
	if rec := get(e, "/api/a/b"); rec.Code != http.StatusNotFound {
		t.Errorf("/api/a/b status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestStaticSite_PathTraversal(t *testing.T) {
	e := newSite(t, false)
	rec := get(e, "/../../etc/passwd")

	if rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), "root:") {
		t.Error("path traversal escaped the static root")
	}
}
