package site

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/jellyweb/internal/appconfig"
	"github.com/wolfeidau/jellyweb/internal/assets"
	"github.com/wolfeidau/jellyweb/internal/routes"
	"github.com/wolfeidau/jellyweb/web"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

const testMeta = `{
  "outputs": {
    "public/app.js": {
      "entryPoint": "app/entry/app.ts",
      "cssBundle": "public/app.css",
      "imports": [{"path": "public/chunk-A.js", "kind": "import-statement"}]
    },
    "public/chunk-A.js": {"imports": []}
  }
}`

func newTestSite(t *testing.T, env map[string]string, origins ...string) http.Handler {
	t.Helper()

	opts := newTestOptions(t, env)
	opts.CORSOrigins = origins

	handler, err := New(opts)
	require.NoError(t, err)
	return handler
}

func newTestOptions(t *testing.T, env map[string]string) Options {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.json"), []byte(testMeta), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subtitles-octopus-worker.js"), []byte("self.onmessage = null;"), 0o600))

	cfg := assets.DefaultConfig()
	cfg.OutputDir = dir

	pipeline, err := assets.NewWithTemplateFS(cfg, web.Templates, nil, web.TemplatePattern)
	require.NoError(t, err)
	require.NoError(t, pipeline.LoadMetafile(assets.BuildContext{Target: assets.TargetClient}))

	config, err := appconfig.Resolve(appconfig.MapEnv(env))
	require.NoError(t, err)

	table := routes.ExpandAliases([]routes.Route{
		{Name: "index", Path: "/"},
		{Name: "settings", Path: "/settings"},
		{Name: "item-itemId", Path: "/item/:itemId"},
		{Name: "all", Path: "/*"},
	})

	return Options{
		Pipeline:   pipeline,
		Config:     config,
		Routes:     table,
		EntryPoint: "app/entry/app.ts",
		Logger:     zerolog.Nop(),
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSite_routesAndAliases(t *testing.T) {
	h := newTestSite(t, nil)

	for _, path := range []string{
		"/",
		"/index.html",
		"/settings",
		"/settings/index.html",
		"/item/42",
		"/item/42/index.html",
		"/unknown/deep/path",
	} {
		t.Run(path, func(t *testing.T) {
			w := get(t, h, path)
			require.Equal(t, http.StatusOK, w.Code)
			require.Contains(t, w.Header().Get("Content-Type"), "text/html")

			body := w.Body.String()
			require.Contains(t, body, "<title>Jellyfin</title>")
			require.Contains(t, body, `<script type="module" src="/public/app.js"></script>`)
			require.Contains(t, body, `<script type="module" src="/public/chunk-A.js"></script>`)
			require.Contains(t, body, `<link rel="stylesheet" href="/public/app.css">`)
		})
	}
}

func TestSite_payload(t *testing.T) {
	h := newTestSite(t, map[string]string{
		appconfig.EnvHistoryRouterMode: "1",
		appconfig.EnvCommitHash:        "abc123",
		appconfig.EnvDefaultServers:    "http://192.168.1.1",
	})

	body := get(t, h, "/").Body.String()
	require.Contains(t, body, `"mode":"history"`)
	require.Contains(t, body, `"commit_hash":"abc123"`)
	require.Contains(t, body, `"server_url_list":"http://192.168.1.1"`)
	require.Contains(t, body, `"alias":"/settings/index.html"`)
	require.Contains(t, body, `"middleware":["auth","meta"]`)
	require.Contains(t, body, `<html lang="zh-CN">`)
	require.Contains(t, body, `<meta name="theme-color" content="#1c2331">`)
}

func TestSite_publicAssets(t *testing.T) {
	h := newTestSite(t, nil)

	w := get(t, h, "/public/subtitles-octopus-worker.js")
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	require.Equal(t, "self.onmessage = null;", string(body))

	w = get(t, h, "/public/missing.js")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSite_manifest(t *testing.T) {
	h := newTestSite(t, nil)

	w := get(t, h, "/manifest.json")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/manifest+json", w.Header().Get("Content-Type"))

	var manifest map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &manifest))
	require.Equal(t, "Jellyfin", manifest["name"])
	require.Equal(t, "standalone", manifest["display"])
}

func TestSite_cors(t *testing.T) {
	h := newTestSite(t, nil, "http://jellyfin.local")

	r := httptest.NewRequest(http.MethodGet, "/manifest.json", nil)
	r.Header.Set("Origin", "http://jellyfin.local")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, "http://jellyfin.local", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSite_gzip(t *testing.T) {
	h := newTestSite(t, nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestSite_tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	opts := newTestOptions(t, nil)
	opts.TracerProvider = tp

	h, err := New(opts)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, get(t, h, "/settings/index.html").Code)
	require.Equal(t, http.StatusOK, get(t, h, "/manifest.json").Code)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	for _, span := range spans {
		require.Equal(t, trace.SpanKindServer, span.SpanKind())
	}
}

func TestNew_requiresPipeline(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestPattern(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{path: "/", expected: "/"},
		{path: "/index.html", expected: "/index.html"},
		{path: "/item/:itemId", expected: "/item/{itemId}"},
		{path: "/item/:itemId/index.html", expected: "/item/{itemId}/index.html"},
		{path: "/library/:viewId/:page", expected: "/library/{viewId}/{page}"},
		{path: "/*", expected: "/*"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.expected, Pattern(tt.path))
		})
	}
}
