// Package site serves the built web client: the page shell for every route
// and its index.html alias, the built assets and the web app manifest.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/jellyweb/internal/appconfig"
	"github.com/wolfeidau/jellyweb/internal/assets"
	httpmiddleware "github.com/wolfeidau/jellyweb/internal/http"
	"github.com/wolfeidau/jellyweb/internal/routes"
	"github.com/wolfeidau/jellyweb/internal/telemetry"
	"github.com/wolfeidau/jellyweb/web"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Options configures the static host.
type Options struct {
	Pipeline    *assets.Pipeline
	Config      *appconfig.Config
	Routes      []routes.Route
	EntryPoint  string
	CORSOrigins []string
	Logger      zerolog.Logger
	// TracerProvider enables request tracing when set
	TracerProvider trace.TracerProvider
}

// Shell is the data rendered into the page shell.
type Shell struct {
	Lang    string
	Head    appconfig.Head
	PWA     appconfig.PWA
	Loading appconfig.LoadingBar
	Payload Payload
}

// Payload is handed to the client runtime as window.__JELLYWEB__.
type Payload struct {
	Env     appconfig.Env          `json:"env"`
	Router  appconfig.RouterConfig `json:"router"`
	Routes  []routes.Route         `json:"routes"`
	Title   string                 `json:"titleTemplate"`
	Plugins []string               `json:"plugins"`
	I18n    appconfig.I18n         `json:"i18n"`
	DateFns appconfig.DateFns      `json:"dateFns"`
	Theme   appconfig.Theme        `json:"theme"`
}

// NewShell assembles the shell data for a configuration and route table.
func NewShell(cfg *appconfig.Config, table []routes.Route) Shell {
	return Shell{
		Lang:    cfg.I18n.DefaultLocale,
		Head:    cfg.Head,
		PWA:     cfg.PWA,
		Loading: cfg.Loading,
		Payload: Payload{
			Env:     cfg.Env,
			Router:  cfg.Router,
			Routes:  table,
			Title:   cfg.Head.TitleTemplate,
			Plugins: cfg.Plugins,
			I18n:    cfg.I18n,
			DateFns: cfg.DateFns,
			Theme:   cfg.Theme,
		},
	}
}

// New returns the static host handler. Routes should already carry their
// aliases, see routes.ExpandAliases.
func New(opts Options) (http.Handler, error) {
	if opts.Pipeline == nil || opts.Config == nil {
		return nil, errors.New("site requires a pipeline and a config")
	}

	shellData := NewShell(opts.Config, opts.Routes)
	metrics := telemetry.GetMetrics()
	shell, err := opts.Pipeline.Handler(web.ShellTemplate, opts.Config.Head.Title, opts.EntryPoint, func(ctx context.Context) any {
		metrics.ShellRendersTotal.Add(ctx, 1)
		return shellData
	})
	if err != nil {
		return nil, err
	}

	gz, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.AccessLog(opts.Logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
		}).Handler)
	}
	r.Use(func(next http.Handler) http.Handler { return gz(next) })

	assetCfg := opts.Pipeline.Config()
	if public := strings.Trim(assetCfg.PublicPath, "/"); public != "" {
		prefix := "/" + public + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(assetCfg.OutputDir))))
	} else {
		opts.Logger.Warn().Msg("Public path is the site root, built assets are not served")
	}

	r.Get("/manifest.json", manifestHandler(opts.Config))

	for _, route := range opts.Routes {
		r.Get(Pattern(route.Path), shell)

		if route.Alias == "" {
			continue
		}
		if strings.Contains(route.Path, "*") {
			opts.Logger.Debug().Str("path", route.Path).Msg("Skipping alias of wildcard route")
			continue
		}
		r.Get(Pattern(route.Alias), shell)
	}

	// client side routing handles everything else
	r.NotFound(shell)

	if opts.TracerProvider != nil {
		return otelhttp.NewHandler(r, telemetry.ServiceName, otelhttp.WithTracerProvider(opts.TracerProvider)), nil
	}

	return r, nil
}

// Pattern converts a vue-router path into a chi routing pattern.
func Pattern(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if name, ok := strings.CutPrefix(seg, ":"); ok && name != "" {
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/")
}

func manifestHandler(cfg *appconfig.Config) http.HandlerFunc {
	manifest := cfg.Manifest()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/manifest+json")
		if err := json.NewEncoder(w).Encode(manifest); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode manifest")
		}
	}
}
