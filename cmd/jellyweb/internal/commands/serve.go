package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wolfeidau/jellyweb/internal/assets"
	"github.com/wolfeidau/jellyweb/internal/logger"
	"github.com/wolfeidau/jellyweb/internal/routes"
	"github.com/wolfeidau/jellyweb/internal/site"
	"github.com/wolfeidau/jellyweb/internal/telemetry"
	"github.com/wolfeidau/jellyweb/web"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type ServeCmd struct {
	Host        string     `help:"listen host, defaults to the configured server host" default:"" env:"JELLYWEB_HOST"`
	Port        int        `help:"listen port" default:"3000" env:"JELLYWEB_PORT"`
	Pages       string     `help:"pages directory the route table is built from" default:"app/pages" env:"JELLYWEB_PAGES"`
	Templates   string     `help:"directory overriding the built-in page shell templates" default:"" env:"JELLYWEB_TEMPLATES"`
	NoBuild     bool       `help:"serve the output of a previous build" default:"false" env:"JELLYWEB_NO_BUILD"`
	CORSOrigins []string   `help:"allowed CORS origins" env:"JELLYWEB_CORS_ORIGINS"`
	Tracing     bool       `help:"enable tracing" default:"false" env:"JELLYWEB_TRACING"`
	Assets      AssetFlags `embed:""`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	var tracerProvider trace.TracerProvider
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.ServiceName, globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without tracing")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
		tracerProvider = otel.GetTracerProvider()
	}

	cfg, err := globals.resolveConfig()
	if err != nil {
		return err
	}

	table, err := routes.Scan(os.DirFS(c.Pages), ".")
	if err != nil {
		return err
	}
	routes.ExpandAliases(table)

	log.Info().Int("routes", len(table)).Str("router_mode", string(cfg.Router.Mode)).Msg("Loaded route table")

	var templates fs.FS = web.Templates
	pattern := web.TemplatePattern
	if c.Templates != "" {
		templates, pattern = os.DirFS(c.Templates), "*.html"
	}

	pipeline, err := assets.NewWithTemplateFS(c.Assets.config(), templates, nil, pattern)
	if err != nil {
		return fmt.Errorf("failed to load assets pipeline: %w", err)
	}

	client := assets.BuildContext{Target: assets.TargetClient}
	if c.NoBuild {
		err = pipeline.LoadMetafile(client)
	} else {
		err = pipeline.Build(client, cfg.Define())
	}
	if err != nil {
		return fmt.Errorf("failed to prepare js assets: %w", err)
	}

	entry, err := entryPoint(c.Assets.Entry)
	if err != nil {
		return err
	}

	handler, err := site.New(site.Options{
		Pipeline:    pipeline,
		Config:      cfg,
		Routes:      table,
		EntryPoint:  entry,
		CORSOrigins: c.CORSOrigins,
		Logger:      log,

		TracerProvider: tracerProvider,
	})
	if err != nil {
		return err
	}

	host := c.Host
	if host == "" {
		host = cfg.Server.Host
	}
	addr := net.JoinHostPort(host, strconv.Itoa(c.Port))
	srv := configureHTTPServer(addr, handler)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown server")
		}
	}()

	log.Info().Str("addr", addr).Msg("Starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// entryPoint returns the single page entry point matched by glob, slash separated
// like the entry points recorded in the metafile.
func entryPoint(glob string) (string, error) {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return "", err
	}
	if len(matches) != 1 {
		return "", fmt.Errorf("expected exactly one entry point for %q, found %d", glob, len(matches))
	}
	return filepath.ToSlash(matches[0]), nil
}
