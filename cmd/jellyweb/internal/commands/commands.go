package commands

import (
	"net/http"
	"time"

	"github.com/wolfeidau/jellyweb/internal/appconfig"
	"github.com/wolfeidau/jellyweb/internal/assets"
)

type Globals struct {
	Debug   bool
	Config  string
	Version string
}

// resolveConfig resolves the client configuration from the process environment.
func (g *Globals) resolveConfig() (*appconfig.Config, error) {
	return appconfig.ResolveFile(appconfig.OSEnv, g.Config)
}

// AssetFlags configures the asset pipeline.
type AssetFlags struct {
	Entry        string `help:"entry point glob" default:"app/entry/*.ts" env:"JELLYWEB_ENTRY"`
	OutDir       string `help:"client output directory" default:"public" env:"JELLYWEB_OUT_DIR"`
	ServerOutDir string `help:"server output directory" default:".output/server" env:"JELLYWEB_SERVER_OUT_DIR"`
	PublicPath   string `help:"URL prefix the client output is served under" default:"/public/" env:"JELLYWEB_PUBLIC_PATH"`
	Minify       bool   `help:"minify output" default:"true" negatable:"" env:"JELLYWEB_MINIFY"`
	SourceMap    bool   `help:"emit source maps" default:"true" negatable:"" env:"JELLYWEB_SOURCEMAP"`
}

func (f AssetFlags) config() assets.Config {
	return assets.Config{
		EntryPointGlob:  f.Entry,
		OutputDir:       f.OutDir,
		ServerOutputDir: f.ServerOutDir,
		PublicPath:      f.PublicPath,
		Minify:          f.Minify,
		SourceMap:       f.SourceMap,
	}
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
