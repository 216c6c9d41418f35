package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/jellyweb/cmd/jellyweb/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool   `help:"Enable debug mode."`
		Config  string `help:"YAML file overlaid on the built-in client configuration." env:"JELLYWEB_CONFIG"`
		Version kong.VersionFlag
		Build   commands.BuildCmd  `cmd:"" help:"Bundle the web client for the browser and/or the server."`
		Serve   commands.ServeCmd  `cmd:"" help:"Build the client and host it, every route also under its index.html alias."`
		Routes  commands.RoutesCmd `cmd:"" help:"Print the route table with index.html aliases."`
		Rules   commands.RulesCmd  `cmd:"" help:"Print the module rules applied to a build target."`
		Show    commands.ShowCmd   `cmd:"" name:"config" help:"Print the resolved client configuration."`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Config: cli.Config, Version: version})
	cmd.FatalIfErrorf(err)
}
