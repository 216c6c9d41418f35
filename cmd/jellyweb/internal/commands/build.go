package commands

import (
	"fmt"

	"github.com/wolfeidau/jellyweb/internal/assets"
	"github.com/wolfeidau/jellyweb/internal/logger"
)

type BuildCmd struct {
	Target string     `help:"build target (client, server or all)" default:"all" enum:"client,server,all" env:"JELLYWEB_TARGET"`
	Assets AssetFlags `embed:""`
}

func (c *BuildCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

	cfg, err := globals.resolveConfig()
	if err != nil {
		return err
	}

	log.Info().
		Str("version", globals.Version).
		Str("commit", cfg.Env.CommitHash).
		Str("router_mode", string(cfg.Router.Mode)).
		Msg("Building web client")

	pipeline := assets.New(c.Assets.config())
	for _, target := range buildTargets(c.Target) {
		if err := pipeline.Build(assets.BuildContext{Target: target}, cfg.Define()); err != nil {
			return fmt.Errorf("failed to build %s assets: %w", target, err)
		}
	}

	return nil
}

func buildTargets(target string) []assets.Target {
	switch assets.Target(target) {
	case assets.TargetClient:
		return []assets.Target{assets.TargetClient}
	case assets.TargetServer:
		return []assets.Target{assets.TargetServer}
	default:
		return []assets.Target{assets.TargetClient, assets.TargetServer}
	}
}
