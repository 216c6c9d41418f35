package commands

import "os"

type ShowCmd struct{}

func (c *ShowCmd) Run(globals *Globals) error {
	cfg, err := globals.resolveConfig()
	if err != nil {
		return err
	}

	return encodeYAML(os.Stdout, cfg)
}
