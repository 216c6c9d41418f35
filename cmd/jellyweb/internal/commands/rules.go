package commands

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/wolfeidau/jellyweb/internal/assets"
)

type RulesCmd struct {
	Target string `help:"build target" default:"client" enum:"client,server"`
}

func (c *RulesCmd) Run(globals *Globals) error {
	return writeRules(os.Stdout, assets.Rules(assets.BuildContext{Target: assets.Target(c.Target)}))
}

func writeRules(w io.Writer, rules []assets.ModuleRule) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tLOADER\tOPTIONS\tEXCLUDE")
	for _, r := range rules {
		loader, options := "-", "-"
		if len(r.Use) > 0 {
			loader = r.Use[0].Loader
			options = formatOptions(r.Use[0].Options)
		}
		typ := string(r.Type)
		if typ == "" {
			typ = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", r.Name, typ, loader, options, r.Exclude != nil)
	}
	return tw.Flush()
}

func formatOptions(opts map[string]any) string {
	if len(opts) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(opts))
	for k, v := range opts {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
