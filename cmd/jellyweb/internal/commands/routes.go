package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/wolfeidau/jellyweb/internal/routes"
	"gopkg.in/yaml.v3"
)

type RoutesCmd struct {
	Pages  string `help:"pages directory the route table is built from" default:"app/pages" env:"JELLYWEB_PAGES"`
	Format string `help:"output format" default:"table" enum:"table,json,yaml"`
}

func (c *RoutesCmd) Run(globals *Globals) error {
	table, err := routes.Scan(os.DirFS(c.Pages), ".")
	if err != nil {
		return err
	}

	return writeRoutes(os.Stdout, c.Format, routes.ExpandAliases(table))
}

func writeRoutes(w io.Writer, format string, table []routes.Route) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	case "yaml":
		return encodeYAML(w, table)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH\tALIAS\tCOMPONENT")
	for _, r := range table {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Path, r.Alias, r.Component)
	}
	return tw.Flush()
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
