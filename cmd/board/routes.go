package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/market-board/pkg/routes"
	"github.com/JaimeStill/market-board/web/app"
)

var routeFormats = []string{"text", "json", "yaml"}

func newRoutesCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the flattened page route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := app.Routes()
			if err := table.Validate(); err != nil {
				return err
			}
			return writeRoutes(cmd.OutOrStdout(), format, table.Flatten())
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format ("+strings.Join(routeFormats, "|")+")")
	return cmd
}

func writeRoutes(w io.Writer, format string, entries []routes.Entry) error {
	switch format {
	case "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tPAGE\tLAYOUTS\tPROPS")
		for _, e := range entries {
			layouts := strings.Join(e.Layouts, ",")
			if layouts == "" {
				layouts = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", e.Path, e.Page, layouts, e.Props)
		}
		return tw.Flush()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid format %q: must be one of %v", format, routeFormats)
	}
}
