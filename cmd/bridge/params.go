package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pipelined.dev/bridge/param"
)

// Output formats.
const (
	formatTable = "table"
	formatYAML  = "yaml"
)

// parameter is a printed parameter row.
type parameter struct {
	ID    int32   `yaml:"id"`
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit"`
}

func paramsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "params",
		Short: "List parameters with their defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := param.All()
			rows := make([]parameter, 0, len(all))
			for _, info := range all {
				rows = append(rows, parameter{
					ID:    int32(info.ID),
					Name:  info.Name,
					Value: info.Default,
					Unit:  info.Unit,
				})
			}
			return printParameters(cmd.OutOrStdout(), format, rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, yaml")
	return cmd
}

func printParameters(w io.Writer, format string, rows []parameter) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(rows)
	case formatTable:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tVALUE\tUNIT")
		for _, r := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Name, param.Format(r.Value), r.Unit)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown format %q", format)
}
