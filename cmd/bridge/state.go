package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"pipelined.dev/bridge"
	"pipelined.dev/bridge/param"
)

func stateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Encode and decode saved parameter state",
	}
	cmd.AddCommand(stateEncodeCommand(a), stateDecodeCommand(a))
	return cmd
}

func stateEncodeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode [output]",
		Short: "Write state of configured parameters",
		Long:  `Write state of configured parameters to a file or standard output.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := bridge.New(bridge.WithLogger(a.log))
			if err := a.applyParameters(b); err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				return b.GetState(cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := b.GetState(f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}

func stateDecodeCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "decode [input]",
		Short: "Print parameters of a saved state",
		Long: `Print parameters of a state read from a file or standard input.
Parameters missing in a truncated state keep their defaults.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) > 0 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			b := bridge.New(bridge.WithLogger(a.log))
			if err := b.SetState(r); err != nil {
				return err
			}
			rows := make([]parameter, 0, param.Count)
			for _, info := range param.All() {
				v, err := b.Parameter(info.ID)
				if err != nil {
					return err
				}
				rows = append(rows, parameter{
					ID:    int32(info.ID),
					Name:  info.Name,
					Value: v,
					Unit:  info.Unit,
				})
			}
			return printParameters(cmd.OutOrStdout(), format, rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, yaml")
	return cmd
}
