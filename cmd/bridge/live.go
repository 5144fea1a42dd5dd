//go:build portaudio

package main

import (
	"github.com/spf13/cobra"

	"pipelined.dev/bridge/portaudio"
)

func init() {
	extraCommands = append(extraCommands, liveCommand)
}

func liveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "live",
		Short: "Process the default audio device until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.newBridge("live")
			if err != nil {
				return err
			}
			defer b.Dispose()
			h := portaudio.New(b, a.settings.SampleRate, a.settings.BlockSize)
			if err := h.Start(); err != nil {
				return err
			}
			a.log.WithField("engine", a.settings.Engine).Info("streaming, press ctrl+c to stop")
			<-cmd.Context().Done()
			if err := h.Stop(); err != nil {
				return err
			}
			if n := h.Errors(); n > 0 {
				a.log.WithField("blocks", n).Warn("blocks rejected by bridge")
			}
			return a.printMetrics(cmd.OutOrStdout())
		},
	}
}
