package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pipelined.dev/bridge"
	"pipelined.dev/bridge/internal/config"
	"pipelined.dev/bridge/log"
	"pipelined.dev/bridge/metric"
	"pipelined.dev/bridge/param"
)

// app holds state shared by all commands. It's ready after the root
// command's pre-run.
type app struct {
	settings *config.Settings
	log      *logrus.Logger
	registry *prometheus.Registry
	metric   *metric.Metric
}

// commands added by optional builds.
var extraCommands []func(*app) *cobra.Command

func rootCommand() *cobra.Command {
	a := &app{}
	v := config.New()
	cmd := &cobra.Command{
		Use:           "bridge",
		Short:         "Run audio through an engine bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			file, _ := cmd.Flags().GetString("config")
			settings, err := config.Load(v, file)
			if err != nil {
				return err
			}
			return a.initialize(cmd, settings)
		},
	}
	setupFlags(cmd)
	cmd.AddCommand(
		renderCommand(a),
		stateCommand(a),
		paramsCommand(),
	)
	for _, c := range extraCommands {
		cmd.AddCommand(c(a))
	}
	return cmd
}

func setupFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to config file")
	flags.Float64(config.KeySampleRate, 0, "Sample rate of live processing")
	flags.Int(config.KeyMaxBlockSize, 0, "Maximum number of samples per block")
	flags.Int(config.KeyBlockSize, 0, "Number of samples per block")
	flags.Int(config.KeyBitDepth, 0, "Bit depth of rendered files: 16, 24 or 32")
	flags.String(config.KeyEngine, "", fmt.Sprintf("Engine to register: %v", engineNames()))
	flags.String(config.KeyLogLevel, "", "Log level: debug, info, warn or error")
	flags.Bool(config.KeyMetrics, false, "Print processing metrics when done")
}

func (a *app) initialize(cmd *cobra.Command, settings *config.Settings) error {
	if _, ok := engines[settings.Engine]; !ok {
		return fmt.Errorf("unknown engine %q, available: %v", settings.Engine, engineNames())
	}
	a.settings = settings
	a.log = log.WithLevel(settings.LogLevel)
	a.log.SetOutput(cmd.ErrOrStderr())
	if !settings.Metrics {
		return nil
	}
	a.registry = prometheus.NewRegistry()
	m, err := metric.New(a.registry)
	if err != nil {
		return fmt.Errorf("error creating metrics: %w", err)
	}
	a.metric = m
	return nil
}

// newBridge returns a bridge with the configured engine registered and
// configured parameters applied.
func (a *app) newBridge(name string) (*bridge.Bridge, error) {
	b := bridge.New(
		bridge.WithName(name),
		bridge.WithLogger(a.log),
		bridge.WithMetric(a.metric),
		bridge.WithMaxBlockSize(a.settings.MaxBlockSize),
	)
	if t := engines[a.settings.Engine](); t != nil {
		b.Register(t)
	}
	if err := a.applyParameters(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (a *app) applyParameters(b *bridge.Bridge) error {
	for name, v := range a.settings.Parameters {
		id, err := param.ByName(name)
		if err != nil {
			return err
		}
		if err := b.SetParameter(id, v); err != nil {
			return err
		}
	}
	return nil
}

// printMetrics writes gathered metrics sorted by name.
func (a *app) printMetrics(w io.Writer) error {
	if a.registry == nil {
		return nil
	}
	summary, err := metric.Summary(a.registry)
	if err != nil {
		return fmt.Errorf("error gathering metrics: %w", err)
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s %v\n", k, summary[k])
	}
	return nil
}
