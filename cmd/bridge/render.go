package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pipelined.dev/bridge"
	"pipelined.dev/bridge/wav"
)

func renderCommand(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "render [input.wav...]",
		Short: "Render wav files through the engine",
		Long: `Render every input file through its own bridge. Files are
rendered concurrently and saved with the same name to the output directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("error creating output directory: %w", err)
			}
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, in := range args {
				in := in
				out := filepath.Join(outDir, filepath.Base(in))
				g.Go(func() error {
					return a.render(ctx, in, out)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return a.printMetrics(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "out", "Path to output directory")
	return cmd
}

// output is a rendered file.
type output interface {
	io.WriteSeeker
	io.Closer
}

// render processes a single file through a new bridge.
func (a *app) render(ctx context.Context, in, out string) error {
	if same, err := samePath(in, out); err != nil || same {
		if err == nil {
			err = errors.New("output overwrites input")
		}
		return fmt.Errorf("render %s: %w", in, err)
	}
	src, err := os.Open(in)
	if err != nil {
		return err
	}
	defer src.Close()
	r, err := wav.NewReader(src, a.settings.BlockSize)
	if err != nil {
		return fmt.Errorf("render %s: %w", in, err)
	}

	dst, err := os.Create(out)
	if err != nil {
		return err
	}
	return a.renderTo(ctx, r, dst, in, out)
}

// renderTo renders into dst and closes it. The file is only reported as
// rendered if it was closed without error.
func (a *app) renderTo(ctx context.Context, r *wav.Reader, dst output, in, out string) error {
	blocks, err := a.renderFile(ctx, r, dst, in)
	if err != nil {
		dst.Close()
		return fmt.Errorf("render %s: %w", in, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("render %s: %w", out, err)
	}
	a.log.WithFields(logrus.Fields{
		"input":  in,
		"output": out,
		"blocks": blocks,
	}).Info("rendered")
	return nil
}

// renderFile writes blocks read from r through a new bridge to dst and
// returns the number of processed blocks.
func (a *app) renderFile(ctx context.Context, r *wav.Reader, dst io.WriteSeeker, name string) (int, error) {
	w, err := wav.NewWriter(dst, r.SampleRate(), a.settings.BitDepth)
	if err != nil {
		return 0, err
	}

	b, err := a.newBridge(filepath.Base(name))
	if err != nil {
		return 0, err
	}
	defer b.Dispose()
	if err := b.Setup(float64(r.SampleRate()), int32(a.settings.MaxBlockSize)); err != nil {
		return 0, err
	}
	if err := b.SetActive(true); err != nil {
		return 0, err
	}

	size := a.settings.BlockSize
	data := &bridge.ProcessData{
		Inputs:  [][]float32{make([]float32, size), make([]float32, size)},
		Outputs: [][]float32{make([]float32, size), make([]float32, size)},
	}
	var blocks int
	for {
		if err := ctx.Err(); err != nil {
			return blocks, err
		}
		n, err := r.Read(data.Inputs[0], data.Inputs[1])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return blocks, err
		}
		data.NumSamples = n
		if err := b.Process(data); err != nil {
			return blocks, err
		}
		if err := w.Write(data.Outputs[0][:n], data.Outputs[1][:n]); err != nil {
			return blocks, err
		}
		blocks++
	}
	return blocks, w.Close()
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
