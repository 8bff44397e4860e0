// Command deepzoom is an interactive Mandelbrot explorer with unbounded zoom.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/charmbracelet/fang"
	"github.com/gogpu/deepzoom"
	"github.com/gogpu/deepzoom/internal/settings"
	"github.com/spf13/cobra"
)

func main() {
	s := settings.Default()
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "deepzoom [flags]",
		Short: "Interactive Mandelbrot explorer",
		Long: `deepzoom renders the Mandelbrot set progressively and keeps zooming past
float64 precision by switching to arbitrary-precision arithmetic.

Controls:
  drag            pan
  wheel, +/-      zoom
  double click    zoom in (shift: out)
  [ and ]         iteration budget -/+ 1000
  h               toggle the overlay
  esc             quit`,
		Example: `  # Default 800x600 window
  deepzoom

  # Larger window without supersampling
  deepzoom --width 1600 --height 900 --aliasing 1

  # Settings from a file, with debug logging
  deepzoom --config deepzoom.toml -d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := s.LoadFile(configPath, cmd.Flags()); err != nil {
					return err
				}
			}
			return run(cmd.Context(), s)
		},
	}

	s.BindFlags(rootCmd.Flags())
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a TOML settings file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, rootCmd,
		fang.WithVersion("v"+deepzoom.Version),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, s settings.Settings) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: s.Level(),
	}))
	slog.SetDefault(logger)
	deepzoom.SetLogger(logger)

	eng, err := deepzoom.New(deepzoom.WithConfig(s.Config(logger)))
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := eng.Start(ctx); err != nil {
		return err
	}

	g, err := newGame(ctx, eng, s.HUD)
	if err != nil {
		_ = eng.Close()
		return err
	}

	runErr := g.run(s)
	cancel()
	if err := eng.Close(); err != nil {
		return fmt.Errorf("render workers: %w", err)
	}
	return runErr
}
