package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/arloliu/canopy/forest"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type cliOptions struct {
	verbose bool
	format  string
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "canopy",
		Short: "Score and inspect compressed decision tree ensembles",
		Long: `canopy reads forest containers produced by the canopy encoder.
It scores rows against the ensemble, reports the decision path taken in every
tree and prints the reconstructed trees with their missing value and
categorical level provenance.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.verbose)

			switch opts.format {
			case formatYAML, formatJSON:
				return nil
			default:
				return fmt.Errorf("unknown output format %q, want %s or %s", opts.format, formatYAML, formatJSON)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug details to stderr")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "o", formatYAML, "output format: yaml or json")

	rootCmd.AddCommand(
		newScoreCmd(opts),
		newGraphCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the canopy version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "canopy %s\n", version)
		},
	}
}

// newLogger logs text to terminals and JSON lines to anything else.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		handlerOpts.Level = slog.LevelDebug
	}

	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}

	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

func loadModel(path string, logger *slog.Logger) (*forest.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	model, err := forest.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}

	ens := model.Ensemble()
	logger.Debug("loaded model",
		"path", path,
		"bytes", len(data),
		"compression", model.Compression(),
		"groups", ens.GroupCount,
		"trees_per_group", ens.TreesPerGroup,
		"classes", ens.NumClasses,
		"columns", len(model.Columns()))

	return model, nil
}
