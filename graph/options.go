package graph

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/canopy/internal/options"
)

// BuildConfig holds the settings of a graph build.
type BuildConfig struct {
	logger      *slog.Logger
	classLabels bool
	concurrency int
}

// BuildOption configures Build and BuildSubgraph.
type BuildOption = options.Option[*BuildConfig]

func newBuildConfig(opts []BuildOption) (*BuildConfig, error) {
	cfg := &BuildConfig{
		logger:      slog.New(slog.DiscardHandler),
		classLabels: true,
		concurrency: 1,
	}

	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLogger sets the logger that receives a debug record per built subgraph.
// A nil logger keeps the default, which discards everything.
func WithLogger(logger *slog.Logger) BuildOption {
	return options.NoError(func(c *BuildConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithClassLabels controls whether subgraph names carry the ", Class X"
// suffix when the response column has a domain. Enabled by default.
func WithClassLabels(enabled bool) BuildOption {
	return options.NoError(func(c *BuildConfig) {
		c.classLabels = enabled
	})
}

// WithConcurrency sets how many subgraphs Build reconstructs in parallel.
// The default of 1 builds them one after another.
func WithConcurrency(n int) BuildOption {
	return options.New(func(c *BuildConfig) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		c.concurrency = n

		return nil
	})
}
