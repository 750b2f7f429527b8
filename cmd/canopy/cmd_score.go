package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/canopy/forest"
)

type scoreFlags struct {
	model string
	row   string
	set   map[string]string
	paths bool
}

type scoreOutput struct {
	Predictions []float64    `json:"predictions" yaml:"predictions"`
	Paths       []pathOutput `json:"paths,omitempty" yaml:"paths,omitempty"`
}

type pathOutput struct {
	Group int    `json:"group" yaml:"group"`
	Class int    `json:"class" yaml:"class"`
	Path  string `json:"path" yaml:"path"`
}

func newScoreCmd(opts *cliOptions) *cobra.Command {
	flags := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one row against a model",
		Long: `Score one row against a model and print the summed predictions.

The row is given either positionally with --row, one comma separated value per
column in column order, or by name with repeated --set name=value flags.
Categorical values are level names. Empty values and NA are missing.`,
		Example: `  canopy score --model iris.forest --row 5.1,3.5,1.4,0.2
  canopy score --model iris.forest --set petal_len=1.4 --set color=blue --paths`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "forest container to load")
	cmd.Flags().StringVar(&flags.row, "row", "", "comma separated values in column order")
	cmd.Flags().StringToStringVar(&flags.set, "set", nil, "named column value, may be repeated")
	cmd.Flags().BoolVar(&flags.paths, "paths", false, "also print the decision path taken in every tree")
	_ = cmd.MarkFlagRequired("model")
	cmd.MarkFlagsMutuallyExclusive("row", "set")

	return cmd
}

func runScore(cmd *cobra.Command, opts *cliOptions, flags *scoreFlags) error {
	model, err := loadModel(flags.model, opts.logger)
	if err != nil {
		return err
	}

	values := flags.set
	if flags.row != "" {
		if values, err = positionalValues(model, flags.row); err != nil {
			return err
		}
	}

	row, err := model.Row(values)
	if err != nil {
		return err
	}
	opts.logger.Debug("scoring row", "row", row)

	preds, err := model.Score(row)
	if err != nil {
		return err
	}
	out := scoreOutput{Predictions: preds}

	if flags.paths {
		ens := model.Ensemble()
		paths, err := ens.ScorePaths(row)
		if err != nil {
			return err
		}

		for class := range ens.TreesPerGroup {
			for group := range ens.GroupCount {
				out.Paths = append(out.Paths, pathOutput{
					Group: group,
					Class: class,
					Path:  paths[ens.TreeIndex(group, class)].String(),
				})
			}
		}
	}

	return writeOutput(cmd.OutOrStdout(), opts.format, out)
}

// positionalValues maps a comma separated row onto column names. Trailing
// columns may be omitted and are missing.
func positionalValues(model *forest.Model, row string) (map[string]string, error) {
	fields := strings.Split(row, ",")
	columns := model.Columns()
	if len(fields) > len(columns) {
		return nil, fmt.Errorf("row has %d values, model has %d columns", len(fields), len(columns))
	}

	values := make(map[string]string, len(fields))
	for i, f := range fields {
		values[columns[i]] = f
	}

	return values, nil
}
