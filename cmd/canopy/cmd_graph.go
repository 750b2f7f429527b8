package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/canopy/graph"
)

type graphFlags struct {
	model       string
	tree        int
	classLabels bool
	concurrency int
}

type graphOutput struct {
	Subgraphs []subgraphOutput `json:"subgraphs" yaml:"subgraphs"`
}

type subgraphOutput struct {
	Name  string      `json:"name" yaml:"name"`
	Nodes int         `json:"nodes" yaml:"nodes"`
	Depth int         `json:"depth" yaml:"depth"`
	Root  *nodeOutput `json:"root" yaml:"root"`
}

// nodeOutput is a node with its children nested. Split reads as the
// condition that sends a value right.
type nodeOutput struct {
	Number          int         `json:"number" yaml:"number"`
	Column          string      `json:"column,omitempty" yaml:"column,omitempty"`
	Split           string      `json:"split,omitempty" yaml:"split,omitempty"`
	NA              string      `json:"na,omitempty" yaml:"na,omitempty"`
	Leaf            *float32    `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	WeightLeft      float32     `json:"weight_left,omitempty" yaml:"weight_left,omitempty"`
	WeightRight     float32     `json:"weight_right,omitempty" yaml:"weight_right,omitempty"`
	InclusiveNA     bool        `json:"inclusive_na" yaml:"inclusive_na"`
	InclusiveLevels []string    `json:"inclusive_levels,omitempty" yaml:"inclusive_levels,omitempty"`
	Left            *nodeOutput `json:"left,omitempty" yaml:"left,omitempty"`
	Right           *nodeOutput `json:"right,omitempty" yaml:"right,omitempty"`
}

func newGraphCmd(opts *cliOptions) *cobra.Command {
	flags := &graphFlags{}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the reconstructed trees of a model",
		Long: `Print the reconstructed trees of one group of a model, or of every group.

Every node reports whether a missing value of its parent split column can
reach it and, below categorical splits, which levels of that column can.`,
		Example: `  canopy graph --model iris.forest --tree 0
  canopy graph --model iris.forest -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "forest container to load")
	cmd.Flags().IntVarP(&flags.tree, "tree", "t", -1, "group to print, -1 for all groups")
	cmd.Flags().BoolVar(&flags.classLabels, "class-labels", true, "suffix tree names with the class label")
	cmd.Flags().IntVarP(&flags.concurrency, "concurrency", "j", 1, "number of trees rebuilt in parallel")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runGraph(cmd *cobra.Command, opts *cliOptions, flags *graphFlags) error {
	model, err := loadModel(flags.model, opts.logger)
	if err != nil {
		return err
	}

	g, err := model.BuildGraph(flags.tree,
		graph.WithLogger(opts.logger),
		graph.WithClassLabels(flags.classLabels),
		graph.WithConcurrency(flags.concurrency),
	)
	if err != nil {
		return err
	}

	out := graphOutput{Subgraphs: make([]subgraphOutput, 0, len(g.Subgraphs))}
	for _, sg := range g.Subgraphs {
		out.Subgraphs = append(out.Subgraphs, subgraphOutput{
			Name:  sg.Name,
			Nodes: len(sg.Nodes),
			Depth: sg.MaxDepth(),
			Root:  newNodeOutput(sg.Root, nil),
		})
	}

	return writeOutput(cmd.OutOrStdout(), opts.format, out)
}

// newNodeOutput converts n. parentDomain is the domain of the column the
// parent splits on, the domain InclusiveLevels refers to.
func newNodeOutput(n *graph.Node, parentDomain []string) *nodeOutput {
	out := &nodeOutput{
		Number:      n.Number,
		InclusiveNA: n.InclusiveNA,
	}

	if parentDomain != nil {
		out.InclusiveLevels = n.InclusiveLevels.Names(parentDomain)
	}

	if n.IsLeaf {
		v := n.LeafValue
		out.Leaf = &v

		return out
	}

	out.Column = n.ColumnName
	out.Split = describeSplit(n)
	out.NA = n.NASplit.String()
	out.WeightLeft = n.WeightLeft
	out.WeightRight = n.WeightRight
	out.Left = newNodeOutput(n.Left, n.Domain)
	out.Right = newNodeOutput(n.Right, n.Domain)

	return out
}

func describeSplit(n *graph.Node) string {
	switch {
	case n.NAVsRest:
		return "is NA"
	case n.Split.IsBitset():
		members := n.Subset.Members()
		names := make([]string, 0, len(members))
		for _, l := range members {
			if l < len(n.Domain) {
				names = append(names, n.Domain[l])
			} else {
				names = append(names, strconv.Itoa(l))
			}
		}

		return "in {" + strings.Join(names, ", ") + "}"
	case n.HasSplitValue:
		return fmt.Sprintf(">= %g", n.SplitValue)
	default:
		return ""
	}
}
