// Package canopy scores and inspects compressed decision-tree ensembles.
//
// Trees are stored in the compact pre-order node-record format written by
// gradient boosting and random forest trainers: every internal node carries
// its split column, missing-value routing code and split condition, and every
// leaf a float32 prediction. Canopy walks those bytes directly without
// materializing the tree, which makes scoring allocation-free.
//
// # Core Features
//
//   - Single tree scoring returning the leaf value or the packed decision path
//   - Ensemble aggregation for regression, binomial and multinomial models
//   - Graph reconstruction with provenance: for every node, whether missing
//     values can reach it and which categorical levels can
//   - A self-describing forest container holding trees, column names and
//     categorical domains, with optional compression (None, Zstd, S2, LZ4)
//
// # Basic Usage
//
// Scoring a single tree:
//
//	value, err := canopy.ScoreTree(treeBytes, []float64{5.1, 2, math.NaN()}, 1)
//
// Decoding a forest container and scoring a row:
//
//	model, _ := canopy.DecodeForest(data)
//	row, _ := model.Row(map[string]string{"petal_len": "1.4", "color": "blue"})
//	preds, _ := model.Score(row)
//
// Rebuilding the trees of one boosting round:
//
//	g, _ := model.BuildGraph(0)
//	for _, sg := range g.Subgraphs {
//	    fmt.Println(sg.Name, len(sg.Nodes))
//	}
//
// # Package Structure
//
// This package provides top-level wrappers around the tree, graph and forest
// packages for the most common use cases. Use those packages directly for
// finer control.
package canopy

import (
	"iter"

	"github.com/arloliu/canopy/forest"
	"github.com/arloliu/canopy/graph"
	"github.com/arloliu/canopy/internal/pool"
	"github.com/arloliu/canopy/tree"
)

// ScoreTree routes row through a compressed tree and returns the reached leaf value.
//
// Parameters:
//   - data: The compressed tree
//   - row: Column values indexed by column id; categorical values are level
//     indices, missing values are NaN
//   - nclasses: Number of classes of the model, 1 for regression
//
// Returns:
//   - float64: The leaf value
//   - error: A decoding error for malformed trees, or errs.ErrColumnOutOfRange
//
// Example:
//
//	value, err := canopy.ScoreTree(data, []float64{3.5, math.NaN()}, 1)
func ScoreTree(data []byte, row []float64, nclasses int) (float64, error) {
	return tree.ScoreTree(data, row, nclasses)
}

// ScoreTreePath routes row through a compressed tree and returns the packed
// decision path. Use DecodePath to expand it.
func ScoreTreePath(data []byte, row []float64, nclasses int) (tree.DecisionPath, error) {
	return tree.ScoreTreePath(data, row, nclasses)
}

// DecodePath expands a packed decision path into its directions, root first.
// A path that ends at the root decodes to an empty slice.
func DecodePath(p tree.DecisionPath) ([]tree.Direction, error) {
	return tree.DecodePath(p)
}

// NewEnsemble creates an ensemble from trees laid out class slot major:
// the tree for group g and class slot k sits at index k*groupCount + g.
//
// Parameters:
//   - trees: Compressed trees (len must be groupCount*treesPerGroup)
//   - groupCount: Number of tree groups
//   - treesPerGroup: 1 for regression and binomial models, the class count for multinomial ones
//   - nclasses: Number of output classes, 1 for regression
//
// Returns:
//   - *tree.Ensemble: The ensemble
//   - error: errs.ErrInvalidEnsembleShape or errs.ErrInvalidNumClasses
func NewEnsemble(trees [][]byte, groupCount, treesPerGroup, nclasses int) (*tree.Ensemble, error) {
	return tree.NewEnsemble(trees, groupCount, treesPerGroup, nclasses)
}

// ScoreRows scores every row against the ensemble.
//
// The iterator yields each prediction vector with a nil error, or a nil
// vector and the first scoring error, after which it stops. The vector is
// reused between rows and must be copied to be retained.
//
// Example:
//
//	for preds, err := range canopy.ScoreRows(ens, rows) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(preds[0])
//	}
func ScoreRows(ens *tree.Ensemble, rows [][]float64) iter.Seq2[[]float64, error] {
	return func(yield func([]float64, error) bool) {
		preds, cleanup := pool.GetFloat64Slice(ens.OutputSize())
		defer cleanup()

		for _, row := range rows {
			if err := ens.ScoreInto(row, preds); err != nil {
				yield(nil, err)
				return
			}

			if !yield(preds, nil) {
				return
			}
		}
	}
}

// BuildGraph reconstructs the trees of group treeIndex, or of all groups
// when treeIndex is negative, annotating every node with provenance.
//
// Parameters:
//   - ens: The ensemble
//   - meta: Column names, categorical domains and the response column
//   - treeIndex: Group to rebuild, or -1 for all groups
//   - opts: Build options (graph.WithLogger, graph.WithClassLabels)
//
// Returns:
//   - *graph.Graph: One subgraph per rebuilt tree
//   - error: errs.ErrInvalidTreeIndex or a tree decoding error
func BuildGraph(ens *tree.Ensemble, meta graph.Metadata, treeIndex int, opts ...graph.BuildOption) (*graph.Graph, error) {
	return graph.Build(ens, meta, treeIndex, opts...)
}

// NewForestEncoder creates an encoder for a forest container holding
// groupCount groups of treesPerGroup trees.
//
// Available options:
//   - forest.WithCompression(format.CompressionNone|Zstd|S2|LZ4)
//   - forest.WithResponseColumn(col)
//   - forest.WithNumClasses(n)
//
// Example:
//
//	enc, _ := canopy.NewForestEncoder(100, 3, forest.WithResponseColumn(4))
//	enc.AddColumn("petal_len", nil)
//	enc.AddColumn("species", []string{"setosa", "versicolor", "virginica"})
//	enc.SetTree(0, 0, treeBytes)
//	data, err := enc.Finish()
func NewForestEncoder(groupCount, treesPerGroup int, opts ...forest.EncoderOption) (*forest.Encoder, error) {
	return forest.NewEncoder(groupCount, treesPerGroup, opts...)
}

// DecodeForest parses and verifies a forest container.
func DecodeForest(data []byte) (*forest.Model, error) {
	return forest.Decode(data)
}
