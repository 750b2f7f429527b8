package canopy

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/forest"
	"github.com/arloliu/canopy/format"
	"github.com/arloliu/canopy/graph"
	"github.com/arloliu/canopy/internal/treetest"
	"github.com/arloliu/canopy/tree"
)

// x >= 2.5 goes to a split on color where blue goes right.
func sampleTree(base float32) []byte {
	return treetest.MustEncode(
		treetest.Numeric(0, 2.5, format.NaSplitNALeft,
			treetest.Leaf(base+1),
			treetest.Categorical(1, []int{2}, format.NaSplitNARight, treetest.Leaf(base+2), treetest.Leaf(base+3)),
		),
	)
}

func TestScoreRows(t *testing.T) {
	ens, err := NewEnsemble([][]byte{sampleTree(0), sampleTree(10)}, 2, 1, 1)
	require.NoError(t, err)

	rows := [][]float64{{1, 0}, {4, 2}, {math.NaN(), math.NaN()}}

	var got []float64
	for preds, err := range ScoreRows(ens, rows) {
		require.NoError(t, err)
		got = append(got, preds...)
	}
	require.Equal(t, []float64{12, 16, 12}, got)
}

func TestScoreRows_StopsOnError(t *testing.T) {
	ens, err := NewEnsemble([][]byte{sampleTree(0)}, 1, 1, 1)
	require.NoError(t, err)

	rows := [][]float64{{1, 0}, {4}, {1, 0}}

	var seen int
	var lastErr error
	for preds, err := range ScoreRows(ens, rows) {
		seen++
		if err != nil {
			require.Nil(t, preds)
			lastErr = err
		}
	}
	require.Equal(t, 2, seen)
	require.ErrorIs(t, lastErr, errs.ErrColumnOutOfRange)
}

func TestScoreRows_Break(t *testing.T) {
	ens, err := NewEnsemble([][]byte{sampleTree(0)}, 1, 1, 1)
	require.NoError(t, err)

	var seen int
	for range ScoreRows(ens, [][]float64{{1, 0}, {4, 0}, {4, 2}}) {
		seen++
		break
	}
	require.Equal(t, 1, seen)
}

func TestForestRoundTrip(t *testing.T) {
	enc, err := NewForestEncoder(1, 1, forest.WithCompression(format.CompressionS2))
	require.NoError(t, err)

	_, err = enc.AddColumn("x", nil)
	require.NoError(t, err)
	_, err = enc.AddColumn("color", []string{"red", "green", "blue"})
	require.NoError(t, err)
	require.NoError(t, enc.SetTree(0, 0, sampleTree(0)))

	data, err := enc.Finish()
	require.NoError(t, err)

	model, err := DecodeForest(data)
	require.NoError(t, err)

	g, err := BuildGraph(model.Ensemble(), model, -1)
	require.NoError(t, err)
	require.Len(t, g.Subgraphs, 1)
	require.Equal(t, "Tree 0", g.Subgraphs[0].Name)

	// The graph and the byte scorer agree on every reachable leaf.
	for _, row := range [][]float64{{0, 0}, {3, 1}, {3, 2}, {math.NaN(), 2}, {3, math.NaN()}} {
		leaf, dirs, err := g.Subgraphs[0].Walk(row)
		require.NoError(t, err)

		value, err := ScoreTree(model.Ensemble().Trees[0], row, 1)
		require.NoError(t, err)
		require.InDelta(t, value, float64(leaf.LeafValue), 0)

		path, err := ScoreTreePath(model.Ensemble().Trees[0], row, 1)
		require.NoError(t, err)
		decoded, err := DecodePath(path)
		require.NoError(t, err)
		require.True(t, slices.Equal(dirs, decoded))
	}
}

func ExampleScoreTree() {
	data := sampleTree(0)

	value, _ := ScoreTree(data, []float64{4, 2}, 1)
	fmt.Println(value)

	// Missing x is routed left.
	value, _ = ScoreTree(data, []float64{math.NaN(), 2}, 1)
	fmt.Println(value)
	// Output:
	// 3
	// 1
}

func ExampleScoreTreePath() {
	path, _ := ScoreTreePath(sampleTree(0), []float64{4, 0}, 1)
	fmt.Println(path)

	dirs, _ := DecodePath(path)
	fmt.Println(dirs)
	// Output:
	// RL
	// [R L]
}

func ExampleBuildGraph() {
	ens, _ := NewEnsemble([][]byte{sampleTree(0)}, 1, 1, 1)
	meta := graph.NewStaticMetadata(
		[]string{"x", "color"},
		[][]string{nil, {"red", "green", "blue"}},
	)

	g, _ := BuildGraph(ens, meta, 0)
	sg := g.Subgraphs[0]
	colorSplit := sg.Root.Right

	fmt.Println(sg.Name, len(sg.Nodes))
	fmt.Println(colorSplit.ColumnName, colorSplit.EdgeLevels(tree.Left), colorSplit.EdgeLevels(tree.Right))
	fmt.Println(sg.Root.Left.InclusiveNA, sg.Root.Right.InclusiveNA)
	// Output:
	// Tree 0 5
	// color [red green] [blue]
	// true false
}

func ExampleDecodeForest() {
	enc, _ := NewForestEncoder(2, 1)
	enc.AddColumn("x", nil)                                 //nolint:errcheck
	enc.AddColumn("color", []string{"red", "green", "blue"}) //nolint:errcheck
	enc.SetTree(0, 0, sampleTree(0))                         //nolint:errcheck
	enc.SetTree(1, 0, sampleTree(10))                        //nolint:errcheck
	data, _ := enc.Finish()

	model, _ := DecodeForest(data)
	row, _ := model.Row(map[string]string{"x": "3.1", "color": "blue"})
	preds, _ := model.Score(row)

	fmt.Println(model.Columns(), model.Compression())
	fmt.Println(preds)
	// Output:
	// [x color] Zstd
	// [16]
}
