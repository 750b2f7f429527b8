package graph

import (
	"bytes"
	"log/slog"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/format"
	"github.com/arloliu/canopy/internal/treetest"
	"github.com/arloliu/canopy/section"
	"github.com/arloliu/canopy/tree"
	"github.com/stretchr/testify/require"
)

var colorDomain = []string{"A", "B", "C", "D"}

func colorMeta() *StaticMetadata {
	return NewStaticMetadata([]string{"color", "size"}, [][]string{colorDomain, nil})
}

func buildOne(t *testing.T, n *treetest.Node, meta Metadata) *Subgraph {
	t.Helper()

	sg, err := BuildSubgraph(treetest.MustEncode(n), "t", meta, 1)
	require.NoError(t, err)

	return sg
}

func TestBuildSubgraph_CategoricalProvenance(t *testing.T) {
	// The root removes D, so the inner split sees {A,B,C} and peels off {B}.
	inner := treetest.Categorical(0, []int{1}, format.NaSplitNARight, treetest.Leaf(1), treetest.Leaf(2))
	root := treetest.Categorical(0, []int{3}, format.NaSplitNARight, inner, treetest.Leaf(3))

	sg := buildOne(t, root, colorMeta())

	n := sg.Root.Left
	require.Equal(t, []int{0, 1, 2}, n.InclusiveLevels.Levels())
	require.Equal(t, []string{"A", "C"}, n.Left.InclusiveLevels.Names(colorDomain))
	require.Equal(t, []string{"B"}, n.Right.InclusiveLevels.Names(colorDomain))
	require.Equal(t, []string{"D"}, sg.Root.Right.InclusiveLevels.Names(colorDomain))

	for i := range colorDomain {
		inLeft, inRight := n.Left.InclusiveLevels.Contains(i), n.Right.InclusiveLevels.Contains(i)
		require.False(t, inLeft && inRight, "level %d on both sides", i)
		require.Equal(t, n.InclusiveLevels.Contains(i), inLeft || inRight, "level %d", i)
	}

	require.Equal(t, []string{"A", "C"}, n.EdgeLevels(tree.Left))
	require.Equal(t, []string{"B"}, n.EdgeLevels(tree.Right))
}

func TestBuildSubgraph_UnrelatedSplitsKeepLineage(t *testing.T) {
	// color {D} -> size -> color {B}: the size split must not reset the color filter.
	inner := treetest.Categorical(0, []int{1}, format.NaSplitNALeft, treetest.Leaf(1), treetest.Leaf(2))
	size := treetest.Numeric(1, 10, format.NaSplitNALeft, inner, treetest.Leaf(3))
	root := treetest.Categorical(0, []int{3}, format.NaSplitNALeft, size, treetest.Leaf(4))

	sg := buildOne(t, root, colorMeta())

	sizeNode := sg.Root.Left
	require.Nil(t, sizeNode.Left.InclusiveLevels, "numeric split leaves levels unset")
	require.True(t, sizeNode.Left.InclusiveNA)
	require.False(t, sizeNode.Right.InclusiveNA)

	colorNode := sizeNode.Left
	require.Equal(t, []string{"A", "C"}, colorNode.EdgeLevels(tree.Left))
	require.Equal(t, []string{"B"}, colorNode.EdgeLevels(tree.Right))
	require.True(t, colorNode.Left.InclusiveNA)
	require.False(t, colorNode.Right.InclusiveNA)
}

func TestBuildSubgraph_NAProvenanceAcrossRepeatedSplits(t *testing.T) {
	deep := treetest.Numeric(0, 1, format.NaSplitNALeft, treetest.Leaf(5), treetest.Leaf(6))
	inner := treetest.Numeric(0, 2, format.NaSplitNARight, treetest.Leaf(1), deep)
	other := treetest.Numeric(0, 8, format.NaSplitLeft, treetest.Leaf(3), treetest.Leaf(4))
	root := treetest.Numeric(0, 5, format.NaSplitNALeft, inner, other)

	meta := NewStaticMetadata([]string{"x"}, nil)
	sg := buildOne(t, root, meta)

	require.True(t, sg.Root.Left.InclusiveNA)
	require.False(t, sg.Root.Right.InclusiveNA)

	// NA reaches root.Left and then goes right at inner.
	innerNode := sg.Root.Left
	require.False(t, innerNode.Left.InclusiveNA)
	require.True(t, innerNode.Right.InclusiveNA)

	deepNode := innerNode.Right
	require.True(t, deepNode.Left.InclusiveNA)
	require.False(t, deepNode.Right.InclusiveNA)

	// NA never reaches root.Right, so neither of its children can see it.
	otherNode := sg.Root.Right
	require.False(t, otherNode.Left.InclusiveNA)
	require.False(t, otherNode.Right.InclusiveNA)
}

func TestBuildSubgraph_NAvsRestLevels(t *testing.T) {
	inner := treetest.NAvsRest(0, treetest.Leaf(1), treetest.Leaf(2))
	root := treetest.Categorical(0, []int{0}, format.NaSplitNALeft, inner, treetest.Leaf(3))

	sg := buildOne(t, root, colorMeta())

	n := sg.Root.Left
	require.True(t, n.NAVsRest)
	require.False(t, n.Leftward)
	require.False(t, n.HasSplitValue)
	require.Equal(t, []string{"B", "C", "D"}, n.EdgeLevels(tree.Left))
	require.Empty(t, n.EdgeLevels(tree.Right))
	require.Equal(t, 0, n.Right.InclusiveLevels.Len())

	require.False(t, n.Left.InclusiveNA)
	require.True(t, n.Right.InclusiveNA)
}

func TestBuildSubgraph_ThresholdOnCategoricalColumn(t *testing.T) {
	root := treetest.Numeric(0, 1.5, format.NaSplitNARight, treetest.Leaf(1), treetest.Leaf(2))

	sg := buildOne(t, root, colorMeta())
	require.True(t, sg.Root.HasSplitValue)
	require.InDelta(t, 1.5, sg.Root.SplitValue, 0)
	require.Equal(t, []string{"A", "B"}, sg.Root.EdgeLevels(tree.Left))
	require.Equal(t, []string{"C", "D"}, sg.Root.EdgeLevels(tree.Right))
}

func TestBuildSubgraph_NumberingAndWeights(t *testing.T) {
	right := treetest.Numeric(1, 3, format.NaSplitNone, treetest.Leaf(2), treetest.Leaf(3)).WithWeights(5, 6)
	root := treetest.Numeric(1, 1, format.NaSplitNone, treetest.Leaf(1), right).WithWeights(10, 20)

	sg := buildOne(t, root, colorMeta())
	require.Len(t, sg.Nodes, 5)

	for i, n := range sg.Nodes {
		require.Equal(t, i, n.Number)
	}

	require.Same(t, sg.Root, sg.Nodes[0])
	require.Same(t, sg.Root.Right, sg.Nodes[1])
	require.Same(t, sg.Root.Right.Right, sg.Nodes[2])
	require.Same(t, sg.Root.Right.Left, sg.Nodes[3])
	require.Same(t, sg.Root.Left, sg.Nodes[4])

	require.Equal(t, "size", sg.Root.ColumnName)
	require.InDelta(t, 10, sg.Root.WeightLeft, 0)
	require.InDelta(t, 20, sg.Root.WeightRight, 0)

	// Leaves keep the weight of the edge that reaches them.
	require.InDelta(t, 10, sg.Root.Left.WeightLeft, 0)
	require.Zero(t, sg.Root.Left.WeightRight)

	// Internal children overwrite the seeded weights with their own.
	require.InDelta(t, 5, sg.Root.Right.WeightLeft, 0)
	require.InDelta(t, 6, sg.Root.Right.WeightRight, 0)
	require.InDelta(t, 6, sg.Root.Right.Right.WeightRight, 0)
	require.Zero(t, sg.Root.Right.Right.WeightLeft)

	require.Equal(t, 2, sg.MaxDepth())
	require.Len(t, sg.Leaves(), 3)
	require.Equal(t, 1, sg.Root.Left.Depth)
}

func TestBuildSubgraph_RecordLeaves(t *testing.T) {
	root := treetest.Numeric(0, 0, format.NaSplitNone, treetest.RecordLeaf(-1), treetest.RecordLeaf(7))
	root.PrefixWidth = 3

	sg := buildOne(t, root, NewStaticMetadata([]string{"x"}, nil))
	require.True(t, sg.Root.Left.IsLeaf)
	require.InDelta(t, -1, sg.Root.Left.LeafValue, 0)
	require.InDelta(t, 7, sg.Root.Right.LeafValue, 0)
	require.Equal(t, -1, sg.Root.Left.ColumnID)
}

func TestBuildSubgraph_SingleLeaf(t *testing.T) {
	sg := buildOne(t, treetest.Leaf(42), NewStaticMetadata(nil, nil))
	require.Len(t, sg.Nodes, 1)
	require.True(t, sg.Root.IsLeaf)
	require.InDelta(t, 42, sg.Root.LeafValue, 0)
	require.Zero(t, sg.MaxDepth())

	leaf, dirs, err := sg.Walk(nil)
	require.NoError(t, err)
	require.Same(t, sg.Root, leaf)
	require.Empty(t, dirs)
}

func TestBuildSubgraph_Errors(t *testing.T) {
	meta := colorMeta()

	_, err := BuildSubgraph(nil, "t", meta, 1)
	require.ErrorIs(t, err, errs.ErrEmptyTree)

	unknown := treetest.MustEncode(treetest.Numeric(5, 0, format.NaSplitNone, treetest.Leaf(1), treetest.Leaf(2)))
	_, err = BuildSubgraph(unknown, "t", meta, 1)
	require.ErrorIs(t, err, errs.ErrUnknownColumn)

	noDomain := treetest.MustEncode(treetest.Categorical(1, []int{0}, format.NaSplitNone, treetest.Leaf(1), treetest.Leaf(2)))
	_, err = BuildSubgraph(noDomain, "t", meta, 1)
	require.ErrorIs(t, err, errs.ErrMissingDomain)

	full := treetest.MustEncode(treetest.Numeric(1, 0, format.NaSplitNone, treetest.Leaf(1), treetest.Leaf(2)))
	_, err = BuildSubgraph(full[:len(full)-2], "t", meta, 1)
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)

	legacy := &treetest.Node{Column: 1, Split: format.SplitLegacy, Left: treetest.Leaf(1), Right: treetest.Leaf(2)}
	_, err = BuildSubgraph(treetest.MustEncode(legacy), "t", meta, 1)
	require.ErrorIs(t, err, errs.ErrUnsupportedSplitEncoding)
}

func testEnsemble(t *testing.T, groups, perGroup, nclasses int) *tree.Ensemble {
	t.Helper()

	trees := make([][]byte, groups*perGroup)
	for i := range trees {
		trees[i] = treetest.MustEncode(treetest.Numeric(1, float32(i), format.NaSplitNone, treetest.Leaf(0), treetest.Leaf(float32(i))))
	}

	ens, err := tree.NewEnsemble(trees, groups, perGroup, nclasses)
	require.NoError(t, err)

	return ens
}

func TestBuild_AllGroups(t *testing.T) {
	ens := testEnsemble(t, 3, 1, 1)

	g, err := Build(ens, colorMeta(), -1)
	require.NoError(t, err)
	require.Len(t, g.Subgraphs, 3)

	for j, sg := range g.Subgraphs {
		require.Equal(t, "Tree "+strconv.Itoa(j), sg.Name)
		require.Equal(t, j, sg.Index)
		require.InDelta(t, float32(j), sg.Root.Right.LeafValue, 0)
	}
}

func TestBuild_ClassNames(t *testing.T) {
	ens := testEnsemble(t, 2, 3, 3)
	meta := &StaticMetadata{
		Names:    []string{"color", "size", "species"},
		Domains:  [][]string{colorDomain, nil, {"setosa", "versicolor", "virginica"}},
		Response: 2,
		Classes:  3,
	}

	g, err := Build(ens, meta, 1)
	require.NoError(t, err)
	require.Len(t, g.Subgraphs, 3)
	require.Equal(t, "Tree 1, Class setosa", g.Subgraphs[0].Name)
	require.Equal(t, "Tree 1, Class versicolor", g.Subgraphs[1].Name)
	require.Equal(t, "Tree 1, Class virginica", g.Subgraphs[2].Name)

	// Group 1, class 2 is flat tree 2*2+1 = 5.
	require.InDelta(t, 5, g.Subgraphs[2].Root.SplitValue, 0)

	g, err = Build(ens, meta, 0, WithClassLabels(false))
	require.NoError(t, err)
	require.Equal(t, "Tree 0", g.Subgraphs[2].Name)
}

func TestBuild_InvalidTreeIndex(t *testing.T) {
	ens := testEnsemble(t, 2, 1, 1)

	_, err := Build(ens, colorMeta(), 2)
	require.ErrorIs(t, err, errs.ErrInvalidTreeIndex)

	_, err = Build(ens, colorMeta(), 1)
	require.NoError(t, err)
}

func TestBuild_WrapsSubgraphName(t *testing.T) {
	ens, err := tree.NewEnsemble([][]byte{{0x00, 0x01}}, 1, 1, 1)
	require.NoError(t, err)

	_, err = Build(ens, colorMeta(), -1)
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)
	require.Contains(t, err.Error(), "Tree 0")
}

func TestBuild_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Build(testEnsemble(t, 2, 1, 1), colorMeta(), -1, WithLogger(logger))
	require.NoError(t, err)
	require.Contains(t, buf.String(), "built subgraph")
	require.Contains(t, buf.String(), `name="Tree 1"`)
}

func TestBuild_Concurrency(t *testing.T) {
	ens := testEnsemble(t, 6, 3, 3)
	meta := colorMeta()

	want, err := Build(ens, meta, -1)
	require.NoError(t, err)

	got, err := Build(ens, meta, -1, WithConcurrency(4))
	require.NoError(t, err)
	require.Len(t, got.Subgraphs, 18)

	for i, sg := range got.Subgraphs {
		require.Equal(t, i, sg.Index)
		require.Equal(t, want.Subgraphs[i].Name, sg.Name)
		require.Len(t, sg.Nodes, len(want.Subgraphs[i].Nodes))
		require.InDelta(t, want.Subgraphs[i].Root.SplitValue, sg.Root.SplitValue, 0)
	}

	_, err = Build(ens, meta, -1, WithConcurrency(0))
	require.Error(t, err)
}

func TestBuild_ConcurrentFailure(t *testing.T) {
	trees := [][]byte{
		treetest.MustEncode(treetest.Leaf(1)),
		{0x00, 0x01},
		treetest.MustEncode(treetest.Leaf(2)),
	}
	ens, err := tree.NewEnsemble(trees, 3, 1, 1)
	require.NoError(t, err)

	_, err = Build(ens, colorMeta(), -1, WithConcurrency(3))
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)
	require.Contains(t, err.Error(), "Tree 1")
}

func TestBuildSubgraph_SmallInlineLeftLeaf(t *testing.T) {
	// type: left small leaf, numeric, right full leaf; column 0; NARight; threshold 5; weights 3 and 4.
	data := []byte{0xD0, 0x00, 0x00, 0x01, 0x00, 0x00, 0xA0, 0x40, 0x00, 0x00, 0x40, 0x40, 0x00, 0x00, 0x80, 0x40}
	// left value reads 4 bytes at the child data, right skips 1 byte when nclasses < 256.
	data = append(data, 0x00, 0x00, 0x00, 0x00, 0x40)
	meta := NewStaticMetadata([]string{"x"}, nil)

	sg, err := BuildSubgraph(data, "t", meta, 2)
	require.NoError(t, err)
	require.Len(t, sg.Nodes, 3)
	nt, err := section.ParseNodeType(data[0])
	require.NoError(t, err)
	require.Equal(t, format.ChildLeafSmall, nt.Left)

	require.True(t, sg.Root.Left.IsLeaf)
	require.True(t, sg.Root.Right.IsLeaf)
	require.InDelta(t, 0, sg.Root.Left.LeafValue, 0)
	require.InDelta(t, 2, sg.Root.Right.LeafValue, 0)
	require.InDelta(t, 3, sg.Root.Left.WeightLeft, 0)
	require.InDelta(t, 4, sg.Root.Right.WeightRight, 0)

	for _, row := range [][]float64{{7}, {3}, {math.NaN()}} {
		want, err := tree.ScoreTree(data, row, 2)
		require.NoError(t, err)

		leaf, _, err := sg.Walk(row)
		require.NoError(t, err)
		require.InDelta(t, want, float64(leaf.LeafValue), 0, "row %v", row)
	}

	// With 256 classes the small leaf is 2 bytes wide and the right value runs past the end.
	_, err = BuildSubgraph(data, "t", meta, 256)
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)
}

// spanChain encodes levels numeric nodes whose left subtree length prefix is
// size and whose right child is the next node, ending in a leaf record.
func spanChain(levels int, size byte) []byte {
	nt := section.NewNodeType(format.ChildLen1, format.SplitNumeric, format.ChildSubtree).Byte()

	var data []byte
	for range levels {
		data = append(data, nt, 0x00, 0x00, byte(format.NaSplitNARight))
		data = append(data, 0x00, 0x00, 0x00, 0x00) // threshold 0
		data = append(data, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)
		data = append(data, size)
	}

	return append(data, 0x00, 0xFF, 0xFF, 0x00, 0x00, 0x80, 0x3F)
}

func TestBuildSubgraph_LeftSpanIsEnforced(t *testing.T) {
	meta := NewStaticMetadata([]string{"x"}, nil)

	// Zero-length left spans would alias the right child at every level.
	for _, levels := range []int{1, 16, 22} {
		_, err := BuildSubgraph(spanChain(levels, 0), "t", meta, 1)
		require.ErrorIs(t, err, errs.ErrTruncatedRecord, "levels %d", levels)
		require.Contains(t, err.Error(), "shorter than a node record")
	}

	// A span that covers only part of the left subtree.
	partial := treetest.MustEncode(treetest.Numeric(0, 5, format.NaSplitNALeft,
		treetest.Numeric(0, 1, format.NaSplitNALeft, treetest.Leaf(1), treetest.Leaf(2)),
		treetest.Leaf(3)))
	require.Equal(t, byte(24), partial[16])
	partial[16] = section.LeafRecordSize
	_, err := BuildSubgraph(partial, "t", meta, 1)
	require.ErrorIs(t, err, errs.ErrTruncatedRecord)
}

func TestBuildSubgraph_NodeCountBoundedBySize(t *testing.T) {
	meta := NewStaticMetadata([]string{"x"}, nil)

	root := treetest.RecordLeaf(-1)
	for i := range 22 {
		root = treetest.Numeric(0, float32(i), format.NaSplitNARight, treetest.RecordLeaf(float32(i)), root)
	}
	data := treetest.MustEncode(root)

	sg, err := BuildSubgraph(data, "t", meta, 1)
	require.NoError(t, err)
	require.Len(t, sg.Nodes, 2*22+1)
	require.LessOrEqual(t, len(sg.Nodes), len(data)/section.LeafRecordSize)
}

func TestSubgraph_WalkErrors(t *testing.T) {
	sg := buildOne(t, treetest.Numeric(1, 0, format.NaSplitNone, treetest.Leaf(1), treetest.Leaf(2)), colorMeta())

	_, _, err := sg.Walk([]float64{1})
	require.ErrorIs(t, err, errs.ErrColumnOutOfRange)
}

// randomSchema mixes numeric columns with inline and ranged categorical ones.
var randomSchema = treetest.Schema{Levels: []int{0, 5, 40, 0, 3, 100}}

func randomMeta(schema treetest.Schema) *StaticMetadata {
	names := make([]string, len(schema.Levels))
	domains := make([][]string, len(schema.Levels))
	for col, n := range schema.Levels {
		names[col] = "c" + strconv.Itoa(col)
		if n == 0 {
			continue
		}
		domains[col] = make([]string, n)
		for l := range n {
			domains[col][l] = "L" + strconv.Itoa(l)
		}
	}

	return NewStaticMetadata(names, domains)
}

func TestBuildSubgraph_AgreesWithScorer(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	meta := randomMeta(randomSchema)

	for range 200 {
		root := treetest.RandomTree(rng, randomSchema, 8)
		data := treetest.MustEncode(root)

		sg, err := BuildSubgraph(data, "random", meta, 1)
		require.NoError(t, err)
		require.Len(t, sg.Nodes, root.Count())
		require.Equal(t, root.Depth(), sg.MaxDepth())

		for range 20 {
			row := treetest.RandomRow(rng, randomSchema)

			want, err := tree.ScoreTree(data, row, 1)
			require.NoError(t, err)
			path, err := tree.ScoreTreePath(data, row, 1)
			require.NoError(t, err)
			wantDirs, err := tree.DecodePath(path)
			require.NoError(t, err)

			leaf, dirs, err := sg.Walk(row)
			require.NoError(t, err)
			require.InDelta(t, want, float64(leaf.LeafValue), 0)
			require.Equal(t, wantDirs, append([]tree.Direction{}, dirs...))

			requireReachable(t, sg, row)
		}
	}
}

// requireReachable checks that every edge on the path of row admits the
// row's value according to the provenance of the child it leads to.
func requireReachable(t *testing.T, sg *Subgraph, row []float64) {
	t.Helper()

	for n := sg.Root; !n.IsLeaf; {
		d := row[n.ColumnID]
		child := n.Child(n.Route(d))

		switch {
		case math.IsNaN(d):
			require.True(t, child.InclusiveNA, "node %d: NA routed to a child without NA", n.Number)
		case n.Domain != nil:
			require.True(t, child.InclusiveLevels.Contains(int(d)),
				"node %d: level %v routed to a child excluding it", n.Number, d)
		}

		n = child
	}
}

func TestBuildSubgraph_ChildLevelsPartitionInherited(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	meta := randomMeta(randomSchema)

	for range 100 {
		sg, err := BuildSubgraph(treetest.MustEncode(treetest.RandomTree(rng, randomSchema, 6)), "random", meta, 1)
		require.NoError(t, err)

		for _, n := range sg.Nodes {
			if !n.IsCategorical() {
				continue
			}
			for l := range n.Domain {
				require.False(t, n.Left.InclusiveLevels.Contains(l) && n.Right.InclusiveLevels.Contains(l),
					"node %d level %d reaches both children", n.Number, l)
			}
			require.False(t, n.Left.InclusiveNA && n.Right.InclusiveNA, "node %d: NA reaches both children", n.Number)
		}
	}
}

func BenchmarkBuildSubgraph(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	data := treetest.MustEncode(treetest.RandomTree(rng, randomSchema, 10))
	meta := randomMeta(randomSchema)

	b.ReportAllocs()
	for b.Loop() {
		_, _ = BuildSubgraph(data, "bench", meta, 1)
	}
}
