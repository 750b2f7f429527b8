package graph

import (
	"math"

	"github.com/arloliu/canopy/encoding"
	"github.com/arloliu/canopy/format"
	"github.com/arloliu/canopy/tree"
)

// Node is one node of a reconstructed tree.
//
// An internal node always has both children. Split fields are zero on leaves;
// SplitValue is meaningful only when HasSplitValue is set and Subset only when
// Split is a bitset kind, neither is set under NAVsRest.
type Node struct {
	// Number is the creation index of the node within its subgraph.
	Number int
	Depth  int

	ColumnID   int
	ColumnName string
	// Domain holds the level names of a categorical split column.
	Domain []string

	NASplit       format.NaSplitDir
	NAVsRest      bool
	Leftward      bool
	Split         format.SplitKind
	SplitValue    float32
	HasSplitValue bool
	Subset        encoding.Bitset

	IsLeaf    bool
	LeafValue float32

	WeightLeft  float32
	WeightRight float32

	Left  *Node
	Right *Node

	// InclusiveNA reports whether a missing value of the parent split column
	// can reach this node.
	InclusiveNA bool
	// InclusiveLevels holds the levels of the parent split column that can
	// reach this node. It is nil when the parent column is numeric or when no
	// ancestor has filtered the column.
	InclusiveLevels *LevelSet
}

// Route returns the direction value d takes at an internal node, following
// the same rule as tree.ScoreTree.
func (n *Node) Route(d float64) tree.Direction {
	if n.goesRight(d) {
		return tree.Right
	}

	return tree.Left
}

func (n *Node) goesRight(d float64) bool {
	if math.IsNaN(d) {
		return !n.Leftward
	}
	if n.NAVsRest {
		return false
	}
	if n.Split.IsBitset() {
		return n.Subset.Contains(tree.LevelIndex(d))
	}

	return d >= float64(n.SplitValue)
}

// levelGoesRight reports whether level index i of a categorical column is
// routed right.
func (n *Node) levelGoesRight(i int) bool {
	if n.NAVsRest {
		return false
	}
	if n.Split.IsBitset() {
		return n.Subset.Contains(i)
	}

	return float64(i) >= float64(n.SplitValue)
}

// Child returns the child in direction dir.
func (n *Node) Child(dir tree.Direction) *Node {
	if dir == tree.Right {
		return n.Right
	}

	return n.Left
}

// EdgeLevels returns the domain level names that flow from n to its child in
// direction dir. It returns nil for leaves and numeric splits.
func (n *Node) EdgeLevels(dir tree.Direction) []string {
	if n.IsLeaf || n.Domain == nil {
		return nil
	}

	child := n.Child(dir)
	if child == nil {
		return nil
	}

	return child.InclusiveLevels.Names(n.Domain)
}

// IsCategorical reports whether the node splits on a column with a domain.
func (n *Node) IsCategorical() bool {
	return !n.IsLeaf && n.Domain != nil
}
