// Package treetest builds compressed tree buffers for tests and examples.
//
// It is the inverse of the tree readers: a Node describes a decision tree as
// plain pointers and Encode lays it out in the compressed node-record format.
// Node.Predict is a reference evaluator over the pointer form, used to cross
// check the byte-level scorer and the graph builder.
package treetest

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/arloliu/canopy/encoding"
	"github.com/arloliu/canopy/endian"
	"github.com/arloliu/canopy/format"
	"github.com/arloliu/canopy/section"
)

// Node describes one node of a tree to encode.
type Node struct {
	// Leaf marks a terminal node holding Value.
	Leaf  bool
	Value float32
	// Record encodes a leaf child as a full leaf record (column id 0xFFFF)
	// behind a length prefix instead of an inline value.
	Record bool

	Column    int
	NA        format.NaSplitDir
	Split     format.SplitKind
	Threshold float32
	// Levels are the subset members of a categorical split.
	Levels []int
	// BitOffset and NumBits shape a ranged subset. NumBits 0 means just wide enough.
	BitOffset int
	NumBits   int
	// PrefixWidth forces the byte width of the left subtree length prefix. 0 means minimal.
	PrefixWidth int

	WeightLeft  float32
	WeightRight float32

	Left  *Node
	Right *Node
}

// Leaf returns an inline leaf.
func Leaf(v float32) *Node {
	return &Node{Leaf: true, Value: v}
}

// RecordLeaf returns a leaf encoded as a full node record.
func RecordLeaf(v float32) *Node {
	return &Node{Leaf: true, Value: v, Record: true}
}

// Numeric returns a threshold split: values >= threshold go right.
func Numeric(col int, threshold float32, na format.NaSplitDir, left, right *Node) *Node {
	return &Node{Column: col, Split: format.SplitNumeric, Threshold: threshold, NA: na, Left: left, Right: right}
}

// Categorical returns an inline subset split: members go right.
func Categorical(col int, levels []int, na format.NaSplitDir, left, right *Node) *Node {
	return &Node{Column: col, Split: format.SplitBitsetInline, Levels: levels, NA: na, Left: left, Right: right}
}

// Ranged returns a ranged subset split starting at bitOffset: members go right.
func Ranged(col, bitOffset int, levels []int, na format.NaSplitDir, left, right *Node) *Node {
	return &Node{Column: col, Split: format.SplitBitsetRanged, BitOffset: bitOffset, Levels: levels, NA: na, Left: left, Right: right}
}

// NAvsRest returns a split that sends every present value left and missing values right.
func NAvsRest(col int, left, right *Node) *Node {
	return &Node{Column: col, NA: format.NaSplitNAvsREST, Left: left, Right: right}
}

// WithWeights sets the node sample weights and returns the node.
func (n *Node) WithWeights(left, right float32) *Node {
	n.WeightLeft = left
	n.WeightRight = right

	return n
}

// Encode lays out the tree rooted at n in the compressed format.
func Encode(n *Node) ([]byte, error) {
	return appendNode(nil, n)
}

// MustEncode is like Encode but panics on error.
func MustEncode(n *Node) []byte {
	b, err := Encode(n)
	if err != nil {
		panic(err)
	}

	return b
}

func appendNode(dst []byte, n *Node) ([]byte, error) {
	engine := endian.GetTreeEngine()

	if n == nil {
		return nil, fmt.Errorf("nil node")
	}

	if n.Leaf {
		dst = append(dst, 0)
		dst = engine.AppendUint16(dst, section.LeafColumnID)

		return engine.AppendUint32(dst, math.Float32bits(n.Value)), nil
	}

	if n.Left == nil || n.Right == nil {
		return nil, fmt.Errorf("internal node on column %d needs two children", n.Column)
	}
	if n.Column < 0 || n.Column >= section.LeafColumnID {
		return nil, fmt.Errorf("column %d out of range", n.Column)
	}

	var leftMode, rightMode format.ChildMode
	var leftPart []byte

	if n.Left.Leaf && !n.Left.Record {
		leftMode = format.ChildLeafFull
		leftPart = engine.AppendUint32(nil, math.Float32bits(n.Left.Value))
	} else {
		sub, err := appendNode(nil, n.Left)
		if err != nil {
			return nil, err
		}

		width := n.PrefixWidth
		if width == 0 {
			width = prefixWidth(len(sub))
		}
		if width < 1 || width > 4 || uint64(len(sub)) >= 1<<(8*uint(width)) {
			return nil, fmt.Errorf("left subtree of %d bytes does not fit a %d byte prefix", len(sub), width)
		}

		leftMode = format.ChildMode(width - 1)
		for i := range width {
			leftPart = append(leftPart, byte(len(sub)>>(8*i)))
		}
		leftPart = append(leftPart, sub...)
	}

	var rightPart []byte
	if n.Right.Leaf && !n.Right.Record {
		rightMode = format.ChildLeafFull
		rightPart = engine.AppendUint32(nil, math.Float32bits(n.Right.Value))
	} else {
		sub, err := appendNode(nil, n.Right)
		if err != nil {
			return nil, err
		}
		rightMode = format.ChildSubtree
		rightPart = sub
	}

	dst = append(dst, section.NewNodeType(leftMode, n.Split, rightMode).Byte())
	dst = engine.AppendUint16(dst, uint16(n.Column)) //nolint:gosec
	dst = append(dst, byte(n.NA))

	if !n.NA.NAvsRest() {
		var err error
		if dst, err = n.appendSplit(dst); err != nil {
			return nil, err
		}
	}

	dst = engine.AppendUint32(dst, math.Float32bits(n.WeightLeft))
	dst = engine.AppendUint32(dst, math.Float32bits(n.WeightRight))
	dst = append(dst, leftPart...)

	return append(dst, rightPart...), nil
}

func (n *Node) appendSplit(dst []byte) ([]byte, error) {
	engine := endian.GetTreeEngine()

	switch n.Split {
	case format.SplitNumeric:
		return engine.AppendUint32(dst, math.Float32bits(n.Threshold)), nil
	case format.SplitBitsetInline:
		bits := make([]byte, encoding.InlineBitsetBits/8)
		for _, l := range n.Levels {
			if l < 0 || l >= encoding.InlineBitsetBits {
				return nil, fmt.Errorf("level %d does not fit an inline bitset", l)
			}
			bits[l>>3] |= 1 << (l & 7)
		}

		return append(dst, bits...), nil
	case format.SplitBitsetRanged:
		nbits := n.NumBits
		for _, l := range n.Levels {
			if l-n.BitOffset+1 > nbits && n.NumBits == 0 {
				nbits = l - n.BitOffset + 1
			}
		}
		bits := make([]byte, encoding.BitsetBytes(nbits))
		for _, l := range n.Levels {
			idx := l - n.BitOffset
			if idx < 0 || idx >= nbits {
				return nil, fmt.Errorf("level %d outside ranged bitset [%d,%d)", l, n.BitOffset, n.BitOffset+nbits)
			}
			bits[idx>>3] |= 1 << (idx & 7)
		}
		dst = engine.AppendUint16(dst, uint16(n.BitOffset)) //nolint:gosec
		dst = engine.AppendUint32(dst, uint32(nbits))       //nolint:gosec

		return append(dst, bits...), nil
	default:
		// Lets tests produce the retired encoding.
		return dst, nil
	}
}

func prefixWidth(size int) int {
	switch {
	case size < 1<<8:
		return 1
	case size < 1<<16:
		return 2
	case size < 1<<24:
		return 3
	default:
		return 4
	}
}

// GoesRight applies the routing rule of a split node to a value.
func (n *Node) GoesRight(d float64) bool {
	if math.IsNaN(d) {
		return !n.NA.MissingGoesLeft()
	}
	if n.NA.NAvsRest() {
		return false
	}
	if n.Split == format.SplitNumeric {
		return d >= float64(n.Threshold)
	}

	for _, l := range n.Levels {
		if d >= 0 && int(d) == l {
			return true
		}
	}

	return false
}

// Predict walks the pointer tree and returns the leaf value and the "L"/"R" path taken.
func (n *Node) Predict(row []float64) (float32, string) {
	path := make([]byte, 0, 8)
	cur := n
	for !cur.Leaf {
		if cur.GoesRight(row[cur.Column]) {
			path = append(path, 'R')
			cur = cur.Right
		} else {
			path = append(path, 'L')
			cur = cur.Left
		}
	}

	return cur.Value, string(path)
}

// Depth returns the depth of the deepest leaf below n.
func (n *Node) Depth() int {
	if n.Leaf {
		return 0
	}

	return 1 + max(n.Left.Depth(), n.Right.Depth())
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	if n.Leaf {
		return 1
	}

	return 1 + n.Left.Count() + n.Right.Count()
}

// Schema describes the columns random trees split on.
type Schema struct {
	// Levels holds the domain size of each column, 0 for numeric columns.
	Levels []int
}

// RandomTree generates a random tree of at most maxDepth levels over the schema.
func RandomTree(rng *rand.Rand, schema Schema, maxDepth int) *Node {
	if maxDepth == 0 || (maxDepth < 6 && rng.IntN(4) == 0) {
		leaf := Leaf(float32(rng.IntN(2000)-1000) / 8)
		leaf.Record = rng.IntN(5) == 0

		return leaf
	}

	col := rng.IntN(len(schema.Levels))
	left := RandomTree(rng, schema, maxDepth-1)
	right := RandomTree(rng, schema, maxDepth-1)
	na := format.NaSplitDir(rng.IntN(6))

	var n *Node
	switch nlevels := schema.Levels[col]; {
	case na == format.NaSplitNAvsREST:
		n = NAvsRest(col, left, right)
	case nlevels == 0:
		n = Numeric(col, float32(rng.IntN(200)-100)/4, na, left, right)
	case nlevels <= encoding.InlineBitsetBits && rng.IntN(2) == 0:
		n = Categorical(col, randomLevels(rng, 0, nlevels), na, left, right)
	default:
		offset := rng.IntN(nlevels)
		n = Ranged(col, offset, randomLevels(rng, offset, nlevels), na, left, right)
	}

	if rng.IntN(8) == 0 {
		n.PrefixWidth = 2 + rng.IntN(3)
	}

	return n.WithWeights(float32(rng.IntN(100)), float32(rng.IntN(100)))
}

func randomLevels(rng *rand.Rand, from, to int) []int {
	var levels []int
	for l := from; l < to; l++ {
		if rng.IntN(2) == 0 {
			levels = append(levels, l)
		}
	}

	return levels
}

// RandomRow generates a row for the schema with roughly one missing value in eight.
func RandomRow(rng *rand.Rand, schema Schema) []float64 {
	row := make([]float64, len(schema.Levels))
	for i, nlevels := range schema.Levels {
		switch {
		case rng.IntN(8) == 0:
			row[i] = math.NaN()
		case nlevels == 0:
			row[i] = float64(rng.IntN(240)-120) / 4
		default:
			row[i] = float64(rng.IntN(nlevels))
		}
	}

	return row
}
