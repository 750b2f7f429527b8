package graph

import "github.com/arloliu/canopy/tree"

// Graph is the set of reconstructed trees of an ensemble.
type Graph struct {
	Subgraphs []*Subgraph
}

// Subgraph is one reconstructed tree. Nodes lists every node in creation
// order, so Nodes[i].Number == i and Nodes[0] is the root.
type Subgraph struct {
	Index int
	Name  string
	Root  *Node
	Nodes []*Node
}

func newSubgraph(index int, name string) *Subgraph {
	sg := &Subgraph{Index: index, Name: name}
	sg.Root = sg.newNode(0)

	return sg
}

func (sg *Subgraph) newNode(depth int) *Node {
	n := &Node{Number: len(sg.Nodes), Depth: depth, ColumnID: -1}
	sg.Nodes = append(sg.Nodes, n)

	return n
}

// Walk routes row from the root to a leaf and returns the leaf and the
// directions taken.
func (sg *Subgraph) Walk(row []float64) (*Node, []tree.Direction, error) {
	n := sg.Root
	var dirs []tree.Direction

	for !n.IsLeaf {
		if n.ColumnID >= len(row) {
			return nil, nil, columnOutOfRange(n.ColumnID, len(row))
		}

		dir := n.Route(row[n.ColumnID])
		dirs = append(dirs, dir)
		n = n.Child(dir)
	}

	return n, dirs, nil
}

// MaxDepth returns the depth of the deepest node.
func (sg *Subgraph) MaxDepth() int {
	depth := 0
	for _, n := range sg.Nodes {
		depth = max(depth, n.Depth)
	}

	return depth
}

// Leaves returns the leaf nodes in creation order.
func (sg *Subgraph) Leaves() []*Node {
	var leaves []*Node
	for _, n := range sg.Nodes {
		if n.IsLeaf {
			leaves = append(leaves, n)
		}
	}

	return leaves
}
