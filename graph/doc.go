// Package graph reconstructs compressed trees into explicit node graphs.
//
// Where the tree package follows a single root-to-leaf path, Build and
// BuildSubgraph decode every node of a tree and materialize it as a Node with
// both children, column names, split details and sample weights. Each node
// also carries provenance: whether a missing value can reach it
// (InclusiveNA) and, for categorical columns, which domain levels can
// (InclusiveLevels). Provenance is computed per column from the nearest
// ancestor that split on the same column, so repeated splits on one column
// narrow the sets along the path.
//
// Graphs are built per call and share nothing, so concurrent builds are safe.
// A built graph is read-only by convention.
//
// Example:
//
//	g, err := graph.Build(ens, meta, -1)
//	if err != nil {
//		return err
//	}
//	for _, sg := range g.Subgraphs {
//		fmt.Println(sg.Name, len(sg.Nodes))
//	}
package graph
