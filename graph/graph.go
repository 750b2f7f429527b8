package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/arloliu/canopy/encoding"
	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/format"
	"github.com/arloliu/canopy/tree"
	"golang.org/x/sync/errgroup"
)

// Build reconstructs the trees of an ensemble.
//
// A negative treeIndex builds every group; otherwise only group treeIndex is
// built. Each group contributes one subgraph per class slot, named "Tree j"
// with a ", Class X" suffix when the response column has a domain.
//
// Parameters:
//   - ens: The ensemble holding the compressed trees
//   - meta: Column names and domains of the model
//   - treeIndex: Group to build, or a negative value for all groups
//   - opts: Build options
//
// Subgraphs are built one at a time unless WithConcurrency allows more.
//
// Returns:
//   - *Graph: The reconstructed trees in group then class order
//   - error: ErrInvalidTreeIndex, ErrUnknownColumn, ErrMissingDomain or a tree decoding error
func Build(ens *tree.Ensemble, meta Metadata, treeIndex int, opts ...BuildOption) (*Graph, error) {
	if treeIndex >= ens.GroupCount {
		return nil, fmt.Errorf("%w: tree %d does not exist (max %d)", errs.ErrInvalidTreeIndex, treeIndex, ens.GroupCount)
	}

	cfg, err := newBuildConfig(opts)
	if err != nil {
		return nil, err
	}

	first, last := 0, ens.GroupCount-1
	if treeIndex >= 0 {
		first, last = treeIndex, treeIndex
	}

	var classes []string
	if resp := meta.ResponseIndex(); cfg.classLabels && resp >= 0 {
		classes = meta.Domain(resp)
	}

	g := &Graph{Subgraphs: make([]*Subgraph, (last-first+1)*ens.TreesPerGroup)}

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(cfg.concurrency)

	for j := first; j <= last; j++ {
		for i := range ens.TreesPerGroup {
			index := (j-first)*ens.TreesPerGroup + i
			name := "Tree " + strconv.Itoa(j)
			if i < len(classes) {
				name += ", Class " + classes[i]
			}
			data := ens.Trees[ens.TreeIndex(j, i)]

			eg.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}

				sg, err := buildSubgraph(data, index, name, meta, ens.NumClasses, cfg)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				g.Subgraphs[index] = sg

				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return g, nil
}

// BuildSubgraph reconstructs a single compressed tree.
//
// nclasses must match the model the tree belongs to; it selects the width of
// small inline leaves.
func BuildSubgraph(data []byte, name string, meta Metadata, nclasses int, opts ...BuildOption) (*Subgraph, error) {
	cfg, err := newBuildConfig(opts)
	if err != nil {
		return nil, err
	}

	return buildSubgraph(data, 0, name, meta, nclasses, cfg)
}

func buildSubgraph(data []byte, index int, name string, meta Metadata, nclasses int, cfg *BuildConfig) (*Subgraph, error) {
	if len(data) == 0 {
		return nil, errs.ErrEmptyTree
	}

	b := &builder{
		sg:       newSubgraph(index, name),
		meta:     meta,
		columns:  meta.Columns(),
		nclasses: nclasses,
	}
	b.lineage = make([]provenance, len(b.columns))

	if err := b.visit(b.sg.Root, encoding.NewCursor(data)); err != nil {
		return nil, err
	}

	cfg.logger.Debug("built subgraph",
		slog.String("name", name),
		slog.Int("nodes", len(b.sg.Nodes)),
		slog.Int("depth", b.sg.MaxDepth()),
	)

	return b.sg, nil
}

// provenance is what an ancestor split on a column lets through to the child
// on the current path.
type provenance struct {
	seen   bool
	na     bool
	levels *LevelSet
}

type builder struct {
	sg       *Subgraph
	meta     Metadata
	columns  []string
	nclasses int
	// lineage holds, per column id, the provenance of the child below the
	// nearest ancestor that split on that column.
	lineage []provenance
}

// visit decodes the node record at c into n and builds its children.
func (b *builder) visit(n *Node, c encoding.Cursor) error {
	var h tree.NodeHeader
	if err := tree.ReadNodeHeader(&c, &h); err != nil {
		return err
	}

	if h.IsLeaf() {
		n.IsLeaf = true
		n.LeafValue = h.LeafValue

		return nil
	}

	if err := b.describe(n, &h); err != nil {
		return err
	}

	left, right, err := tree.ChildCursors(c, h.Type, b.nclasses)
	if err != nil {
		return err
	}

	if err := b.child(n, right, h.Type.Right, tree.Right); err != nil {
		return err
	}

	return b.child(n, left, h.Type.Left, tree.Left)
}

// describe copies the split of h into n.
func (b *builder) describe(n *Node, h *tree.NodeHeader) error {
	if h.Column >= len(b.columns) {
		return fmt.Errorf("%w: column %d, model has %d columns", errs.ErrUnknownColumn, h.Column, len(b.columns))
	}

	n.ColumnID = h.Column
	n.ColumnName = b.columns[h.Column]
	n.Domain = b.meta.Domain(h.Column)
	n.NASplit = h.NA
	n.NAVsRest = h.NA.NAvsRest()
	n.Leftward = h.NA.MissingGoesLeft()
	n.Split = h.Type.Split
	n.WeightLeft = h.WeightLeft
	n.WeightRight = h.WeightRight

	if n.NAVsRest {
		return nil
	}

	if h.Type.Split == format.SplitNumeric {
		n.SplitValue = h.Threshold
		n.HasSplitValue = true

		return nil
	}

	if n.Domain == nil {
		return fmt.Errorf("%w: column %d (%s)", errs.ErrMissingDomain, h.Column, n.ColumnName)
	}
	n.Subset = h.Subset

	return nil
}

// child creates the child of parent in direction dir, links it and, unless it
// is an inline leaf, decodes its subtree with the lineage updated.
func (b *builder) child(parent *Node, c encoding.Cursor, mode format.ChildMode, dir tree.Direction) error {
	n := b.sg.newNode(parent.Depth + 1)
	if dir == tree.Right {
		parent.Right = n
		n.WeightRight = parent.WeightRight
	} else {
		parent.Left = n
		n.WeightLeft = parent.WeightLeft
	}

	prov := b.link(parent, n, dir)

	if mode.IsLeaf() {
		v, err := c.Float32()
		if err != nil {
			return err
		}
		n.IsLeaf = true
		n.LeafValue = v

		return nil
	}

	col := parent.ColumnID
	saved := b.lineage[col]
	b.lineage[col] = prov
	err := b.visit(n, c)
	b.lineage[col] = saved

	return err
}

// link computes the provenance of child for the split column of parent.
func (b *builder) link(parent, child *Node, dir tree.Direction) provenance {
	inherited := b.lineage[parent.ColumnID]
	naEdge := parent.Leftward == (dir == tree.Left)

	child.InclusiveNA = naEdge && (!inherited.seen || inherited.na)

	if parent.Domain != nil {
		levels := NewLevelSet(len(parent.Domain))
		for i := range parent.Domain {
			if inherited.levels.Contains(i) && parent.levelGoesRight(i) == (dir == tree.Right) {
				levels.Add(i)
			}
		}
		child.InclusiveLevels = levels
	}

	return provenance{seen: true, na: child.InclusiveNA, levels: child.InclusiveLevels}
}

func columnOutOfRange(col, n int) error {
	return fmt.Errorf("%w: column %d, row has %d values", errs.ErrColumnOutOfRange, col, n)
}
