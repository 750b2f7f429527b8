package tree

import (
	"fmt"

	"github.com/arloliu/canopy/errs"
)

// Ensemble is the grid of compressed trees composing one trained model.
//
// Trees are laid out flat; the tree for group g and class slot k sits at
// TreeIndex(g, k) = k*GroupCount + g. TreesPerGroup is 1 for regression and
// binomial models and the number of classes for multinomial ones.
//
// An Ensemble is immutable after construction and safe for concurrent use.
type Ensemble struct {
	Trees         [][]byte
	GroupCount    int
	TreesPerGroup int
	NumClasses    int
}

// NewEnsemble creates an Ensemble and validates its shape.
//
// Parameters:
//   - trees: Compressed trees in flat order (len must be groupCount*treesPerGroup)
//   - groupCount: Number of tree groups (boosting rounds or forest size)
//   - treesPerGroup: Number of trees per group
//   - nclasses: Number of output classes, 1 for regression
//
// Returns:
//   - *Ensemble: The ensemble, sharing the trees slice
//   - error: ErrInvalidEnsembleShape or ErrInvalidNumClasses
func NewEnsemble(trees [][]byte, groupCount, treesPerGroup, nclasses int) (*Ensemble, error) {
	if groupCount <= 0 || treesPerGroup <= 0 || len(trees) != groupCount*treesPerGroup {
		return nil, fmt.Errorf("%w: %d trees for %d groups of %d", errs.ErrInvalidEnsembleShape, len(trees), groupCount, treesPerGroup)
	}

	if nclasses <= 0 || (nclasses == 1 && treesPerGroup != 1) {
		return nil, fmt.Errorf("%w: %d classes with %d trees per group", errs.ErrInvalidNumClasses, nclasses, treesPerGroup)
	}

	if nclasses > 1 && treesPerGroup > nclasses {
		return nil, fmt.Errorf("%w: %d trees per group exceed %d classes", errs.ErrInvalidNumClasses, treesPerGroup, nclasses)
	}

	return &Ensemble{
		Trees:         trees,
		GroupCount:    groupCount,
		TreesPerGroup: treesPerGroup,
		NumClasses:    nclasses,
	}, nil
}

// TreeIndex maps a (group, class slot) pair to its position in Trees.
func (e *Ensemble) TreeIndex(group, class int) int {
	return class*e.GroupCount + group
}

// Tree returns the compressed tree for a group and class slot.
func (e *Ensemble) Tree(group, class int) ([]byte, error) {
	if group < 0 || group >= e.GroupCount || class < 0 || class >= e.TreesPerGroup {
		return nil, fmt.Errorf("%w: group %d class %d, ensemble is %dx%d",
			errs.ErrInvalidTreeIndex, group, class, e.GroupCount, e.TreesPerGroup)
	}

	return e.Trees[e.TreeIndex(group, class)], nil
}

// OutputSize returns the length of the prediction vector: 1 for regression,
// NumClasses+1 otherwise, slot 0 being reserved for the predicted label.
func (e *Ensemble) OutputSize() int {
	if e.NumClasses == 1 {
		return 1
	}

	return e.NumClasses + 1
}

// Score sums the tree predictions for row into a new output vector.
func (e *Ensemble) Score(row []float64) ([]float64, error) {
	preds := make([]float64, e.OutputSize())
	if err := e.ScoreInto(row, preds); err != nil {
		return nil, err
	}

	return preds, nil
}

// ScoreInto sums the tree predictions for row into preds without allocating.
//
// preds is zeroed first and must hold at least OutputSize values. For tree
// slot i the target is preds[0] for regression and preds[i+1] otherwise;
// groups are summed in ascending order.
func (e *Ensemble) ScoreInto(row []float64, preds []float64) error {
	if len(preds) < e.OutputSize() {
		return fmt.Errorf("%w: need %d values, have %d", errs.ErrInvalidOutputSize, e.OutputSize(), len(preds))
	}

	clear(preds)

	for i := range e.TreesPerGroup {
		k := 0
		if e.NumClasses != 1 {
			k = i + 1
		}

		for j := range e.GroupCount {
			v, err := ScoreTree(e.Trees[e.TreeIndex(j, i)], row, e.NumClasses)
			if err != nil {
				return fmt.Errorf("tree %d (group %d, class %d): %w", e.TreeIndex(j, i), j, i, err)
			}
			preds[k] += v
		}
	}

	return nil
}

// ScorePaths returns the decision path of row in every tree, in flat tree order.
func (e *Ensemble) ScorePaths(row []float64) ([]DecisionPath, error) {
	paths := make([]DecisionPath, len(e.Trees))
	for idx, t := range e.Trees {
		p, err := ScoreTreePath(t, row, e.NumClasses)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", idx, err)
		}
		paths[idx] = p
	}

	return paths, nil
}
