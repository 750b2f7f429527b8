package tree

import (
	"fmt"

	"github.com/arloliu/canopy/encoding"
	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/section"
)

// Mode selects what a single-tree walk produces.
type Mode uint8

const (
	// ModeValue returns the value of the reached leaf.
	ModeValue Mode = iota
	// ModePath returns the packed decision path to the reached leaf.
	ModePath
)

// Result is the outcome of Score. Value is set in ModeValue, Path in ModePath.
type Result struct {
	Value float64
	Path  DecisionPath
}

// ScoreTree routes row through tree and returns the value of the reached leaf.
//
// Categorical values are level indices stored as floats, missing values are
// NaN. nclasses only affects the width of small inline leaves.
//
// ScoreTree does not allocate on success and is safe for concurrent use on the
// same tree.
func ScoreTree(tree []byte, row []float64, nclasses int) (float64, error) {
	leaf, _, err := walk(tree, row, nclasses, ModeValue)
	if err != nil {
		return 0, err
	}

	return float64(leaf), nil
}

// ScoreTreePath routes row through tree and returns the decision path taken.
func ScoreTreePath(tree []byte, row []float64, nclasses int) (DecisionPath, error) {
	_, path, err := walk(tree, row, nclasses, ModePath)

	return path, err
}

// Score routes row through tree and returns the leaf value or the decision
// path depending on mode.
func Score(tree []byte, row []float64, nclasses int, mode Mode) (Result, error) {
	leaf, path, err := walk(tree, row, nclasses, mode)
	if err != nil {
		return Result{}, err
	}

	return Result{Value: float64(leaf), Path: path}, nil
}

func walk(tree []byte, row []float64, nclasses int, mode Mode) (float32, DecisionPath, error) {
	if len(tree) == 0 {
		return 0, 0, errs.ErrEmptyTree
	}

	c := encoding.NewCursor(tree)
	var path DecisionPath
	level := 0

	for {
		var h NodeHeader
		if err := ReadNodeHeader(&c, &h); err != nil {
			return 0, 0, err
		}

		// A child stored as a full record rather than inline, or a single-leaf tree.
		if h.IsLeaf() {
			return h.LeafValue, markLeaf(path, level), nil
		}

		if h.Column >= len(row) {
			return 0, 0, fmt.Errorf("%w: column %d, row has %d values", errs.ErrColumnOutOfRange, h.Column, len(row))
		}

		next := h.Type.Left
		if h.GoesRight(row[h.Column]) {
			if err := skipLeft(&c, h.Type, nclasses); err != nil {
				return 0, 0, err
			}
			if level < section.MaxPathDepth {
				path |= 1 << level
			}
			next = h.Type.Right
		} else if next.HasLengthPrefix() {
			size, err := leftSpan(&c, h.Type)
			if err != nil {
				return 0, 0, err
			}
			if c, err = c.Limit(size); err != nil {
				return 0, 0, err
			}
		}

		level++

		if next.IsLeaf() {
			if mode == ModePath {
				return 0, markLeaf(path, level), nil
			}

			v, err := c.Float32()

			return v, 0, err
		}
	}
}

func markLeaf(path DecisionPath, level int) DecisionPath {
	if level < section.MaxPathDepth {
		path |= 1 << level
	}

	return path
}
