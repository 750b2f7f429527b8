package tree

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/arloliu/canopy/errs"
)

// Direction is one routing decision on a decision path.
type Direction uint8

const (
	Left  Direction = 0
	Right Direction = 1
)

func (d Direction) String() string {
	if d == Right {
		return "R"
	}

	return "L"
}

// DecisionPath is the packed record of the left/right choices made while
// scoring one row against one tree.
//
// Bit i is 1 iff the row went right at depth i. One extra marker bit is set
// at the depth of the reached leaf, so the highest set bit gives the path
// length. Depths of 64 and beyond cannot be represented; the prediction is
// unaffected but the path loses fidelity.
type DecisionPath uint64

// Depth returns the depth of the leaf the path ends in.
func (p DecisionPath) Depth() (int, error) {
	if p == 0 {
		return 0, errs.ErrMalformedPath
	}

	return bits.Len64(uint64(p)) - 1, nil
}

// Directions decodes the path into its sequence of directions.
func (p DecisionPath) Directions() ([]Direction, error) {
	return DecodePath(p)
}

// String renders the path as a sequence of "L" and "R", or "" if it is malformed.
func (p DecisionPath) String() string {
	depth, err := p.Depth()
	if err != nil {
		return ""
	}

	var sb strings.Builder
	sb.Grow(depth)
	for i := range depth {
		sb.WriteString(Direction((p >> i) & 1).String())
	}

	return sb.String()
}

// Float64 returns the path reinterpreted as the bits of a float64, the form
// leaf assignments take in prediction frames that only carry doubles.
func (p DecisionPath) Float64() float64 {
	return math.Float64frombits(uint64(p))
}

// PathFromFloat64 is the inverse of DecisionPath.Float64.
func PathFromFloat64(v float64) DecisionPath {
	return DecisionPath(math.Float64bits(v))
}

// DecodePath decodes a packed path into its directions, root first.
//
// The terminal marker bit is dropped. A zero path has no marker and fails
// with errs.ErrMalformedPath.
func DecodePath(p DecisionPath) ([]Direction, error) {
	depth, err := p.Depth()
	if err != nil {
		return nil, fmt.Errorf("%w: %#x", err, uint64(p))
	}

	dirs := make([]Direction, depth)
	for i := range dirs {
		dirs[i] = Direction((p >> i) & 1)
	}

	return dirs, nil
}
