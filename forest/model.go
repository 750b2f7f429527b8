package forest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/format"
	"github.com/arloliu/canopy/graph"
	"github.com/arloliu/canopy/internal/hash"
	"github.com/arloliu/canopy/tree"
)

// Model is a decoded forest container.
type Model struct {
	ensemble    *tree.Ensemble
	names       []string
	domains     [][]string
	response    int
	compression format.CompressionType
	// Exactly one index is set: byHash unless two column names collide.
	byHash map[uint64]int
	byName map[string]int
}

var _ graph.Metadata = (*Model)(nil)

// Ensemble returns the trees of the model.
func (m *Model) Ensemble() *tree.Ensemble {
	return m.ensemble
}

// Columns returns the column names indexed by column id.
func (m *Model) Columns() []string {
	return m.names
}

// Domain returns the level names of a categorical column, nil otherwise.
func (m *Model) Domain(col int) []string {
	if col < 0 || col >= len(m.domains) {
		return nil
	}

	return m.domains[col]
}

// ResponseIndex returns the response column id, or graph.NoResponse.
func (m *Model) ResponseIndex() int {
	return m.response
}

// NumClasses returns the number of output classes.
func (m *Model) NumClasses() int {
	return m.ensemble.NumClasses
}

// Compression returns the codec the tree payload was stored with.
func (m *Model) Compression() format.CompressionType {
	return m.compression
}

// ColumnIndex returns the id of the named column.
func (m *Model) ColumnIndex(name string) (int, bool) {
	if m.byName != nil {
		col, ok := m.byName[name]
		return col, ok
	}

	col, ok := m.byHash[hash.ID(name)]
	if !ok || m.names[col] != name {
		return 0, false
	}

	return col, true
}

// Score sums the predictions of all trees for row. See tree.Ensemble.Score.
func (m *Model) Score(row []float64) ([]float64, error) {
	return m.ensemble.Score(row)
}

// BuildGraph reconstructs the trees of group treeIndex, or all groups when
// treeIndex is negative.
func (m *Model) BuildGraph(treeIndex int, opts ...graph.BuildOption) (*graph.Graph, error) {
	return graph.Build(m.ensemble, m, treeIndex, opts...)
}

// Row builds a scoring row from named values.
//
// Numeric columns parse their value as a float; categorical columns look the
// value up in their domain. Columns without a value, or with an empty value
// or "NA", are missing (NaN). Unknown level names are also treated as
// missing, the way unseen levels are scored.
//
// Returns:
//   - []float64: One value per column
//   - error: ErrUnknownColumn for a name the model does not have, or a parse error
func (m *Model) Row(values map[string]string) ([]float64, error) {
	row := make([]float64, len(m.names))
	for i := range row {
		row[i] = math.NaN()
	}

	for name, raw := range values {
		col, ok := m.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownColumn, name)
		}

		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "NA" {
			continue
		}

		if domain := m.domains[col]; domain != nil {
			for level, v := range domain {
				if v == raw {
					row[col] = float64(level)
					break
				}
			}

			continue
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		row[col] = v
	}

	return row, nil
}
