package graph

// NoResponse is the ResponseIndex of models without a response column.
const NoResponse = -1

// Metadata describes the columns of the model a tree was trained on.
type Metadata interface {
	// Columns returns the column names indexed by column id.
	Columns() []string
	// Domain returns the ordered level names of a categorical column, or nil
	// for numeric columns.
	Domain(col int) []string
	// ResponseIndex returns the id of the response column, or NoResponse.
	ResponseIndex() int
	// NumClasses returns the number of output classes, 1 for regression.
	NumClasses() int
}

// StaticMetadata is a Metadata backed by plain slices.
type StaticMetadata struct {
	Names    []string
	Domains  [][]string
	Response int
	Classes  int
}

var _ Metadata = (*StaticMetadata)(nil)

// NewStaticMetadata creates regression metadata without a response column.
// Domains may be shorter than names; missing entries are numeric columns.
func NewStaticMetadata(names []string, domains [][]string) *StaticMetadata {
	return &StaticMetadata{
		Names:    names,
		Domains:  domains,
		Response: NoResponse,
		Classes:  1,
	}
}

func (m *StaticMetadata) Columns() []string {
	return m.Names
}

func (m *StaticMetadata) Domain(col int) []string {
	if col < 0 || col >= len(m.Domains) {
		return nil
	}

	return m.Domains[col]
}

func (m *StaticMetadata) ResponseIndex() int {
	return m.Response
}

func (m *StaticMetadata) NumClasses() int {
	if m.Classes <= 0 {
		return 1
	}

	return m.Classes
}
