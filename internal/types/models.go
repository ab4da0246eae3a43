package types

import "fmt"

// Record is a raw dataset row as served by a data source.
type Record struct {
	Text  string `json:"text"`
	Label int64  `json:"label"`
}

// LabeledRecord is a Record whose label index was resolved to a name.
type LabeledRecord struct {
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
}

// Vocabulary maps label indices to names. It is shared by every split of a dataset.
type Vocabulary []string

// Name resolves a label index.
func (v Vocabulary) Name(i int64) (string, bool) {
	if i < 0 || i >= int64(len(v)) {
		return "", false
	}
	return v[i], true
}

// Bounds are inclusive character-count bounds.
type Bounds struct {
	Min int `json:"min_length"`
	Max int `json:"max_length"`
}

const (
	DefaultMinLength = 15
	DefaultMaxLength = 300
)

func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMinLength, Max: DefaultMaxLength}
}

// Contains reports whether n lies within [Min, Max].
func (b Bounds) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

func (b Bounds) Validate() error {
	if b.Min < 0 {
		return fmt.Errorf("min length %d is negative", b.Min)
	}
	if b.Min > b.Max {
		return fmt.Errorf("min length %d exceeds max length %d", b.Min, b.Max)
	}
	return nil
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d]", b.Min, b.Max)
}

// Table is an in-memory tabular file: a header plus rows of string cells.
// An empty cell stands for a missing value.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// ColumnIndex returns the position of name in the header or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns a copy of the named column's values, or nil if absent.
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		if idx < len(r) {
			out[i] = r[idx]
		}
	}
	return out
}

// Append adds a row. Short rows are padded to the header width.
func (t *Table) Append(row ...string) {
	r := make([]string, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}
