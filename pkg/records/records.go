// Package records defines the in-memory tabular representation passed between
// pipeline stages. A Dataset is an ordered sequence of records that all share
// the same column set, as inferred from the source header.
package records

// Record maps a column name to its scalar value. Values are raw strings as
// read from the source, or nil for empty cells; transformers may replace them
// with typed values.
type Record map[string]any

// Dataset is the unit of exchange between extract, transform, and load.
// Columns preserves source column order; every record holds exactly the keys
// listed in Columns.
type Dataset struct {
	Columns []string
	Rows    []Record
}

// New returns an empty Dataset with the given column set.
func New(columns []string) *Dataset {
	return &Dataset{Columns: columns}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Append adds a record to the dataset. The caller is responsible for the
// record matching the dataset's column set.
func (d *Dataset) Append(r Record) {
	d.Rows = append(d.Rows, r)
}

// Values returns the dataset rows as positional slices aligned to the
// dataset's column order, the shape expected by storage bulk inserts.
func (d *Dataset) Values() [][]any {
	out := make([][]any, 0, len(d.Rows))
	for _, rec := range d.Rows {
		row := make([]any, len(d.Columns))
		for i, c := range d.Columns {
			row[i] = rec[c]
		}
		out = append(out, row)
	}
	return out
}

// Clone returns a deep copy of the dataset. Transformers that rewrite rows
// wholesale can clone first to keep the input intact.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	cols := make([]string, len(d.Columns))
	copy(cols, d.Columns)
	rows := make([]Record, 0, len(d.Rows))
	for _, rec := range d.Rows {
		cp := make(Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		rows = append(rows, cp)
	}
	return &Dataset{Columns: cols, Rows: rows}
}
