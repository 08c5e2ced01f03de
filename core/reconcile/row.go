package reconcile

// Row is one table row: column names in table order, each mapped to a Value.
// A Row is not modified after construction; Renamed and Project return copies.
type Row struct {
	columns []string
	values  map[string]Value
}

// NewRow builds a Row from parallel column and value slices. Surplus values
// are ignored and missing values are null. A repeated column name keeps its
// first position and its last value.
func NewRow(columns []string, values []Value) Row {
	r := Row{
		columns: make([]string, 0, len(columns)),
		values:  make(map[string]Value, len(columns)),
	}
	for i, col := range columns {
		var v Value
		if i < len(values) {
			v = values[i]
		}
		if _, seen := r.values[col]; !seen {
			r.columns = append(r.columns, col)
		}
		r.values[col] = v
	}
	return r
}

// RowFromMap builds a Row whose column order is given by columns; every
// value is converted with FromAny.
func RowFromMap(columns []string, data map[string]any) Row {
	values := make([]Value, len(columns))
	for i, col := range columns {
		values[i] = FromAny(data[col])
	}
	return NewRow(columns, values)
}

// Columns returns the column names in table order.
func (r Row) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Get returns the value of col and whether the row has that column.
func (r Row) Get(col string) (Value, bool) {
	v, ok := r.values[col]
	return v, ok
}

// Value returns the value of col, or null when the column is absent.
func (r Row) Value(col string) Value {
	return r.values[col]
}

// Has reports whether the row has col.
func (r Row) Has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// Renamed returns a copy with columns renamed through mapping (old -> new).
// A renamed column replaces any existing column that already carried the
// new name.
func (r Row) Renamed(mapping map[string]string) Row {
	if len(mapping) == 0 {
		return r
	}

	claimed := make(map[string]bool, len(mapping))
	for old, name := range mapping {
		if r.Has(old) {
			claimed[name] = true
		}
	}

	columns := make([]string, 0, len(r.columns))
	values := make([]Value, 0, len(r.columns))
	for _, col := range r.columns {
		name, renamed := mapping[col]
		if !renamed {
			if claimed[col] {
				continue
			}
			name = col
		}
		columns = append(columns, name)
		values = append(values, r.values[col])
	}
	return NewRow(columns, values)
}

// Project returns a copy holding only cols, in the order given. Columns the
// row does not have are skipped.
func (r Row) Project(cols []string) Row {
	columns := make([]string, 0, len(cols))
	values := make([]Value, 0, len(cols))
	for _, col := range cols {
		if v, ok := r.values[col]; ok {
			columns = append(columns, col)
			values = append(values, v)
		}
	}
	return NewRow(columns, values)
}

// Snapshot returns a JSON-safe copy of every column.
func (r Row) Snapshot() map[string]any {
	out := make(map[string]any, len(r.columns))
	for _, col := range r.columns {
		out[col] = ToJSON(r.values[col])
	}
	return out
}
