package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnNotFound is returned when a column name is not in the dataset.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")
)

// Dataset provides read-only access to named columns of equal length.
// Implementations must be safe for concurrent reads.
type Dataset interface {
	// Columns returns the column names in source order.
	Columns() []string

	// RowCount returns the number of rows.
	RowCount() int

	// Column returns the values of one column, in row order.
	// The returned slice must not be modified.
	Column(name string) ([]Value, error)
}

// Table is the in-memory Dataset implementation.
type Table struct {
	data    map[string][]Value
	columns []string
	rows    int
}

// NewTable builds a table from column names and column-major data.
// Every column must be present in data and all columns must have the same length.
func NewTable(columns []string, data map[string][]Value) (*Table, error) {
	rows := -1
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true

		values, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no data", ErrColumnNotFound, name)
		}
		if rows == -1 {
			rows = len(values)
		} else if len(values) != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(values), rows)
		}
	}
	if rows == -1 {
		rows = 0
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Table{
		columns: cols,
		data:    data,
		rows:    rows,
	}, nil
}

// FromRows builds a table from row-major string records. Empty strings become null cells.
func FromRows(columns []string, records [][]string) (*Table, error) {
	data := make(map[string][]Value, len(columns))
	for _, name := range columns {
		data[name] = make([]Value, 0, len(records))
	}
	for i, record := range records {
		if len(record) != len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i, len(record), len(columns))
		}
		for j, field := range record {
			v := StringValue(field)
			if field == "" {
				v = NullValue()
			}
			data[columns[j]] = append(data[columns[j]], v)
		}
	}
	return NewTable(columns, data)
}

// Columns returns the column names in source order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return t.rows
}

// Column returns the values of one column.
func (t *Table) Column(name string) ([]Value, error) {
	values, ok := t.data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return values, nil
}

// HasColumn reports whether a dataset contains the named column.
func HasColumn(ds Dataset, name string) bool {
	for _, c := range ds.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// Row returns the cells of one row keyed by column name.
func Row(ds Dataset, row int) (map[string]Value, error) {
	if row < 0 || row >= ds.RowCount() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	out := make(map[string]Value, len(ds.Columns()))
	for _, name := range ds.Columns() {
		values, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		out[name] = values[row]
	}
	return out, nil
}

// Subset returns a new table holding the given rows (in the given order) and columns.
// A nil columns slice keeps every column.
func Subset(ds Dataset, rows []int, columns []string) (*Table, error) {
	if columns == nil {
		columns = ds.Columns()
	}
	data := make(map[string][]Value, len(columns))
	for _, name := range columns {
		values, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		picked := make([]Value, 0, len(rows))
		for _, r := range rows {
			if r < 0 || r >= len(values) {
				return nil, fmt.Errorf("%w: %d", ErrInvalidRow, r)
			}
			picked = append(picked, values[r])
		}
		data[name] = picked
	}
	return NewTable(columns, data)
}
