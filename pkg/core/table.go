package core

import (
	"fmt"
	"math"
	"time"
)

// Value is a single table cell.
// Supported dynamic types: nil, int64, float64, bool, string, time.Time.
type Value = any

// Column is a named sequence of values.
type Column struct {
	Name   string
	Values []Value
}

// Len returns the number of values in the column.
func (c Column) Len() int {
	return len(c.Values)
}

// Clone returns a copy of the column that shares no storage with c.
func (c Column) Clone() Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return Column{Name: c.Name, Values: values}
}

// Table is an ordered set of uniquely named columns sharing a row count.
// Index holds optional row-label levels that travel with the rows but are
// not data columns.
type Table struct {
	columns []Column
	byName  map[string]int
	index   []Column
	rows    int
}

// DuplicateColumnError is returned when two columns share a name.
type DuplicateColumnError struct {
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column name %q", e.Name)
}

// RowCountError is returned when a column does not match the table row count.
type RowCountError struct {
	Name string
	Want int
	Got  int
}

func (e *RowCountError) Error() string {
	return fmt.Sprintf("column %q has %d rows, want %d", e.Name, e.Got, e.Want)
}

// NewTable builds a table from columns in the given order.
// Columns must have unique names and equal lengths.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		byName:  make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, exists := t.byName[col.Name]; exists {
			return nil, &DuplicateColumnError{Name: col.Name}
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, &RowCountError{Name: col.Name, Want: t.rows, Got: col.Len()}
		}
		t.byName[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// Empty returns a table with no columns and no rows.
func Empty() *Table {
	t, _ := NewTable()
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// Width returns the number of columns.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.byName[name]
	return ok
}

// Column returns the named column. The returned values must not be modified.
func (t *Table) Column(name string) (Column, bool) {
	if t == nil {
		return Column{}, false
	}
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Columns returns all columns in table order. The returned values must not be modified.
func (t *Table) Columns() []Column {
	if t == nil {
		return nil
	}
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// SetValues replaces the values of an existing column.
// The new values must keep the table row count.
func (t *Table) SetValues(name string, values []Value) error {
	i, ok := t.byName[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if len(values) != t.rows {
		return &RowCountError{Name: name, Want: t.rows, Got: len(values)}
	}
	t.columns[i].Values = values
	return nil
}

// Drop removes the named columns, keeping the order of the rest.
// Names not present are ignored.
func (t *Table) Drop(names ...string) {
	if len(names) == 0 {
		return
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.columns[:0]
	for _, col := range t.columns {
		if !drop[col.Name] {
			kept = append(kept, col)
		}
	}
	t.columns = kept
	t.byName = make(map[string]int, len(kept))
	for i, col := range kept {
		t.byName[col.Name] = i
	}
}

// Index returns the row-label levels, if any.
func (t *Table) Index() []Column {
	if t == nil {
		return nil
	}
	return t.index
}

// SetIndex replaces the row-label levels. Each level must match the row count.
// A table without data columns takes its row count from the index.
func (t *Table) SetIndex(levels ...Column) error {
	rows := t.rows
	if len(t.columns) == 0 && len(levels) > 0 {
		rows = levels[0].Len()
	}
	for _, lvl := range levels {
		if lvl.Len() != rows {
			return &RowCountError{Name: lvl.Name, Want: rows, Got: lvl.Len()}
		}
	}
	t.rows = rows
	t.index = levels
	return nil
}

// Clone returns a deep copy of the table; cell slices are not shared.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := &Table{
		columns: make([]Column, len(t.columns)),
		byName:  make(map[string]int, len(t.columns)),
		rows:    t.rows,
	}
	for i, col := range t.columns {
		c.columns[i] = col.Clone()
		c.byName[col.Name] = i
	}
	if len(t.index) > 0 {
		c.index = make([]Column, len(t.index))
		for i, lvl := range t.index {
			c.index[i] = lvl.Clone()
		}
	}
	return c
}

// Head returns a copy holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	c := t.Clone()
	if c == nil || n < 0 || n >= c.rows {
		return c
	}
	for i := range c.columns {
		c.columns[i].Values = c.columns[i].Values[:n]
	}
	for i := range c.index {
		c.index[i].Values = c.index[i].Values[:n]
	}
	c.rows = n
	return c
}

// Equal reports whether both tables have the same columns, in the same
// order, holding equal values. NaN equals NaN.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.rows != o.rows || len(t.columns) != len(o.columns) || len(t.index) != len(o.index) {
		return false
	}
	for i := range t.columns {
		if !columnsEqual(t.columns[i], o.columns[i]) {
			return false
		}
	}
	for i := range t.index {
		if !columnsEqual(t.index[i], o.index[i]) {
			return false
		}
	}
	return true
}

func columnsEqual(a, b Column) bool {
	if a.Name != b.Name || len(a.Values) != len(b.Values) {
		return false
	}
	for i := range a.Values {
		if !ValuesEqual(a.Values[i], b.Values[i]) {
			return false
		}
	}
	return true
}

// ValuesEqual compares two cells. NaN equals NaN and times compare by instant.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return false
		}
		if math.IsNaN(av) && math.IsNaN(bv) {
			return true
		}
		return av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return a == b
	}
}

// IsMissing reports whether a cell holds no value (nil or NaN).
func IsMissing(v Value) bool {
	if v == nil {
		return true
	}
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}
