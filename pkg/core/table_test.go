package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, cols ...Column) *Table {
	t.Helper()
	tbl, err := NewTable(cols...)
	require.NoError(t, err)
	return tbl
}

func TestNewTable(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr any
		rows    int
	}{
		{
			name: "empty",
			rows: 0,
		},
		{
			name: "two columns",
			cols: []Column{
				{Name: "a", Values: []Value{int64(1), int64(2)}},
				{Name: "b", Values: []Value{"x", "y"}},
			},
			rows: 2,
		},
		{
			name: "duplicate names",
			cols: []Column{
				{Name: "a", Values: []Value{int64(1)}},
				{Name: "a", Values: []Value{int64(2)}},
			},
			wantErr: &DuplicateColumnError{},
		},
		{
			name: "ragged",
			cols: []Column{
				{Name: "a", Values: []Value{int64(1), int64(2)}},
				{Name: "b", Values: []Value{"x"}},
			},
			wantErr: &RowCountError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := NewTable(tt.cols...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.IsType(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, tbl.Len())
			assert.Equal(t, len(tt.cols), tbl.Width())
		})
	}
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := mustTable(t,
		Column{Name: "a", Values: []Value{int64(1), int64(2)}},
	)
	require.NoError(t, tbl.SetIndex(Column{Name: "id", Values: []Value{"r1", "r2"}}))

	clone := tbl.Clone()
	require.True(t, tbl.Equal(clone))

	require.NoError(t, clone.SetValues("a", []Value{int64(9), int64(9)}))
	clone.Index()[0].Values[0] = "changed"

	col, _ := tbl.Column("a")
	assert.Equal(t, []Value{int64(1), int64(2)}, col.Values)
	assert.Equal(t, "r1", tbl.Index()[0].Values[0])
	assert.False(t, tbl.Equal(clone))
}

func TestTable_SetValuesKeepsRowCount(t *testing.T) {
	tbl := mustTable(t, Column{Name: "a", Values: []Value{int64(1), int64(2)}})

	err := tbl.SetValues("a", []Value{int64(1)})
	var rcErr *RowCountError
	require.ErrorAs(t, err, &rcErr)
	assert.Equal(t, 2, rcErr.Want)

	assert.Error(t, tbl.SetValues("missing", []Value{int64(1), int64(2)}))
}

func TestTable_DropKeepsOrder(t *testing.T) {
	tbl := mustTable(t,
		Column{Name: "a", Values: []Value{int64(1)}},
		Column{Name: "b", Values: []Value{int64(2)}},
		Column{Name: "c", Values: []Value{int64(3)}},
	)

	tbl.Drop("b", "nope")

	assert.Equal(t, []string{"a", "c"}, tbl.ColumnNames())
	assert.False(t, tbl.Has("b"))
	col, ok := tbl.Column("c")
	require.True(t, ok)
	assert.Equal(t, []Value{int64(3)}, col.Values)
}

func TestTable_Head(t *testing.T) {
	tbl := mustTable(t, Column{Name: "a", Values: []Value{int64(1), int64(2), int64(3)}})

	head := tbl.Head(2)
	assert.Equal(t, 2, head.Len())
	assert.Equal(t, 3, tbl.Len())

	assert.Equal(t, 3, tbl.Head(10).Len())
	assert.Equal(t, 0, tbl.Head(0).Len())
}

func TestValuesEqual(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil", nil, nil, true},
		{"nan", math.NaN(), math.NaN(), true},
		{"int vs float", int64(1), float64(1), false},
		{"strings", "x", "x", true},
		{"times in different zones", now, now.In(time.FixedZone("x", 3600)), true},
		{"time vs string", now, "2024-01-02", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b))
		})
	}
}
