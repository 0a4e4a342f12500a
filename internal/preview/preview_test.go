package preview

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapxfer/internal/testutil"
	"github.com/leapstack-labs/leapxfer/internal/transfer"
	"github.com/leapstack-labs/leapxfer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sevenRows(t *testing.T) *core.Table {
	vals := make([]core.Value, 7)
	names := make([]core.Value, 7)
	for i := range vals {
		vals[i] = int64(i)
		names[i] = string(rune('a' + i))
	}
	return testutil.Table(t, "n", vals, "name", names)
}

func TestRender_TextTruncates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sevenRows(t), Options{}))

	out := buf.String()
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "(5 of 7 rows)")
	assert.Contains(t, out, " e ")
	assert.NotContains(t, out, " f ")
}

func TestRender_RowCounts(t *testing.T) {
	tests := []struct {
		rows int
		want string
	}{
		{0, "(5 of 7 rows)"},
		{2, "(2 of 7 rows)"},
		{-1, "(7 of 7 rows)"},
		{100, "(7 of 7 rows)"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, sevenRows(t), Options{Rows: tt.rows}))
		assert.Contains(t, buf.String(), tt.want, "rows=%d", tt.rows)
	}
}

func TestRender_Formats(t *testing.T) {
	tbl := testutil.Table(t,
		"a", []core.Value{int64(1), nil},
		"b", []core.Value{math.NaN(), 2.0},
	)

	tests := []struct {
		format Format
		want   []string
	}{
		{FormatMarkdown, []string{"a", "b", "---", "NULL", "NaN"}},
		{FormatHTML, []string{`<table class="leapxfer-preview">`, ">a</th>", "2.0"}},
		{FormatCSV, []string{"a,b", "1,NaN", "NULL,2.0"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, tbl, Options{Format: tt.format}))
			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRender_JSON(t *testing.T) {
	tbl := testutil.Table(t,
		"a", []core.Value{int64(1), nil},
		"b", []core.Value{math.NaN(), "x"},
	)
	require.NoError(t, tbl.SetIndex(core.Column{Name: "id", Values: []core.Value{"r1", "r2"}}))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, tbl, Options{Format: FormatJSON}))

	var got struct {
		Columns   []string `json:"columns"`
		Rows      [][]any  `json:"rows"`
		TotalRows int      `json:"total_rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"id", "a", "b"}, got.Columns)
	assert.Equal(t, 2, got.TotalRows)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, []any{"r1", float64(1), nil}, got.Rows[0])
	assert.Equal(t, []any{"r2", nil, "x"}, got.Rows[1])
}

func TestRender_JSONKeepsColumnOrder(t *testing.T) {
	tbl := testutil.Table(t,
		"zeta", []core.Value{int64(1), int64(2), int64(3)},
		"alpha", []core.Value{"a", "b", "c"},
		"mid", []core.Value{true, false, true},
	)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, tbl, Options{Format: FormatJSON, Rows: 2}))

	var got struct {
		Columns   []string `json:"columns"`
		Rows      [][]any  `json:"rows"`
		TotalRows int      `json:"total_rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, got.Columns)
	assert.Equal(t, 3, got.TotalRows)
	assert.Equal(t, [][]any{{float64(1), "a", true}, {float64(2), "b", false}}, got.Rows)
}

func TestRender_IndexFirst(t *testing.T) {
	tbl := testutil.Table(t, "v", []core.Value{int64(1)})
	require.NoError(t, tbl.SetIndex(core.Column{Name: "key", Values: []core.Value{"k"}}))

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, tbl, Options{Format: FormatCSV}))
	assert.True(t, strings.HasPrefix(buf.String(), "key,v"), buf.String())
}

func TestRenderErrors(t *testing.T) {
	errs := []*transfer.ColumnTransferError{
		{Column: "amount", Rule: "Int", Row: 2, Value: "x", Err: errors.New(`invalid integer literal "x"`)},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderErrors(&buf, errs, FormatText))
	assert.Contains(t, buf.String(), "amount")
	assert.Contains(t, buf.String(), "invalid integer literal")

	buf.Reset()
	require.NoError(t, RenderErrors(&buf, errs, FormatJSON))
	var got struct {
		Errors []struct {
			Column string `json:"column"`
			Row    int    `json:"row"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "amount", got.Errors[0].Column)
	assert.Equal(t, 2, got.Errors[0].Row)

	buf.Reset()
	require.NoError(t, RenderErrors(&buf, nil, FormatText))
	assert.Empty(t, buf.String())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":     FormatText,
		"md":   FormatMarkdown,
		"html": FormatHTML,
		"json": FormatJSON,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
