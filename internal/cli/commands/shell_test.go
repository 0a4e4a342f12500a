package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapxfer/internal/cli/testutil"
	"github.com/leapstack-labs/leapxfer/internal/loader"
	"github.com/leapstack-labs/leapxfer/internal/preset"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T, path string) (*shell, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	s, err := cmdCtx.openSession(context.Background(), path, cmdCtx.Cfg.Loader)
	require.NoError(t, err)
	return newShell(s, &out, &errOut), &out, &errOut
}

func TestShell_RuleAndErrors(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	path := env.WriteFile(t, "sales.csv", salesCSV)
	sh, out, errOut := newTestShell(t, path)
	ctx := context.Background()

	assert.False(t, sh.exec(ctx, "rule amount Int"))
	assert.Contains(t, errOut.String(), `! amount:`)
	assert.Contains(t, out.String(), "(3 of 3 rows)")

	out.Reset()
	sh.exec(ctx, "errors")
	assert.Contains(t, out.String(), "amount")

	out.Reset()
	sh.exec(ctx, "rule amount")
	assert.Contains(t, out.String(), "* Int")

	errOut.Reset()
	sh.exec(ctx, `rule amount ""`)
	assert.Empty(t, errOut.String(), "empty rule restores the default")
	rule, err := sh.s.Engine.Rule("amount")
	require.NoError(t, err)
	assert.EqualValues(t, "String", rule)
}

func TestShell_IgnoreAndColumns(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	path := env.WriteFile(t, "sales.csv", salesCSV)
	sh, out, _ := newTestShell(t, path)
	ctx := context.Background()

	sh.exec(ctx, "ignore name active")
	assert.Equal(t, []string{"name", "active"}, sh.s.Engine.Ignored())

	sh.exec(ctx, "unignore active")
	assert.Equal(t, []string{"name"}, sh.s.Engine.Ignored())

	out.Reset()
	sh.exec(ctx, "columns")
	assert.Contains(t, out.String(), "(ignored)")
}

func TestShell_VerbsAreCaseInsensitive(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	path := env.WriteFile(t, "sales.csv", salesCSV)
	sh, _, _ := newTestShell(t, path)
	ctx := context.Background()

	sh.exec(ctx, "IGNORE name")
	assert.Equal(t, []string{"name"}, sh.s.Engine.Ignored())

	sh.exec(ctx, "Unignore name")
	assert.Empty(t, sh.s.Engine.Ignored())
}

func TestShell_SetReimports(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	path := env.WriteFile(t, "semi.csv", "a;b\n1;2\n")
	sh, _, errOut := newTestShell(t, path)
	ctx := context.Background()

	require.Len(t, sh.s.Engine.Columns(), 1)

	sh.exec(ctx, "set delimiter ;")
	assert.Empty(t, errOut.String())
	assert.Len(t, sh.s.Engine.Columns(), 2)
	assert.Equal(t, ";", sh.s.Options.Delimiter)

	sh.exec(ctx, "set header_row lots")
	assert.Contains(t, errOut.String(), "invalid header_row")
}

func TestShell_SaveExportLoad(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	path := env.WriteFile(t, "sales.csv", salesCSV)
	sh, out, errOut := newTestShell(t, path)
	ctx := context.Background()
	target := filepath.Join(env.Dir, "p.yaml")

	sh.exec(ctx, "rule active Boolean")
	sh.exec(ctx, "save")
	assert.Contains(t, out.String(), "Rules saved")

	sh.exec(ctx, "export "+target)
	p, err := preset.Load(target)
	require.NoError(t, err)
	assert.Equal(t, "Boolean", p.Columns["active"].Rule)

	sh.exec(ctx, `rule active ""`)
	sh.exec(ctx, "load "+target)
	assert.Empty(t, errOut.String())
	rule, err := sh.s.Engine.Rule("active")
	require.NoError(t, err)
	assert.EqualValues(t, "Boolean", rule)
}

func TestShell_Commands(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	env.WriteScript(t, "def shout(x):\n    return x.upper()\n")
	path := env.WriteFile(t, "sales.csv", salesCSV)
	sh, out, errOut := newTestShell(t, path)
	ctx := context.Background()

	assert.True(t, sh.exec(ctx, "quit"))
	assert.True(t, sh.exec(ctx, "EXIT"))
	assert.False(t, sh.exec(ctx, "   "))

	sh.exec(ctx, "functions")
	assert.Contains(t, out.String(), "shout")

	sh.exec(ctx, "help")
	assert.Contains(t, out.String(), "Commands:")

	sh.exec(ctx, "bogus")
	assert.Contains(t, errOut.String(), "unknown command: bogus")

	sh.exec(ctx, `rule "unterminated`)
	assert.Contains(t, errOut.String(), "unterminated quote")
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"rule amount Int", []string{"rule", "amount", "Int"}},
		{`rule "unit price" Float`, []string{"rule", "unit price", "Float"}},
		{`rule a ""`, []string{"rule", "a", ""}},
		{"  spaced\tout  ", []string{"spaced", "out"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := splitArgs(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetLoaderOption(t *testing.T) {
	base := loader.DefaultOptions()

	got, err := setLoaderOption(base, "header-row", "none")
	require.NoError(t, err)
	assert.Equal(t, loader.NoHeader, got.HeaderRow)

	got, err = setLoaderOption(base, "index_columns", "0, 2")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got.IndexColumns)

	got, err = setLoaderOption(base, "parse_dates", "true")
	require.NoError(t, err)
	assert.True(t, got.ParseDates)

	_, err = setLoaderOption(base, "widths", "5,-1")
	require.Error(t, err)

	_, err = setLoaderOption(base, "format", "parquet")
	require.Error(t, err)

	_, err = setLoaderOption(base, "colour", "red")
	require.Error(t, err)
	assert.Equal(t, ",", base.Delimiter, "base options are not modified")
}
