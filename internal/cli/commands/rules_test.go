package commands

import (
	"encoding/json"
	"testing"

	"github.com/leapstack-labs/leapxfer/internal/cli/output"
	"github.com/leapstack-labs/leapxfer/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesCommand_Markdown(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	env.WriteScript(t, "def shout(x):\n    return x.upper()\n")
	path := env.WriteFile(t, "sales.csv", salesCSV)

	out, _, err := execute(t, NewRulesCommand(), path)
	require.NoError(t, err)

	testutil.AssertValidMarkdown(t, out)
	assert.Contains(t, out, "# Columns")
	assert.Contains(t, out, "amount")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "`shout`")
}

func TestRulesCommand_JSON(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	t.Setenv("LEAPXFER_OUTPUT", "json")
	env.WriteScript(t, "def shout(x):\n    return x.upper()\n")
	path := env.WriteFile(t, "sales.csv", "n,s\n1,a\n2,b\n")

	out, _, err := execute(t, NewRulesCommand(), path)
	require.NoError(t, err)

	var got output.RulesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Rows)
	assert.Equal(t, []string{"shout"}, got.UserFunctions)
	require.Len(t, got.Columns, 2)
	assert.Equal(t, "n", got.Columns[0].Name)
	assert.Equal(t, "Int", got.Columns[0].Rule)
	assert.Equal(t, "skipped", got.Columns[0].Resolution)
	assert.Empty(t, got.Columns[0].Applicable, "applicable rules only for a single column")
}

func TestRulesCommand_SingleColumn(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	t.Setenv("LEAPXFER_OUTPUT", "json")
	env.WriteScript(t, "def shout(x):\n    return x.upper()\n")
	path := env.WriteFile(t, "sales.csv", "n,s\n1,a\n2,b\n")

	out, _, err := execute(t, NewRulesCommand(), path, "s")
	require.NoError(t, err)

	var got output.RulesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Columns, 1)
	assert.Contains(t, got.Columns[0].Applicable, "Float")
	assert.Contains(t, got.Columns[0].Applicable, "shout")
}

func TestRulesCommand_UnknownColumn(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	path := env.WriteFile(t, "sales.csv", salesCSV)

	_, _, err := execute(t, NewRulesCommand(), path, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown column "nope"`)
}
