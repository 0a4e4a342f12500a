package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapxfer/internal/cli/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	cfgFile = ""

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func TestRoot_Subcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"version", "init", "preview", "rules", "shell", "check", "export-rules", "history", "forget", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestRoot_PreviewEndToEnd(t *testing.T) {
	dir := setupDir(t)
	csv := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csv, []byte("id;amount\n1;2.5\n2;x\n"), 0o600))

	out, _, err := runRoot(t,
		"--no-state", "-o", "json", "-d", ";",
		"--transfers", filepath.Join(dir, "t.star"),
		"preview", csv, "--rule", "id=Float",
	)
	require.NoError(t, err)

	var got struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"id", "amount"}, got.Columns)
	require.Len(t, got.Rows, 2)
	assert.InDelta(t, 1.0, got.Rows[0][0], 1e-9)
	assert.Equal(t, "x", got.Rows[1][1])
	assert.FileExists(t, filepath.Join(dir, "t.star"), "missing transfer script is created")
}

func TestRoot_ConfigFile(t *testing.T) {
	dir := setupDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leapxfer.yaml"), []byte(`
transfers_path: my.star
no_state: true
output: json
loader:
  delimiter: "|"
`), 0o600))
	csv := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csv, []byte("a|b\n1|2\n"), 0o600))

	out, _, err := runRoot(t, "rules", csv)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "b"`)
	assert.FileExists(t, filepath.Join(dir, "my.star"))
}

func TestRoot_VerboseLogsToStderr(t *testing.T) {
	dir := setupDir(t)
	csv := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csv, []byte("a\n1\n"), 0o600))

	_, errOut, err := runRoot(t, "-v", "--no-state", "--transfers", filepath.Join(dir, "t.star"), "preview", csv)
	require.NoError(t, err)
	assert.Contains(t, errOut, "level=DEBUG")
	assert.Contains(t, errOut, "configuration loaded")
}

func TestRoot_InvalidConfig(t *testing.T) {
	setupDir(t)
	_, _, err := runRoot(t, "--log-level", "loud", "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log_level")
}

func TestRoot_Version(t *testing.T) {
	setupDir(t)
	out, _, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "leapxfer v"+Version)
}

func TestRoot_Completion(t *testing.T) {
	out, _, err := runRoot(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "leapxfer")
}
