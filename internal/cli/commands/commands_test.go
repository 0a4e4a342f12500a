// Package commands_test provides tests for CLI command creation.
package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = `name,amount,active
ann,1,yes
bob,2,no
cy,x,yes
`

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewPreviewCommand(), "preview <file>", []string{"rule", "ignore", "rules", "save"}},
		{NewRulesCommand(), "rules <file> [column]", nil},
		{NewShellCommand(), "shell <file>", nil},
		{NewCheckCommand(), "check <file>...", []string{"jobs"}},
		{NewExportRulesCommand(), "export-rules <file> <preset>", []string{"rule", "ignore"}},
		{NewHistoryCommand(), "history [file]", []string{"limit"}},
		{NewForgetCommand(), "forget <file>", nil},
		{NewInitCommand(), "init", []string{"force", "write-config"}},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestCutAssignment(t *testing.T) {
	tests := []struct {
		in       string
		col, val string
		ok       bool
	}{
		{"amount=Int", "amount", "Int", true},
		{"a=b=Float", "a=b", "Float", true},
		{"amount=", "amount", "", true},
		{"=Int", "", "", false},
		{"amount", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			col, val, ok := cutAssignment(tt.in)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.col, col)
			assert.Equal(t, tt.val, val)
		})
	}
}
