package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapxfer/internal/cli/testutil"
	"github.com/leapstack-labs/leapxfer/internal/userfunc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	tests := []struct {
		name        string
		existing    string // script content before running; empty for none
		args        []string
		wantErr     bool
		wantScript  string
		wantConfig  bool
		wantOutputs []string
	}{
		{
			name:        "creates script",
			wantScript:  userfunc.Template,
			wantOutputs: []string{"Created transfer script", "2 transfer function(s)"},
		},
		{
			name:        "keeps existing script",
			existing:    "def mine(x):\n    return x\n",
			wantScript:  "def mine(x):\n    return x\n",
			wantOutputs: []string{"already exists", "1 transfer function(s)"},
		},
		{
			name:       "force replaces script",
			existing:   "def mine(x):\n    return x\n",
			args:       []string{"--force"},
			wantScript: userfunc.Template,
		},
		{
			name:       "writes config",
			args:       []string{"--write-config"},
			wantScript: userfunc.Template,
			wantConfig: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.SetupTestEnv(t)
			t.Chdir(env.Dir)
			if tt.existing != "" {
				env.WriteScript(t, tt.existing)
			}

			out, _, err := execute(t, NewInitCommand(), tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			content, err := os.ReadFile(env.TransfersPath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScript, string(content))

			_, statErr := os.Stat(filepath.Join(env.Dir, "leapxfer.yaml"))
			assert.Equal(t, tt.wantConfig, statErr == nil)

			for _, want := range tt.wantOutputs {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestInitCommand_ConfigExists(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	t.Chdir(env.Dir)
	env.WriteFile(t, "leapxfer.yaml", "output: json\n")

	_, _, err := execute(t, NewInitCommand(), "--write-config")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
