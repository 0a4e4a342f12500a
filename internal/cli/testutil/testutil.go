// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapxfer/internal/cli/config"
	"github.com/leapstack-labs/leapxfer/internal/cli/output"
)

// Env is an isolated CLI environment rooted in a temp directory.
type Env struct {
	Dir           string
	TransfersPath string
	StatePath     string
}

// SetupTestEnv points the CLI at a temp directory through LEAPXFER_
// environment variables and clears any loaded config, so commands run
// without a root command use these paths.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	dir := t.TempDir()
	env := &Env{
		Dir:           dir,
		TransfersPath: filepath.Join(dir, "transfers.star"),
		StatePath:     filepath.Join(dir, "state", "state.db"),
	}
	t.Setenv("LEAPXFER_TRANSFERS_PATH", env.TransfersPath)
	t.Setenv("LEAPXFER_STATE_PATH", env.StatePath)
	t.Setenv("LEAPXFER_NO_STATE", "")
	t.Setenv("LEAPXFER_OUTPUT", "")
	return env
}

// WriteFile writes content to name inside the environment and returns the path.
func (e *Env) WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteScript writes the transfer script.
func (e *Env) WriteScript(t *testing.T, content string) {
	t.Helper()
	if err := os.WriteFile(e.TransfersPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write transfer script: %v", err)
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode.
// Output is captured in buffers for inspection; buffers are never terminals.
func NewTestRenderer(mode output.Mode) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRenderer(out, errOut, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
