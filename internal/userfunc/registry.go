// Package userfunc loads user-defined transfer functions.
// Functions live in a single Starlark file; every top-level callable whose
// name does not start with "_" becomes a transfer function.
package userfunc

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	xstar "github.com/leapstack-labs/leapxfer/internal/starlark"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Template is written by EnsureFile when asked for a starter script.
const Template = `# Transfer functions for leapxfer.
#
# Every top-level function whose name does not start with "_" can be
# picked as a column rule. It receives one cell value and returns the
# converted value. Failing for any value leaves the whole column unchanged.
#
# Available helpers: parse_number, parse_bool, parse_date, is_nan,
# and the json, math and time modules.

def _clean(s):
    return s.strip() if type(s) == "string" else s

def upper(x):
    return _clean(x).upper() if type(x) == "string" else x

def amount(x):
    return parse_number(_clean(x)) if type(x) == "string" else x
`

// Registry maps function names to Starlark callables.
type Registry struct {
	path  string
	funcs map[string]starlark.Callable
}

// Empty returns a registry with no functions.
func Empty(path string) *Registry {
	return &Registry{path: path, funcs: map[string]starlark.Callable{}}
}

// Path returns the script the registry was loaded from.
func (r *Registry) Path() string { return r.path }

// Len returns the number of functions.
func (r *Registry) Len() int { return len(r.funcs) }

// Lookup returns the function bound to name.
func (r *Registry) Lookup(name string) (starlark.Callable, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Names returns function names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnsureFile creates the script at path if it does not exist.
// With template set, the new file holds Template; otherwise it is empty.
// Reports whether the file was created.
func EnsureFile(path string, template bool) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to access transfer script: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, fmt.Errorf("failed to create transfer script directory: %w", err)
	}
	var content []byte
	if template {
		content = []byte(Template)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return false, fmt.Errorf("failed to create transfer script: %w", err)
	}
	return true, nil
}

// Load executes the script at path and collects its exported callables.
// A missing script is created empty first.
func Load(path string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if _, err := EnsureFile(path, false); err != nil {
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	content, err := os.ReadFile(path) //nolint:gosec // G304: path is the user's configured transfer script
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
		}
	}

	thread := xstar.NewThread("load:"+filepath.Base(path), logger)
	opts := &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
		Recursion:       true,
	}
	globals, err := starlark.ExecFileOptions(opts, thread, path, content, xstar.Predeclared())
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: fmt.Sprintf("Starlark execution error: %v", err),
			Err:     err,
		}
	}

	reg := Empty(path)
	for name, value := range globals {
		if strings.HasPrefix(name, "_") {
			continue
		}
		fn, ok := value.(starlark.Callable)
		if !ok {
			logger.Debug("skipping non-callable binding", "name", name, "type", value.Type())
			continue
		}
		reg.funcs[name] = fn
	}

	logger.Debug("loaded transfer functions", "path", path, "count", reg.Len())
	return reg, nil
}

// LoadError represents an error loading the transfer script.
type LoadError struct {
	File    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", filepath.Base(e.File), e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }
