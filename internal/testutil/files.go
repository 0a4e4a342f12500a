package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapxfer/pkg/core"
)

// WriteFile writes content to name inside a fresh temp dir and returns the path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Table builds a table from alternating column names and value slices:
//
//	testutil.Table(t, "a", []core.Value{int64(1)}, "b", []core.Value{"x"})
func Table(t testing.TB, pairs ...any) *core.Table {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("Table: odd number of arguments")
	}
	cols := make([]core.Column, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			t.Fatalf("Table: argument %d is %T, want string", i, pairs[i])
		}
		values, ok := pairs[i+1].([]core.Value)
		if !ok {
			t.Fatalf("Table: argument %d is %T, want []core.Value", i+1, pairs[i+1])
		}
		cols = append(cols, core.Column{Name: name, Values: values})
	}
	tbl, err := core.NewTable(cols...)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	return tbl
}
