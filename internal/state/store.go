// Package state remembers transfer rules per source file across sessions.
// Rules and run history live in a SQLite database managed with goose
// migrations.
package state

import "time"

// ColumnRule is the remembered state of one column.
type ColumnRule struct {
	Column  string
	Rule    string
	Ignored bool
}

// Source is a remembered input file.
type Source struct {
	ID        string
	Path      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Run records one application of rules to a source.
type Run struct {
	ID        string
	Source    string
	StartedAt time.Time
	Columns   int
	Failed    int
	Errors    string // failed column names, comma separated
}

// Store is the rule memory used by the CLI.
type Store interface {
	SaveRules(source string, rules []ColumnRule) error
	LoadRules(source string) ([]ColumnRule, error)
	DeleteRules(source string) error
	Sources() ([]Source, error)
	RecordRun(source string, columns int, failed []string) (*Run, error)
	Runs(source string, limit int) ([]Run, error)
	Close() error
}
