// Package preset reads and writes portable rule files.
//
// A preset is a small YAML document:
//
//	version: 1
//	source: sales.csv
//	columns:
//	  amount: {rule: Int}
//	  notes: {ignore: true}
//
// Columns a preset names but the table lacks are reported, not fatal.
package preset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/leapstack-labs/leapxfer/internal/transfer"
	"gopkg.in/yaml.v3"
)

// Version is the preset format version written by Save.
const Version = 1

// ColumnRule is the stored state of one column.
type ColumnRule struct {
	Rule   string `yaml:"rule,omitempty"`
	Ignore bool   `yaml:"ignore,omitempty"`
}

// Preset maps column names to their rules.
type Preset struct {
	Version int                   `yaml:"version"`
	Source  string                `yaml:"source,omitempty"`
	Columns map[string]ColumnRule `yaml:"columns"`
}

// Decode reads a preset from r.
func Decode(r io.Reader) (*Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return &Preset{Version: Version, Columns: map[string]ColumnRule{}}, nil
		}
		return nil, fmt.Errorf("invalid preset: %w", err)
	}
	if p.Version == 0 {
		p.Version = Version
	}
	if p.Version > Version {
		return nil, fmt.Errorf("preset version %d is newer than supported version %d", p.Version, Version)
	}
	if p.Columns == nil {
		p.Columns = map[string]ColumnRule{}
	}
	return &p, nil
}

// Load reads the preset file at path.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: preset path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}
	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path.
func Save(path string, p *Preset) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write preset: %w", err)
	}
	return nil
}

// Capture records every column's rule and ignore flag from e.
// Columns left at their default rule store no rule.
func Capture(e *transfer.Engine, source string) *Preset {
	p := &Preset{Version: Version, Source: source, Columns: map[string]ColumnRule{}}
	rules := e.Rules()
	for _, col := range e.Columns() {
		var cr ColumnRule
		if r := rules[col.Name]; r != transfer.DefaultRule(col.Inferred) {
			cr.Rule = string(r)
		}
		cr.Ignore, _ = e.IsIgnored(col.Name)
		if cr != (ColumnRule{}) {
			p.Columns[col.Name] = cr
		}
	}
	return p
}

// Apply sets rules and ignore flags on e. It returns the preset columns
// the engine's table does not have, sorted.
func (p *Preset) Apply(e *transfer.Engine) ([]string, error) {
	var missing []string
	for name, cr := range p.Columns {
		if _, err := e.Rule(name); err != nil {
			var uce *transfer.UnknownColumnError
			if errors.As(err, &uce) {
				missing = append(missing, name)
				continue
			}
			return nil, err
		}
		if cr.Rule != "" {
			if err := e.SetRule(name, transfer.Rule(cr.Rule)); err != nil {
				return nil, err
			}
		}
		if err := e.SetIgnore(name, cr.Ignore); err != nil {
			return nil, err
		}
	}
	sort.Strings(missing)
	return missing, nil
}
