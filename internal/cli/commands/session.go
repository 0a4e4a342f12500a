package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapxfer/internal/loader"
	"github.com/leapstack-labs/leapxfer/internal/preset"
	"github.com/leapstack-labs/leapxfer/internal/state"
	"github.com/leapstack-labs/leapxfer/internal/transfer"
	"github.com/leapstack-labs/leapxfer/pkg/core"
)

// session is one loaded file with its transfer engine.
type session struct {
	Path    string
	Source  string // state key
	Options loader.Options
	Engine  *transfer.Engine

	cmdCtx *CommandContext
	loader *loader.Loader
}

// openSession loads path and builds an engine for it. Rules remembered for
// the file are restored. A broken transfer script is reported as a warning
// and leaves only the builtin rules available.
func (c *CommandContext) openSession(ctx context.Context, path string, opts loader.Options) (*session, error) {
	s := &session{
		Path:    path,
		Source:  state.SourceKey(path),
		Options: opts,
		cmdCtx:  c,
		loader:  loader.New(c.Logger),
	}

	tbl, err := s.loader.Load(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	eng, err := transfer.New(tbl, c.Cfg.TransfersPath,
		transfer.WithLogger(c.Logger),
		transfer.WithMaxSteps(c.Cfg.MaxSteps),
	)
	if err != nil {
		var sle *transfer.ScriptLoadError
		if !errors.As(err, &sle) {
			return nil, err
		}
		c.Renderer.Warning(sle.Error())
	}
	s.Engine = eng

	if err := s.restore(); err != nil {
		return nil, err
	}
	return s, nil
}

// restore applies remembered rules. Columns that no longer exist are skipped.
func (s *session) restore() error {
	if s.cmdCtx.Store == nil {
		return nil
	}
	rules, err := s.cmdCtx.Store.LoadRules(s.Source)
	if err != nil {
		return fmt.Errorf("failed to load remembered rules: %w", err)
	}
	for _, cr := range rules {
		if _, err := s.Engine.Rule(cr.Column); err != nil {
			s.cmdCtx.Logger.Debug("remembered column not in table", "source", s.Source, "column", cr.Column)
			continue
		}
		if cr.Rule != "" {
			if err := s.Engine.SetRule(cr.Column, transfer.Rule(cr.Rule)); err != nil {
				return err
			}
		}
		if err := s.Engine.SetIgnore(cr.Column, cr.Ignored); err != nil {
			return err
		}
	}
	if len(rules) > 0 {
		s.cmdCtx.Logger.Debug("restored rules", "source", s.Source, "count", len(rules))
	}
	return nil
}

// Reload re-imports the file with opts and hands the new table to the engine.
func (s *session) Reload(ctx context.Context, opts loader.Options) error {
	tbl, err := s.loader.Load(ctx, s.Path, opts)
	if err != nil {
		return err
	}
	s.Options = opts
	s.Engine.UpdateTable(tbl)
	return nil
}

// applyRuleFlags parses "col=RULE" assignments and ignore lists.
func (s *session) applyRuleFlags(rules, ignore []string) error {
	for _, assignment := range rules {
		col, rule, ok := cutAssignment(assignment)
		if !ok {
			return fmt.Errorf("invalid rule %q: want COLUMN=RULE", assignment)
		}
		if err := s.Engine.SetRule(col, transfer.Rule(rule)); err != nil {
			return err
		}
	}
	for _, col := range ignore {
		if err := s.Engine.SetIgnore(col, true); err != nil {
			return err
		}
	}
	return nil
}

// applyPreset loads a preset file and applies it, warning about columns
// the table does not have.
func (s *session) applyPreset(path string) error {
	p, err := preset.Load(path)
	if err != nil {
		return err
	}
	missing, err := p.Apply(s.Engine)
	if err != nil {
		return err
	}
	for _, col := range missing {
		s.cmdCtx.Renderer.Warning(fmt.Sprintf("preset column %q not in %s", col, s.Path))
	}
	return nil
}

// Remember saves the engine's non-default rules for the file.
func (s *session) Remember() error {
	if s.cmdCtx.Store == nil {
		return errNoState
	}
	p := preset.Capture(s.Engine, s.Source)
	rules := make([]state.ColumnRule, 0, len(p.Columns))
	for _, col := range s.Engine.Columns() {
		cr, ok := p.Columns[col.Name]
		if !ok {
			continue
		}
		rules = append(rules, state.ColumnRule{Column: col.Name, Rule: cr.Rule, Ignored: cr.Ignore})
	}
	return s.cmdCtx.Store.SaveRules(s.Source, rules)
}

// Apply runs the engine and records the run when rule memory is enabled.
func (s *session) Apply() *core.Table {
	out := s.Engine.Apply()
	if s.cmdCtx.Store == nil {
		return out
	}
	errs := s.Engine.Errors()
	failed := make([]string, len(errs))
	for i, e := range errs {
		failed[i] = e.Column
	}
	if _, err := s.cmdCtx.Store.RecordRun(s.Source, len(s.Engine.Columns()), failed); err != nil {
		s.cmdCtx.Logger.Warn("failed to record run", "source", s.Source, "error", err)
	}
	return out
}

func cutAssignment(s string) (string, string, bool) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
