package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapxfer/internal/coerce"
	"github.com/leapstack-labs/leapxfer/pkg/core"
)

// build turns raw records into a typed table.
func build(records [][]string, opts Options) (*core.Table, error) {
	var header []string
	data := records
	if opts.HeaderRow != NoHeader {
		if opts.HeaderRow >= len(records) {
			if len(records) == 0 {
				return core.Empty(), nil
			}
			return nil, fmt.Errorf("header row %d is past the end of the file (%d rows)", opts.HeaderRow, len(records))
		}
		header = records[opts.HeaderRow]
		data = records[opts.HeaderRow+1:]
	}

	width := len(header)
	for _, rec := range data {
		if len(rec) > width {
			width = len(rec)
		}
	}
	names := columnNames(header, width)

	isIndex := make(map[int]bool, len(opts.IndexColumns))
	for _, i := range opts.IndexColumns {
		if i >= width {
			return nil, fmt.Errorf("index column %d out of range (%d columns)", i, width)
		}
		isIndex[i] = true
	}

	na := opts.naValues()
	typed := make([]core.Column, width)
	for j := 0; j < width; j++ {
		cells := make([]string, len(data))
		for i, rec := range data {
			if j < len(rec) {
				cells[i] = rec[j]
			}
		}
		typed[j] = core.Column{Name: names[j], Values: typeCells(cells, na, opts.ParseDates)}
	}

	var cols, index []core.Column
	for j, col := range typed {
		if !isIndex[j] {
			cols = append(cols, col)
		}
	}
	for _, j := range opts.IndexColumns {
		index = append(index, typed[j])
	}

	tbl, err := core.NewTable(cols...)
	if err != nil {
		return nil, err
	}
	if len(index) > 0 {
		if err := tbl.SetIndex(index...); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// columnNames fills blanks with "Unnamed: N" and suffixes repeats as
// name.1, name.2, ... Without a header, columns are named by position.
func columnNames(header []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]bool, width)
	dups := make(map[string]int)
	for j := 0; j < width; j++ {
		base := strconv.Itoa(j)
		if header != nil {
			base = ""
			if j < len(header) {
				base = strings.TrimSpace(header[j])
			}
			if base == "" {
				base = fmt.Sprintf("Unnamed: %d", j)
			}
		}
		name := base
		for used[name] {
			dups[base]++
			name = fmt.Sprintf("%s.%d", base, dups[base])
		}
		used[name] = true
		names[j] = name
	}
	return names
}

// typeCells picks the narrowest type every non-missing cell parses as.
func typeCells(cells []string, na map[string]bool, parseDates bool) []core.Value {
	out := make([]core.Value, len(cells))
	present := cells[:0:0]
	for _, c := range cells {
		if !na[strings.TrimSpace(c)] {
			present = append(present, c)
		}
	}

	parse := pickParser(present, parseDates)
	for i, c := range cells {
		if na[strings.TrimSpace(c)] {
			continue
		}
		out[i] = parse(c)
	}
	return out
}

type cellParser func(string) core.Value

func pickParser(present []string, parseDates bool) cellParser {
	if len(present) == 0 {
		return func(s string) core.Value { return s }
	}
	if all(present, func(s string) bool { _, err := coerce.ParseInt(s); return err == nil }) {
		return func(s string) core.Value { n, _ := coerce.ParseInt(s); return n }
	}
	if all(present, func(s string) bool { _, err := coerce.ParseFloat(s); return err == nil }) {
		return func(s string) core.Value { f, _ := coerce.ParseFloat(s); return f }
	}
	if all(present, isBoolWord) {
		return func(s string) core.Value { return strings.EqualFold(strings.TrimSpace(s), "true") }
	}
	if parseDates && all(present, func(s string) bool { _, err := coerce.ParseDate(s); return err == nil }) {
		return func(s string) core.Value { t, _ := coerce.ParseDate(s); return t }
	}
	return func(s string) core.Value { return s }
}

func isBoolWord(s string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func all(cells []string, pred func(string) bool) bool {
	for _, c := range cells {
		if !pred(c) {
			return false
		}
	}
	return true
}
