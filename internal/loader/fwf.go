package loader

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// readFWF splits each line at fixed widths. Without widths, column
// boundaries are inferred from character positions that are blank on
// every line. Cells are trimmed of surrounding spaces.
func readFWF(ctx context.Context, r io.Reader, widths []int) ([][]string, error) {
	var lines [][]rune
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if len(lines)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, []rune(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	spans := spansFromWidths(widths)
	if len(spans) == 0 {
		spans = inferSpans(lines)
	}
	if len(spans) == 0 {
		return nil, errors.New("cannot infer fixed-width columns")
	}

	records := make([][]string, len(lines))
	for i, line := range lines {
		rec := make([]string, len(spans))
		for j, sp := range spans {
			rec[j] = strings.TrimSpace(slice(line, sp.start, sp.end))
		}
		records[i] = rec
	}
	return records, nil
}

type span struct{ start, end int } // rune offsets, end exclusive; -1 means to end of line

func spansFromWidths(widths []int) []span {
	spans := make([]span, 0, len(widths))
	pos := 0
	for _, w := range widths {
		spans = append(spans, span{pos, pos + w})
		pos += w
	}
	return spans
}

// inferSpans finds runs of columns that hold a non-blank character on at
// least one line.
func inferSpans(lines [][]rune) []span {
	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	used := make([]bool, maxLen)
	for _, l := range lines {
		for i, r := range l {
			if r != ' ' && r != '\t' {
				used[i] = true
			}
		}
	}

	var spans []span
	start := -1
	for i, u := range used {
		switch {
		case u && start < 0:
			start = i
		case !u && start >= 0:
			spans = append(spans, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, -1})
	}
	return spans
}

func slice(line []rune, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end < 0 || end > len(line) {
		end = len(line)
	}
	return string(line[start:end])
}
