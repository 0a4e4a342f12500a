// Package loader reads CSV, fixed-width and Excel files into tables.
//
// Every reader produces raw text records; a shared builder then applies
// the header row, index columns and per-column typing. Cells are typed
// per column: a column whose non-missing cells all parse as integers
// becomes int64, then float64, then bool, then (with ParseDates)
// time.Time; anything else stays text. Missing cells are nil.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapxfer/pkg/core"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ParseError is returned when a file cannot be turned into a table.
type ParseError struct {
	Path   string
	Format Format
	Line   int // 1-based record number, 0 when not tied to a record
	Err    error
}

func (e *ParseError) Error() string {
	name := filepath.Base(e.Path)
	if e.Line > 0 {
		return fmt.Sprintf("%s (%s) line %d: %v", name, e.Format, e.Line, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", name, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Loader reads tables from files.
type Loader struct {
	logger *slog.Logger
}

// New creates a loader. A nil logger discards output.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{logger: logger}
}

// Load reads the file at path. Every failure is a *ParseError.
func (l *Loader) Load(ctx context.Context, path string, opts Options) (*core.Table, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, &ParseError{Path: path, Format: FormatAuto, Err: err}
		}
		format = f
	}
	if err := opts.Validate(); err != nil {
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}
	if format == FormatCSV && strings.EqualFold(filepath.Ext(path), ".tsv") && (opts.Delimiter == "" || opts.Delimiter == ",") {
		opts.Delimiter = "tab"
	}

	f, err := os.Open(path) //nolint:gosec // G304: path is chosen by the user
	if err != nil {
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}
	defer func() { _ = f.Close() }()

	tbl, err := l.Read(ctx, f, format, opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}

	l.logger.Debug("table loaded",
		"path", path,
		"format", format,
		"columns", tbl.Width(),
		"rows", tbl.Len())
	return tbl, nil
}

// Read parses r in the given format. format must not be FormatAuto.
func (l *Loader) Read(ctx context.Context, r io.Reader, format Format, opts Options) (*core.Table, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(ctx, stripBOM(r), opts)
	case FormatFWF:
		records, err = readFWF(ctx, stripBOM(r), opts.Widths)
	case FormatExcel:
		records, err = readExcel(r, opts.Sheet)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Format = format
			return nil, pe
		}
		return nil, &ParseError{Format: format, Err: err}
	}

	tbl, err := build(records, opts)
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	return tbl, nil
}

// stripBOM drops a leading UTF-8 byte order mark and, when a UTF-16 mark
// is present, decodes to UTF-8. Other bytes pass through untouched.
func stripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}
