package loader

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format selects the reader used for a file.
type Format string

// Supported formats. FormatAuto picks one from the file extension.
const (
	FormatAuto  Format = "auto"
	FormatCSV   Format = "csv"
	FormatFWF   Format = "fwf"
	FormatExcel Format = "excel"
)

// NoHeader disables the header row; columns are named by position.
const NoHeader = -1

// DefaultNAValues are cell texts read as missing values.
var DefaultNAValues = []string{"", "NA", "N/A", "n/a", "NaN", "nan", "NULL", "null", "None", "#N/A", "<NA>"}

// Options control how a file becomes a table.
type Options struct {
	Format       Format   `koanf:"format"`
	Delimiter    string   `koanf:"delimiter"`     // CSV field separator; "tab" or "\t" for tabs
	HeaderRow    int      `koanf:"header_row"`    // zero-based; rows above it are skipped; NoHeader for none
	ParseDates   bool     `koanf:"parse_dates"`   // type date-like text columns as time.Time
	IndexColumns []int    `koanf:"index_columns"` // zero-based positions moved to the row index
	Widths       []int    `koanf:"widths"`        // fixed-width column widths; inferred when empty
	Sheet        string   `koanf:"sheet"`         // Excel sheet name; first sheet when empty
	NAValues     []string `koanf:"na_values"`     // nil means DefaultNAValues
}

// DefaultOptions returns options for a comma-separated file with a header row.
func DefaultOptions() Options {
	return Options{
		Format:    FormatAuto,
		Delimiter: ",",
		HeaderRow: 0,
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	switch o.Format {
	case "", FormatAuto, FormatCSV, FormatFWF, FormatExcel:
	default:
		return fmt.Errorf("unknown format %q (want auto, csv, fwf or excel)", o.Format)
	}
	if _, err := o.delimiter(); err != nil {
		return err
	}
	if o.HeaderRow < NoHeader {
		return fmt.Errorf("header_row must be >= %d, got %d", NoHeader, o.HeaderRow)
	}
	for _, w := range o.Widths {
		if w <= 0 {
			return fmt.Errorf("widths must be positive, got %d", w)
		}
	}
	for _, i := range o.IndexColumns {
		if i < 0 {
			return fmt.Errorf("index_columns must be >= 0, got %d", i)
		}
	}
	return nil
}

func (o Options) delimiter() (rune, error) {
	switch o.Delimiter {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(o.Delimiter) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", o.Delimiter)
	}
	r, _ := utf8.DecodeRuneInString(o.Delimiter)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", o.Delimiter)
	}
	return r, nil
}

func (o Options) naValues() map[string]bool {
	values := o.NAValues
	if values == nil {
		values = DefaultNAValues
	}
	set := make(map[string]bool, len(values)+1)
	set[""] = true
	for _, v := range values {
		set[v] = true
	}
	return set
}

// DetectFormat picks a format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".fwf", ".dat", ".prn":
		return FormatFWF, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("cannot detect format of %s; set the format option", filepath.Base(path))
	}
}
