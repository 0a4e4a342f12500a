package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
)

func readCSV(ctx context.Context, r io.Reader, opts Options) ([][]string, error) {
	delim, err := opts.delimiter()
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		if len(records)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Err: pe.Err}
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
