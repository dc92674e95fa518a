// Package fetcher loads import files, local or over HTTP, and reads CSV, XLSX,
// and JSON payloads into rows.
package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// ReadCSV decodes data and returns every non-blank record, header included.
// Records whose fields are all empty are dropped.
func ReadCSV(data []byte, opts CSVOptions) ([][]string, error) {
	text, err := DecodeText(data)
	if err != nil {
		return nil, eris.Wrap(err, "csv: decode")
	}

	reader := csv.NewReader(strings.NewReader(text))
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}

	return rows, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
