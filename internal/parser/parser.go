// Package parser turns uploaded CSV, Excel, and JSON files into company and
// contact candidates.
package parser

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/fetcher"
	"github.com/sells-group/media-import/internal/fieldmap"
	"github.com/sells-group/media-import/internal/model"
	"github.com/sells-group/media-import/internal/role"
)

// DefaultPreviewRows is how many raw rows ParsedData.Preview carries.
const DefaultPreviewRows = 5

// Format is a supported input file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatJSON Format = "json"
)

// UnsupportedFormatError is returned when a file extension has no reader.
type UnsupportedFormatError struct {
	FileName  string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("parser: unsupported file format for %q (no extension)", e.FileName)
	}
	return fmt.Sprintf("parser: unsupported file format %q for %q (supported: csv, xlsx, xls, json)", e.Extension, e.FileName)
}

// DetectFormat maps a file name to a Format by extension.
func DetectFormat(fileName string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	switch Format(ext) {
	case FormatCSV, FormatXLSX, FormatXLS, FormatJSON:
		return Format(ext), nil
	}
	return "", &UnsupportedFormatError{FileName: fileName, Extension: ext}
}

// Parser holds the field mapper and role engine applied to every row.
type Parser struct {
	mapper      *fieldmap.Mapper
	engine      *role.Engine
	previewRows int
	csvOpts     fetcher.CSVOptions
}

// Option configures a Parser.
type Option func(*Parser)

// WithPreviewRows overrides DefaultPreviewRows.
func WithPreviewRows(n int) Option {
	return func(p *Parser) {
		if n >= 0 {
			p.previewRows = n
		}
	}
}

// WithCSVOptions overrides the CSV reader settings.
func WithCSVOptions(opts fetcher.CSVOptions) Option {
	return func(p *Parser) { p.csvOpts = opts }
}

// New creates a Parser. Nil mapper or engine fall back to the defaults.
func New(mapper *fieldmap.Mapper, engine *role.Engine, opts ...Option) *Parser {
	if mapper == nil {
		mapper = fieldmap.Default()
	}
	if engine == nil {
		engine = role.Default()
	}
	p := &Parser{
		mapper:      mapper,
		engine:      engine,
		previewRows: DefaultPreviewRows,
		csvOpts:     fetcher.CSVOptions{TrimSpace: true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile dispatches on the file extension, reads every row, and builds
// candidates. An unsupported extension fails before any row is read; row
// failures are collected in ParsedData.Errors.
func (p *Parser) ParseFile(data []byte, fileName string) (*model.ParsedData, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	headers, rows, err := p.readRows(format, data)
	if err != nil {
		return nil, eris.Wrapf(err, "parser: read %s", fileName)
	}

	zap.L().Debug("parser: read rows",
		zap.String("file", fileName),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
	)

	return p.ProcessRawData(headers, rows), nil
}

// RawRows reads a file into raw rows without building candidates.
func (p *Parser) RawRows(data []byte, fileName string) ([]string, []model.RawRow, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, nil, err
	}
	headers, rows, err := p.readRows(format, data)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "parser: read %s", fileName)
	}
	return headers, rows, nil
}

func (p *Parser) readRows(format Format, data []byte) ([]string, []model.RawRow, error) {
	switch format {
	case FormatCSV:
		table, err := fetcher.ReadCSV(data, p.csvOpts)
		if err != nil {
			return nil, nil, err
		}
		headers, rows := tableToRows(table)
		return headers, rows, nil
	case FormatXLSX, FormatXLS:
		table, err := readWorkbook(data)
		if err != nil {
			return nil, nil, err
		}
		headers, rows := tableToRows(table)
		return headers, rows, nil
	case FormatJSON:
		records, err := fetcher.DecodeJSONRecords(data)
		if err != nil {
			return nil, nil, err
		}
		rows := make([]model.RawRow, 0, len(records))
		for _, rec := range records {
			rows = append(rows, jsonToRow(rec))
		}
		return nil, rows, nil
	}
	return nil, nil, &UnsupportedFormatError{Extension: string(format)}
}

// readWorkbook picks the reader by content rather than extension, since
// Excel 97-2003 files are routinely saved with either.
func readWorkbook(data []byte) ([][]string, error) {
	if fetcher.IsOLE2(data) {
		return fetcher.ReadXLS(data)
	}
	return fetcher.ReadXLSX(data, fetcher.XLSXOptions{})
}

// tableToRows treats the first record as the header. Blank header cells are
// dropped; a repeated header keeps its first column.
func tableToRows(table [][]string) ([]string, []model.RawRow) {
	if len(table) == 0 {
		return nil, nil
	}

	type column struct {
		index int
		name  string
	}
	var cols []column
	seen := make(map[string]bool)
	for i, h := range table[0] {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		cols = append(cols, column{index: i, name: h})
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.name
	}

	rows := make([]model.RawRow, 0, len(table)-1)
	for _, record := range table[1:] {
		row := make(model.RawRow, len(cols))
		for _, c := range cols {
			if c.index < len(record) {
				row[c.name] = coerceCell(record[c.index])
			}
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func jsonToRow(rec map[string]any) model.RawRow {
	row := make(model.RawRow, len(rec))
	for k, v := range rec {
		if n, ok := v.(json.Number); ok {
			row[k] = coerceNumber(n)
			continue
		}
		row[k] = v
	}
	return row
}

// orderedKeys lists the row's keys in header order, then any extra keys sorted.
func orderedKeys(row model.RawRow, headers []string) []string {
	keys := make([]string, 0, len(row))
	inHeader := make(map[string]bool, len(headers))
	for _, h := range headers {
		inHeader[h] = true
		if _, ok := row[h]; ok {
			keys = append(keys, h)
		}
	}
	var extra []string
	for k := range row {
		if !inHeader[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
