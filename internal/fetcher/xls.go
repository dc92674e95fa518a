package fetcher

import (
	"bytes"

	"github.com/extrame/xls"
	"github.com/rotisserie/eris"
)

// maxXLSCols is the BIFF8 column limit.
const maxXLSCols = 256

var ole2Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// IsOLE2 reports whether data is a compound document, the container used by
// legacy Excel 97-2003 workbooks.
func IsOLE2(data []byte) bool {
	return bytes.HasPrefix(data, ole2Signature)
}

// ReadXLS parses a legacy BIFF workbook and returns the rows of its first
// sheet. Trailing empty cells are trimmed and blank rows are dropped.
func ReadXLS(data []byte) (rows [][]string, err error) {
	if !IsOLE2(data) {
		return nil, eris.New("xls: not a compound document")
	}

	// The decoder panics on truncated or malformed streams.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, eris.Errorf("xls: malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, eris.Wrap(err, "xls: open workbook")
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, eris.New("xls: workbook has no sheets")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, eris.New("xls: first sheet unreadable")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			continue
		}
		cells := xlsRowToStrings(row)
		if isBlank(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// sheetRow returns nil for rows the sheet never stored; WorkSheet.Row
// dereferences the missing entry.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// xlsRowToStrings reads cells up to the row's recorded bound. Rows written
// without a ROW record report a bound of zero, so those are scanned in full.
func xlsRowToStrings(row *xls.Row) []string {
	last := row.LastCol()
	if last <= 0 || last >= maxXLSCols {
		last = maxXLSCols - 1
	}
	cells := make([]string, 0, last+1)
	for c := 0; c <= last; c++ {
		cells = append(cells, row.Col(c))
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
