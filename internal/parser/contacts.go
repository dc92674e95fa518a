package parser

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/media-import/internal/fieldmap"
	"github.com/sells-group/media-import/internal/model"
)

// ContactRow is one row of a contact-only file. Contact is nil when the row
// could not be processed; Err then holds the reason.
type ContactRow struct {
	Row     int
	Contact *model.ContactCandidate
	Err     *model.ImportError
}

// ParseContacts reads a contact-only file. Unlike ParseFile it keeps one entry
// per data row, including rows with no name, so every row can be reported.
// No companies are built; the company column only fills CompanyName.
func (p *Parser) ParseContacts(data []byte, fileName string) ([]ContactRow, error) {
	headers, rows, err := p.RawRows(data, fileName)
	if err != nil {
		return nil, err
	}
	return p.ContactRows(headers, rows), nil
}

// ContactRows converts raw rows into ContactRows.
func (p *Parser) ContactRows(headers []string, rows []model.RawRow) []ContactRow {
	out := make([]ContactRow, 0, len(rows))
	for i, row := range rows {
		rowNum := i + 1
		contact, err := p.contactRow(rowNum, row, headers)
		if err != nil {
			ie := model.NewError(rowNum, "general", rawRowString(row), err.Error())
			out = append(out, ContactRow{Row: rowNum, Err: &ie})
			continue
		}
		out = append(out, ContactRow{Row: rowNum, Contact: contact})
	}

	zap.L().Debug("parser: processed contact rows", zap.Int("rows", len(rows)))
	return out
}

func (p *Parser) contactRow(rowNum int, row model.RawRow, headers []string) (contact *model.ContactCandidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			contact = nil
			err = eris.Errorf("parser: row %d: %v", rowNum, r)
		}
	}()

	if row == nil {
		return nil, eris.Errorf("parser: row %d: not an object", rowNum)
	}
	mapping := p.mapper.Map(orderedKeys(row, headers))
	companyName := stringify(mapping.Value(row, fieldmap.CompanyName))
	return p.buildContact(rowNum, row, mapping, companyName), nil
}
