package fieldmap

import (
	"github.com/sells-group/media-import/internal/model"
)

// Mapping is the resolved canonical field -> source header table for one header set.
type Mapping map[Field]string

// Has reports whether f resolved to a header.
func (m Mapping) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Value returns the raw cell for f, or nil if f is unmapped or the row lacks the column.
func (m Mapping) Value(row model.RawRow, f Field) any {
	key, ok := m[f]
	if !ok {
		return nil
	}
	return row[key]
}
