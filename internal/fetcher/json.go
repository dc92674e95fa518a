package fetcher

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// DecodeJSONRecords decodes either an array of objects or a single object.
// A single object is returned as a one-element slice. Numbers are kept as
// json.Number so callers can tell integers from decimals.
func DecodeJSONRecords(data []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, bomUTF8))
	if len(trimmed) == 0 {
		return nil, eris.New("json: empty document")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	switch trimmed[0] {
	case '[':
		var records []map[string]any
		if err := decoder.Decode(&records); err != nil {
			return nil, eris.Wrap(err, "json: decode array")
		}
		return records, nil
	case '{':
		var record map[string]any
		if err := decoder.Decode(&record); err != nil {
			return nil, eris.Wrap(err, "json: decode object")
		}
		return []map[string]any{record}, nil
	default:
		return nil, eris.Errorf("json: expected object or array, got %q", trimmed[0])
	}
}
