package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

var numericCell = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?$`)

// coerceCell types a delimited-text cell: integers become int64, decimals
// float64, true/false bool. Anything else, including zero-padded or
// plus-prefixed numbers, stays a trimmed string.
func coerceCell(s string) any {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if !numericCell.MatchString(s) {
		return s
	}
	if !strings.Contains(s, ".") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func coerceNumber(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// stringify renders a raw cell as trimmed text.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// stringList splits a cell on commas, semicolons, or pipes. JSON arrays are
// taken element-wise.
func stringList(v any) []string {
	var raw []string
	if arr, ok := v.([]any); ok {
		for _, item := range arr {
			raw = append(raw, stringify(item))
		}
	} else {
		raw = strings.FieldsFunc(stringify(v), func(r rune) bool {
			return r == ',' || r == ';' || r == '|'
		})
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// employeeCount reads a head count. Empty yields nil; "1,200" and "500+" are
// accepted; anything else non-integral is an error.
func employeeCount(v any) (*int, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case int64:
		n := int(t)
		return &n, nil
	case float64:
		if t != math.Trunc(t) {
			return nil, eris.Errorf("employee count %v is not a whole number", t)
		}
		n := int(t)
		return &n, nil
	}

	s := stringify(v)
	if s == "" {
		return nil, nil
	}
	cleaned := strings.NewReplacer(",", "", " ", "", "+", "").Replace(s)
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil, eris.Errorf("employee count %q is not a number", s)
	}
	return &n, nil
}

// enumValue upper-cases a declared enum and joins words with underscores
// ("c-level" -> "C_LEVEL").
func enumValue(v any) string {
	s := strings.ToUpper(stringify(v))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
