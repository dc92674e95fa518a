package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want any
	}{
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.5", 3.5},
		{"0", int64(0)},
		{"007", "007"},
		{"+15551234567", "+15551234567"},
		{"555-123-4567", "555-123-4567"},
		{"TRUE", true},
		{"false", false},
		{" Acme ", "Acme"},
		{"", ""},
		{"1e5", "1e5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, coerceCell(tt.in))
		})
	}
}

func TestStringify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", stringify(nil))
	assert.Equal(t, "5551234567", stringify(int64(5551234567)))
	assert.Equal(t, "2.5", stringify(2.5))
	assert.Equal(t, "1000000", stringify(float64(1000000)))
	assert.Equal(t, "true", stringify(true))
	assert.Equal(t, "12", stringify(json.Number("12")))
	assert.Equal(t, "a, b", stringify([]any{"a", "", "b"}))
}

func TestEmployeeCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      any
		want    int
		wantNil bool
		wantErr bool
	}{
		{nil, 0, true, false},
		{"", 0, true, false},
		{int64(250), 250, false, false},
		{float64(40), 40, false, false},
		{"1,200", 1200, false, false},
		{"500+", 500, false, false},
		{12.5, 0, false, true},
		{"lots", 0, false, true},
	}
	for _, tt := range tests {
		got, err := employeeCount(tt.in)
		if tt.wantErr {
			require.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err, "%v", tt.in)
		if tt.wantNil {
			assert.Nil(t, got)
			continue
		}
		require.NotNil(t, got)
		assert.Equal(t, tt.want, *got)
	}
}

func TestEnumValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "C_LEVEL", enumValue("c-level"))
	assert.Equal(t, "VP", enumValue(" vp "))
	assert.Equal(t, "", enumValue(nil))
}
