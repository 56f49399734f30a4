package field

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoerce_EmptyAndNilPassThrough(t *testing.T) {
	for _, ft := range []Type{TypeText, TypeNumber, TypeDate, TypeDateTime, TypeObject} {
		t.Run(string(ft), func(t *testing.T) {
			v, ok := Coerce("", ft)
			assert.True(t, ok)
			assert.Equal(t, "", v)

			v, ok = Coerce(nil, ft)
			assert.True(t, ok)
			assert.Nil(t, v)
		})
	}
}

func TestCoerce_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		fieldType Type
		expected any
		success  bool
	}{
		{"number_from_string", "42.5", TypeNumber, 42.5, true},
		{"number_from_int", 7, TypeNumber, 7.0, true},
		{"number_invalid", "abc", TypeNumber, nil, false},
		{"text_passthrough", "hello", TypeText, "hello", true},
		{"object_passthrough", map[string]any{"a": 1}, TypeObject, map[string]any{"a": 1}, true},
		{"date_invalid", "not-a-date", TypeDate, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := Coerce(tt.raw, tt.fieldType)
			assert.Equal(t, tt.success, ok)
			if tt.success {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestCoerce_DateNormalizedToMidnight(t *testing.T) {
	result, ok := Coerce("2024-03-15 13:45:10", TypeDate)
	assert.True(t, ok)
	parsed, isTime := result.(time.Time)
	assert.True(t, isTime)
	assert.Equal(t, 0, parsed.Hour())
	assert.Equal(t, 0, parsed.Minute())
	assert.Equal(t, 15, parsed.Day())
}

func TestCoerce_DateTimeKeepsTimeOfDay(t *testing.T) {
	result, ok := Coerce("2024-03-15 13:45:10", TypeDateTime)
	assert.True(t, ok)
	parsed, isTime := result.(time.Time)
	assert.True(t, isTime)
	assert.Equal(t, 13, parsed.Hour())
}

func TestCoerce_Lists(t *testing.T) {
	t.Run("date list fails as a whole", func(t *testing.T) {
		_, ok := Coerce([]any{"2024-01-01", "bogus"}, TypeDate)
		assert.False(t, ok)
	})

	t.Run("date list succeeds element-wise", func(t *testing.T) {
		result, ok := Coerce([]any{"2024-01-01", "2024-02-01"}, TypeDate)
		assert.True(t, ok)
		items := result.([]any)
		assert.Len(t, items, 2)
	})

	t.Run("numeric range collapses on a bad bound", func(t *testing.T) {
		_, ok := Coerce([]any{"10", "x"}, TypeNumber)
		assert.False(t, ok)
	})

	t.Run("numeric range coerces both bounds", func(t *testing.T) {
		result, ok := Coerce([]any{"10", "50"}, TypeNumber)
		assert.True(t, ok)
		assert.Equal(t, []any{10.0, 50.0}, result)
	})

	t.Run("non-pair numeric list passes through", func(t *testing.T) {
		result, ok := Coerce([]any{"a", "b", "c"}, TypeNumber)
		assert.True(t, ok)
		assert.Equal(t, []any{"a", "b", "c"}, result)
	})

	t.Run("text list passes through", func(t *testing.T) {
		result, ok := Coerce([]string{"x", "y"}, TypeText)
		assert.True(t, ok)
		assert.Equal(t, []any{"x", "y"}, result)
	})
}
