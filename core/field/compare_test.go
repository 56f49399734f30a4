package field

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompare_Text(t *testing.T) {
	tests := []struct {
		name     string
		a, b     any
		expected int
	}{
		{"case_insensitive_equal", "Alpha", "alpha", 0},
		{"ordering", "ant", "bee", -1},
		{"empty_sorts_first", "", "zebra", -1},
		{"nil_sorts_first", nil, "zebra", -1},
		{"two_empty_equal", "", nil, 0},
		{"non_empty_after_empty", "a", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Compare(tt.a, tt.b, TypeText, DirectionAsc))
		})
	}
}

func TestCompare_Number(t *testing.T) {
	assert.Equal(t, -1, Compare(1, 2, TypeNumber, DirectionAsc))
	assert.Equal(t, 1, Compare(2.5, 2, TypeNumber, DirectionAsc))
	assert.Equal(t, 0, Compare(3, 3.0, TypeNumber, DirectionAsc))
	assert.Equal(t, -1, Compare("not a number", 1, TypeNumber, DirectionAsc))
	assert.Equal(t, 0, Compare(nil, struct{}{}, TypeNumber, DirectionAsc))
}

func TestCompare_Dates(t *testing.T) {
	earlier := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := "2024-06-01"

	assert.Equal(t, -1, Compare(earlier, later, TypeDate, DirectionAsc))
	assert.Equal(t, 1, Compare(later, earlier, TypeDate, DirectionAsc))
	assert.Equal(t, -1, Compare("garbage", earlier, TypeDate, DirectionAsc), "unparseable sorts first")
	assert.Equal(t, 0, Compare("garbage", "also garbage", TypeDate, DirectionAsc))
}

func TestCompare_DescendingNegates(t *testing.T) {
	assert.Equal(t, 1, Compare(1, 2, TypeNumber, DirectionDesc))
	assert.Equal(t, -1, Compare("bee", "ant", TypeText, DirectionDesc))
	assert.Equal(t, 0, Compare(5, 5, TypeNumber, DirectionDesc))
}

func TestDirection_Toggle(t *testing.T) {
	assert.Equal(t, DirectionAsc, DirectionDesc.Toggle())
	assert.Equal(t, DirectionDesc, DirectionAsc.Toggle())
	assert.Equal(t, DirectionDesc, Direction("").Toggle())
}
