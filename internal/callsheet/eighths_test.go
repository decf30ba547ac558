package callsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEighths(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2 3/8", 19},
		{"3/8", 3},
		{"8/8", 8},
		{"0/8", 0},
		{"2", 16},
		{" 1  4/8 ", 12},
		{"1/2", 4},
		{"1/3", 3},
		{"5/0", 5},
		{"", 0},
		{"two pages", 0},
		{"1.5", 0},
		{"3/8 pages", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEighths(tt.in))
		})
	}
}

func TestFormatEighths(t *testing.T) {
	assert.Equal(t, "2 3/8", FormatEighths(19))
	assert.Equal(t, "3/8", FormatEighths(3))
	assert.Equal(t, "1", FormatEighths(8))
	assert.Equal(t, "0", FormatEighths(0))
	assert.Equal(t, "0", FormatEighths(-4))
	assert.Equal(t, "12", FormatEighths(96))
}

func TestEighthsRoundTrip(t *testing.T) {
	for _, s := range []string{"2 3/8", "3/8", "1", "0", "7 7/8"} {
		assert.Equal(t, s, FormatEighths(ParseEighths(s)), s)
	}
	assert.Equal(t, "1", FormatEighths(ParseEighths("8/8")))
	assert.Equal(t, "0", FormatEighths(ParseEighths("0/8")))
}
