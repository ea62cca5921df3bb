package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"0":     0,
		"4096":  4096,
		" 64 ":  64,
		"512b":  512,
		"8K":    8 << 10,
		"8k":    8 << 10,
		"64M":   64 << 20,
		"2G":    2 << 30,
		"1T":    1 << 40,
		"1.5G":  3 << 29,
		"0.25M": 256 << 10,
		"+16K":  16 << 10,
		// Largest whole count that still fits.
		"8388607T":            8388607 << 40,
		"9223372036854775807": math.MaxInt64,
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			got, err := ParseSize(input)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseSize_Malformed(t *testing.T) {
	for _, input := range []string{"", "   ", "fast", "M", "12 G", "1.2.3K", "NaN"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSize(input)
			assert.Error(t, err)
		})
	}
}

func TestParseSize_RejectsNegative(t *testing.T) {
	for _, input := range []string{"-1", "-1M", "-0.5G", "-0"} {
		t.Run(input, func(t *testing.T) {
			got, err := ParseSize(input)
			require.ErrorIs(t, err, errNegativeSize)
			assert.Zero(t, got)
		})
	}
}

func TestParseSize_RejectsOverflow(t *testing.T) {
	inputs := []string{
		"9000000T",             // integer times unit wraps
		"8388608T",             // exactly 2^63
		"9223372036854775808",  // one past MaxInt64
		"1e30",                 // float far outside int64
		"9.3e18",               // float just past MaxInt64
		"8388607.9999999999T",  // rounds to 2^63
		"Inf",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := ParseSize(input)
			require.ErrorIs(t, err, errSizeRange)
			assert.Zero(t, got)
		})
	}
}
