package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// sizeUnits maps a size suffix to its multiplier in binary units.
var sizeUnits = map[byte]int64{
	'B': 1,
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

var (
	errNegativeSize = errors.New("negative size")
	errSizeRange    = errors.New("size out of range")
)

// ParseSize turns "512", "64K", "1.5G" and similar into a byte count. The
// suffix is case-insensitive and counts in powers of 1024. The result is
// never negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty size string")
	}
	if s[0] == '-' {
		return 0, fmt.Errorf("%w: %q", errNegativeSize, s)
	}

	unit := int64(1)
	num := s
	if m, ok := sizeUnits[strings.ToUpper(s[len(s)-1:])[0]]; ok {
		unit = m
		num = s[:len(s)-1]
	}
	if num == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	n, err := strconv.ParseInt(num, 10, 64)
	switch {
	case err == nil && n <= math.MaxInt64/unit:
		return n * unit, nil
	case err == nil, errors.Is(err, strconv.ErrRange):
		return 0, fmt.Errorf("%w: %q", errSizeRange, s)
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	v := f * float64(unit)
	// float64(MaxInt64) rounds up to 2^63, which is already out of range.
	if math.IsInf(v, 0) || v >= float64(math.MaxInt64) {
		return 0, fmt.Errorf("%w: %q", errSizeRange, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q", errNegativeSize, s)
	}
	return int64(v), nil
}
