package conv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []struct {
	suffix string
	scale  int64
}{
	{"kib", 1 << 10}, {"mib", 1 << 20}, {"gib", 1 << 30},
	{"kb", 1000}, {"mb", 1000 * 1000}, {"gb", 1000 * 1000 * 1000},
	{"k", 1 << 10}, {"m", 1 << 20}, {"g", 1 << 30},
	{"b", 1},
}

// ParseSize parses a non-negative byte count such as "4096", "64KiB",
// "8m" or "1GB". Single-letter suffixes are binary. Suffixes are matched
// case-insensitively.
func ParseSize(s string) (int64, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return 0, fmt.Errorf("conv: empty size")
	}

	scale := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(in, u.suffix) {
			in = strings.TrimSpace(strings.TrimSuffix(in, u.suffix))
			scale = u.scale
			break
		}
	}

	n, err := strconv.ParseInt(in, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("conv: invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("conv: negative size %q", s)
	}
	if n > math.MaxInt64/scale {
		return 0, fmt.Errorf("conv: size %q overflows", s)
	}
	return n * scale, nil
}
