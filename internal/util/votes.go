package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseVoteCount converts "253K", "1.2m", "5,700" or "5700.0" into an integer
// count. The suffix check is case-insensitive and the result is truncated.
// On failure it returns nil together with the reason; callers log the error
// and keep going.
func ParseVoteCount(text *string) (*int64, error) {
	if text == nil {
		return nil, nil
	}
	s := strings.ToUpper(strings.TrimSpace(*text))

	multiplier := 1.0
	switch {
	case strings.Contains(s, "K"):
		s = strings.ReplaceAll(s, "K", "")
		multiplier = 1_000
	case strings.Contains(s, "M"):
		s = strings.ReplaceAll(s, "M", "")
		multiplier = 1_000_000
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("could not parse voting count %q: %w", *text, err)
	}
	v := f * multiplier
	if math.IsNaN(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
		return nil, fmt.Errorf("could not parse voting count %q: out of range", *text)
	}
	return Int64Ptr(int64(v)), nil
}

// ParseRating reads a scraped rating such as "7.5". Missing or "N/A" yields nil.
func ParseRating(text *string) (*float64, error) {
	if text == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*text)
	if s == "" || strings.EqualFold(s, "N/A") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("could not parse rating %q", *text)
	}
	return FloatPtr(f), nil
}

// FormatThousands renders n with comma separators, e.g. 1234567 -> "1,234,567".
func FormatThousands(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
