package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hourPattern   = regexp.MustCompile(`(\d+)\s*h`)
	minutePattern = regexp.MustCompile(`(\d+)\s*m`)
)

// ParseDuration converts text such as "2h 10m", "45m" or "3h" into total
// minutes. The hour and minute components are matched independently; nil is
// returned when neither is present.
func ParseDuration(text *string) *int {
	if text == nil {
		return nil
	}
	s := strings.TrimSpace(*text)
	if s == "" {
		return nil
	}

	hours, hasHours := firstNumber(hourPattern, s)
	minutes, hasMinutes := firstNumber(minutePattern, s)
	if !hasHours && !hasMinutes {
		return nil
	}
	return IntPtr(hours*60 + minutes)
}

func firstNumber(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatDuration renders minutes back into the scraped "Nh Nm" form.
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return strconv.Itoa(m) + "m"
	case m == 0:
		return strconv.Itoa(h) + "h"
	default:
		return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m"
	}
}
