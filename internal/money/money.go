// Package money converts between user-facing decimal amount strings and the
// int64 minor-unit representation stored in the database. Keeping amounts in
// minor units makes every aggregate in the budget summary exact; floats never
// touch stored money.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount parses a decimal string like "1250" or "1250.50" into minor
// units (125000, 125050). At most two fraction digits are accepted. A leading
// minus sign is parsed so callers can distinguish "negative" from "garbage"
// in their error messages.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, fmt.Errorf("malformed amount %q", s)
		}
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("malformed amount %q", s)
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	if whole == "" {
		whole = "0"
	}
	// Pad "5" -> "50" so .5 means 50 minor units.
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed amount %q", s)
	}

	minor := units*100 + cents
	if neg {
		minor = -minor
	}
	return minor, nil
}

// FormatAmount renders minor units as a decimal string: 125050 -> "1250.50".
func FormatAmount(minor int64) string {
	neg := minor < 0
	if neg {
		minor = -minor
	}
	out := fmt.Sprintf("%d.%02d", minor/100, minor%100)
	if neg {
		return "-" + out
	}
	return out
}
