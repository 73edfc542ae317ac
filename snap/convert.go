package snap

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	errEmptyValue   = errors.New("empty value")
	errInvalidInt   = errors.New("invalid integer")
	errIntOverflow  = errors.New("integer overflow")
	errInvalidFloat = errors.New("invalid float")
	errInvalidBool  = errors.New("invalid boolean")
)

// parseBool accepts the usual spellings, case-insensitive.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, errInvalidBool
}

// parseInt parses decimal and hex integers: 123, -456, 0xFF, +0x1A2B.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errEmptyValue
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return 0, errInvalidInt
	}

	var (
		result int
		err    error
	)
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		result, err = parseDigits(s[2:], 16)
	} else {
		result, err = parseDigits(s, 10)
	}
	if err != nil {
		return 0, err
	}
	if negative {
		result = -result
	}
	return result, nil
}

func parseDigits(s string, base int) (int, error) {
	if s == "" {
		return 0, errInvalidInt
	}
	result := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		var digit int
		switch {
		case c >= '0' && c <= '9':
			digit = int(c - '0')
		case base == 16 && c >= 'a' && c <= 'f':
			digit = int(c-'a') + 10
		case base == 16 && c >= 'A' && c <= 'F':
			digit = int(c-'A') + 10
		default:
			return 0, errInvalidInt
		}
		if result > (math.MaxInt-digit)/base {
			return 0, errIntOverflow
		}
		result = result*base + digit
	}
	return result, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errEmptyValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errInvalidFloat
	}
	return v, nil
}

// parseDuration supports "00:30" (30s), "01:30:15", Go durations ("1h30m"),
// spelled units ("3 sec", "2 hours") and the extended units d, w, M and Y.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyValue
	}
	if n := strings.Count(s, ":"); n > 0 {
		return parseColonDuration(s, n)
	}
	if d, ok := parseExtendedDuration(s); ok {
		return d, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	return parseSpelledDuration(s)
}

func parseColonDuration(s string, colons int) (time.Duration, error) {
	parts := strings.Split(s, ":")
	units := []time.Duration{time.Second, time.Minute, time.Hour}
	if colons > 2 {
		return 0, errors.New("too many colons")
	}
	var total time.Duration
	for i := range parts {
		n, err := parseDigits(parts[len(parts)-1-i], 10)
		if err != nil {
			return 0, fmt.Errorf("invalid colon duration %q", s)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

func parseExtendedDuration(s string) (time.Duration, bool) {
	if len(s) < 2 {
		return 0, false
	}
	var unit time.Duration
	switch s[len(s)-1] {
	case 'd', 'D':
		unit = 24 * time.Hour
	case 'w', 'W':
		unit = 7 * 24 * time.Hour
	case 'M':
		unit = 30 * 24 * time.Hour
	case 'y', 'Y':
		unit = 365 * 24 * time.Hour
	default:
		return 0, false
	}
	n, err := parseDigits(s[:len(s)-1], 10)
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

var spelledUnits = map[string]time.Duration{
	"ns": time.Nanosecond, "us": time.Microsecond, "µs": time.Microsecond, "ms": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hour": time.Hour, "hours": time.Hour,
}

// parseSpelledDuration handles "3 sec" and "1 hour 30 minutes".
func parseSpelledDuration(s string) (time.Duration, error) {
	var total time.Duration
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i == len(s) {
			break
		}
		start := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if start == i {
			return 0, errors.New("number expected before unit")
		}
		n, err := parseDigits(s[start:i], 10)
		if err != nil {
			return 0, err
		}
		for i < len(s) && s[i] == ' ' {
			i++
		}
		start = i
		for i < len(s) && s[i] != ' ' && (s[i] < '0' || s[i] > '9') {
			i++
		}
		unit, ok := spelledUnits[strings.ToLower(s[start:i])]
		if !ok {
			return 0, fmt.Errorf("invalid duration unit %q", s[start:i])
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}

// splitList splits comma-separated slice input, trimming blanks.
func splitList(s string) []string {
	out := make([]string, 0, strings.Count(s, ",")+1)
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
