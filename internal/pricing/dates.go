package pricing

import (
	"fmt"
	"strconv"
	"strings"
)

// MalformedDateError reports a date that is not a valid DD/MM/YYYY value.
type MalformedDateError struct {
	Input  string
	Reason string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date %q: %s", e.Input, e.Reason)
}

// NormalizeDate converts an AGMARKNET arrival date (DD/MM/YYYY) into the
// canonical YYYY-MM-DD form used for comparison and sorting.
//
// The transform is lexical, with range checks only:
//   - exactly two "/" separators are required;
//   - day and month are 1-2 digits (1-31, 1-12) and are zero-padded;
//   - year is exactly 4 digits.
//
// Because the output is fixed-width and zero-padded, string comparison on it
// matches chronological order.
func NormalizeDate(d string) (string, error) {
	s := strings.TrimSpace(d)
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return "", &MalformedDateError{Input: d, Reason: "expected DD/MM/YYYY"}
	}

	day, err := component(parts[0], 1, 2, 1, 31)
	if err != nil {
		return "", &MalformedDateError{Input: d, Reason: "day " + err.Error()}
	}
	month, err := component(parts[1], 1, 2, 1, 12)
	if err != nil {
		return "", &MalformedDateError{Input: d, Reason: "month " + err.Error()}
	}
	year, err := component(parts[2], 4, 4, 0, 9999)
	if err != nil {
		return "", &MalformedDateError{Input: d, Reason: "year " + err.Error()}
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// ValidateISODate checks that s is a fixed-width YYYY-MM-DD value, the form
// accepted for query bounds.
func ValidateISODate(s string) error {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return &MalformedDateError{Input: s, Reason: "expected YYYY-MM-DD"}
	}
	if _, err := component(parts[0], 4, 4, 0, 9999); err != nil {
		return &MalformedDateError{Input: s, Reason: "year " + err.Error()}
	}
	if _, err := component(parts[1], 2, 2, 1, 12); err != nil {
		return &MalformedDateError{Input: s, Reason: "month " + err.Error()}
	}
	if _, err := component(parts[2], 2, 2, 1, 31); err != nil {
		return &MalformedDateError{Input: s, Reason: "day " + err.Error()}
	}
	return nil
}

func component(s string, minLen, maxLen, lo, hi int) (int, error) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, fmt.Errorf("has %d digits", len(s))
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("is not numeric")
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range", n)
	}
	return n, nil
}
