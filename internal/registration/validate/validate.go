// Package validate holds the pure input predicates used by the registration
// flow. Validators take raw text and report pass/fail; they never normalize
// beyond what each check states and they keep no state.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRE = regexp.MustCompile(`^\+?1?\d{10,14}$`)
)

// Name passes when s has at least two characters. No trimming: a two-space
// name passes.
func Name(s string) bool {
	return utf8.RuneCountInString(s) >= 2
}

// Email passes for local@domain.tld with a tld of two or more letters. No
// length cap, no DNS check.
func Email(s string) bool {
	return emailRE.MatchString(s)
}

// Phone passes for an optional +, an optional literal 1, then 10-14 digits.
func Phone(s string) bool {
	return phoneRE.MatchString(s)
}

// Date passes when s is a real calendar date in DD-MM-YYYY. Day bounds
// follow the month and year (leap years included); the year is unrestricted
// but must have four digits.
func Date(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("02-01-2006", s)
	return err == nil
}

// Enum passes when s equals one of choices. With caseSensitive false the
// comparison folds case; the matched canonical choice is returned so
// callers can commit the canonical spelling.
func Enum(s string, choices []string, caseSensitive bool) (string, bool) {
	for _, c := range choices {
		if s == c || (!caseSensitive && strings.EqualFold(s, c)) {
			return c, true
		}
	}
	return "", false
}

// Count passes when s parses as an integer within [lo, hi].
func Count(s string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	if n < lo || n > hi {
		return 0, false
	}
	return n, true
}

// YesNo normalizes a case-insensitive yes/y or no/n answer. ok is false for
// anything else.
func YesNo(s string) (yes bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	default:
		return false, false
	}
}
