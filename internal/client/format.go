package client

import (
	"regexp"
	"strings"
)

var (
	nonDigits  = regexp.MustCompile(`\D`)
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// FormatPhone reformats typed input as (XXX) XXX-XXXX, progressively while digits are entered.
// Digits past the tenth are dropped.
func FormatPhone(input string) string {
	d := nonDigits.ReplaceAllString(input, "")
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return "(" + d[:3] + ") " + d[3:]
	}
	if len(d) > 10 {
		d = d[:10]
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

// LooksLikeEmail is the advisory check the form uses to colour the email field. It never blocks a submit.
func LooksLikeEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || emailShape.MatchString(s)
}
