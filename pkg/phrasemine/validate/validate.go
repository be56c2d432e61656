// Package validate re-checks accepted keyphrases against the untouched
// source message. Candidates are produced from cleaned text, so a phrase
// that lost or gained words during cleaning no longer appears verbatim and
// is dropped here.
package validate

import "strings"

// StopChecker reports stopword membership.
type StopChecker interface {
	IsStop(token string) bool
}

// Validator filters accepted phrases.
type Validator struct {
	stops StopChecker
}

// New creates a validator. A nil checker disables the stopword test.
func New(stops StopChecker) *Validator {
	return &Validator{stops: stops}
}

// Keep reports whether a phrase survives validation against original.
func (v *Validator) Keep(phrase, original string) bool {
	if !strings.Contains(original, phrase) {
		return false
	}
	if v.stops != nil && v.stops.IsStop(phrase) {
		return false
	}
	return true
}

// Filter returns the phrases that are literal substrings of original and
// not stopwords, preserving order.
func (v *Validator) Filter(phrases []string, original string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if v.Keep(p, original) {
			out = append(out, p)
		}
	}
	return out
}
