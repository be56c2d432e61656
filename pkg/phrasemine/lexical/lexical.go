// Package lexical scores substring overlap between a candidate phrase and a
// reference vocabulary, independent of any embedding model.
package lexical

import (
	"strings"
	"unicode/utf8"
)

// Matcher scores candidate phrases against a vocabulary.
// Vocabulary order is significant: each word is credited to the first entry
// it overlaps with, not the best one.
type Matcher struct {
	entries []string // lower-cased, original order
	exact   map[string]struct{}
}

// NewMatcher builds a matcher over the given vocabulary. Entries are
// lower-cased for comparison only; the caller's slice is not modified.
func NewMatcher(vocabulary []string) *Matcher {
	entries := make([]string, len(vocabulary))
	exact := make(map[string]struct{}, len(vocabulary))
	for i, v := range vocabulary {
		lv := strings.ToLower(v)
		entries[i] = lv
		exact[lv] = struct{}{}
	}
	return &Matcher{entries: entries, exact: exact}
}

// WordMatch records how a single candidate word matched.
type WordMatch struct {
	Word    string
	Entry   string // vocabulary entry matched, empty when none
	Matched bool
	Span    int     // length of the shorter side of the match
	Score   float64 // Span / length of the longer side
}

// Breakdown is the full derivation of a lexical score.
type Breakdown struct {
	Words           []WordMatch
	TotalScore      float64
	MatchLength     int
	PhraseLength    int
	MatchCount      int
	MatchScore      float64
	MatchPercentage float64
	ExactEntry      bool
	Score           float64
}

// Score returns match_score × match_percentage for the phrase.
func (m *Matcher) Score(phrase string) float64 {
	return m.Explain(phrase).Score
}

// Explain returns the score together with its per-word derivation.
func (m *Matcher) Explain(phrase string) Breakdown {
	var b Breakdown
	lower := strings.ToLower(phrase)
	if strings.TrimSpace(lower) == "" {
		return b
	}
	// An exact entry scores 1 regardless of word count. The per-word
	// formula below gives less for multi-word entries: "proof of stake"
	// scores about 0.286 against itself.
	if _, ok := m.exact[lower]; ok {
		b.ExactEntry = true
		b.MatchScore = 1
		b.MatchPercentage = 1
		b.Score = 1
		return b
	}

	for _, word := range strings.Split(lower, " ") {
		if word == "" {
			continue
		}
		wordLen := utf8.RuneCountInString(word)
		b.PhraseLength += wordLen

		wm := WordMatch{Word: word}
		for _, entry := range m.entries {
			entryLen := utf8.RuneCountInString(entry)
			longer := max(wordLen, entryLen)
			if strings.Contains(entry, word) {
				wm = WordMatch{Word: word, Entry: entry, Matched: true, Span: wordLen}
				wm.Score = float64(wordLen) / float64(longer)
				break
			}
			if strings.Contains(word, entry) {
				wm = WordMatch{Word: word, Entry: entry, Matched: true, Span: entryLen}
				if longer > 0 {
					wm.Score = float64(entryLen) / float64(longer)
				}
				break
			}
		}
		if wm.Matched {
			b.TotalScore += wm.Score
			b.MatchLength += wm.Span
			b.MatchCount++
		}
		b.Words = append(b.Words, wm)
	}

	if b.MatchCount != 0 {
		b.MatchScore = b.TotalScore / float64(b.MatchCount)
	}
	if b.PhraseLength != 0 {
		b.MatchPercentage = float64(b.MatchLength) / float64(b.PhraseLength)
	}
	b.Score = b.MatchScore * b.MatchPercentage
	return b
}

// Score is a convenience wrapper for one-off scoring.
func Score(vocabulary []string, phrase string) float64 {
	return NewMatcher(vocabulary).Score(phrase)
}
