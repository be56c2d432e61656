package vocab

import "strings"

// FilterPhrases drops insignificant extracted keyphrases before they are
// added to a vocabulary. Phrases longer than two words are split into their
// words (stray single letters left by text cleaning are discarded); shorter
// phrases are kept whole when longer than one character.
func FilterPhrases(phrases []string) []string {
	var out []string
	for _, p := range phrases {
		words := strings.Split(p, " ")
		if len(words) > 2 {
			for _, w := range words {
				if len(w) > 1 {
					out = append(out, w)
				}
			}
			continue
		}
		if len(p) > 1 {
			out = append(out, p)
		}
	}
	return out
}

// Builder accumulates vocabulary sources, deduplicating while keeping the
// order in which entries were first seen.
type Builder struct {
	seen    map[string]struct{}
	entries []string
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// Add appends terms verbatim (abbreviations, glossary terms).
func (b *Builder) Add(terms ...string) {
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := b.seen[t]; ok {
			continue
		}
		b.seen[t] = struct{}{}
		b.entries = append(b.entries, t)
	}
}

// AddExtracted appends keyphrases extracted from articles after FilterPhrases.
func (b *Builder) AddExtracted(phrases ...string) {
	b.Add(FilterPhrases(phrases)...)
}

// Len returns the number of distinct entries so far.
func (b *Builder) Len() int { return len(b.entries) }

// Build returns the vocabulary.
func (b *Builder) Build() (*Vocabulary, error) {
	return New(b.entries)
}
