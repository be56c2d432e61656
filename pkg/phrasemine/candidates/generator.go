// Package candidates produces candidate noun phrases for a message.
package candidates

import (
	"context"
	"strings"
	"unicode/utf8"
)

// DefaultMaxWords is the longest candidate kept, in words.
const DefaultMaxWords = 3

// Generator produces ordered, deduplicated candidate phrases for a message.
type Generator interface {
	Generate(ctx context.Context, message string) ([]string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, message string) ([]string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, message string) ([]string, error) {
	return f(ctx, message)
}

// StopChecker reports stopword membership for lower-cased tokens.
type StopChecker interface {
	IsStop(token string) bool
}

// RuleGenerator chunks a message at stopwords and clause punctuation.
// Each chunk is a candidate phrase, followed by the chunk's individual
// words; the result then goes through Select.
type RuleGenerator struct {
	tokenizer *Tokenizer
	parser    *PhraseParser
	stops     StopChecker
	maxWords  int
}

// Option configures a RuleGenerator.
type Option func(*RuleGenerator)

// WithPhrases protects known multi-word phrases from being split.
func WithPhrases(phrases []string) Option {
	return func(g *RuleGenerator) { g.parser = NewPhraseParser(phrases) }
}

// WithMaxWords sets the longest candidate kept.
func WithMaxWords(n int) Option {
	return func(g *RuleGenerator) {
		if n > 0 {
			g.maxWords = n
		}
	}
}

// NewRuleGenerator creates a generator using stops to find chunk boundaries.
func NewRuleGenerator(stops StopChecker, opts ...Option) *RuleGenerator {
	g := &RuleGenerator{
		tokenizer: NewTokenizer(),
		parser:    NewPhraseParser(nil),
		stops:     stops,
		maxWords:  DefaultMaxWords,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements Generator.
func (g *RuleGenerator) Generate(ctx context.Context, message string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	units := g.parser.Parse(g.tokenizer.Tokenize(message))

	var chunks [][]Unit
	var current []Unit
	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, current)
			current = nil
		}
	}
	for _, u := range units {
		if g.isFiller(u) {
			flush()
			continue
		}
		current = append(current, u)
		if u.Break {
			flush()
		}
	}
	flush()

	var phrases, singles []string
	for _, chunk := range chunks {
		phrases = append(phrases, g.windows(chunk)...)
		for _, u := range chunk {
			singles = append(singles, u.Text)
		}
	}
	return Select(append(phrases, singles...), g.maxWords), nil
}

// isFiller reports tokens that end a chunk and are never part of one:
// stopwords, stray single letters and bare numbers.
func (g *RuleGenerator) isFiller(u Unit) bool {
	if u.Phrase {
		return false
	}
	if utf8.RuneCountInString(u.Text) <= 1 || isNumericOnly(u.Text) {
		return true
	}
	if g.stops == nil {
		return false
	}
	if g.stops.IsStop(u.Lower) {
		return true
	}
	// Contractions count as their head word: "we're" → "we".
	if i := strings.IndexAny(u.Lower, "'’"); i > 0 {
		return g.stops.IsStop(u.Lower[:i])
	}
	return false
}

// windows returns the chunk as one phrase when short enough, otherwise each
// run of maxWords consecutive words.
func (g *RuleGenerator) windows(chunk []Unit) []string {
	words := 0
	for _, u := range chunk {
		words += len(strings.Fields(u.Text))
	}
	if words <= g.maxWords || len(chunk) == 1 {
		return []string{joinUnits(chunk)}
	}
	var out []string
	for i := 0; i+g.maxWords <= len(chunk); i++ {
		out = append(out, joinUnits(chunk[i:i+g.maxWords]))
	}
	return out
}

func joinUnits(units []Unit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = u.Text
	}
	return strings.Join(parts, " ")
}

// Select applies the candidate filter: phrases must be non-empty, have at
// most maxWords words, be longer than two characters and not be contained
// in a phrase selected earlier. Order is preserved.
func Select(phrases []string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	var out []string
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" || utf8.RuneCountInString(p) <= 2 {
			continue
		}
		if len(strings.Split(p, " ")) > maxWords {
			continue
		}
		if containedIn(p, out) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containedIn(p string, selected []string) bool {
	for _, s := range selected {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
