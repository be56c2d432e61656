package candidates

import (
	"strings"
	"unicode"
)

// Token is a word from a message with its original casing.
type Token struct {
	Text  string
	Lower string
	// Break is set when punctuation closes a clause right after the word.
	Break bool
}

// Tokenizer splits messages into words, keeping original casing so that
// generated phrases remain substrings of the text they came from.
type Tokenizer struct{}

// NewTokenizer creates a tokenizer
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// Tokenize splits text on whitespace and trims surrounding punctuation.
// Inner hyphens and apostrophes are kept (`layer-2`, `we're`).
func (t *Tokenizer) Tokenize(text string) []Token {
	var tokens []Token
	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, isEdgePunct)
		brk := endsClause(raw)
		if word == "" {
			if brk && len(tokens) > 0 {
				tokens[len(tokens)-1].Break = true
			}
			continue
		}
		tokens = append(tokens, Token{
			Text:  word,
			Lower: strings.ToLower(word),
			Break: brk,
		})
	}
	return tokens
}

func isEdgePunct(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

func endsClause(raw string) bool {
	return strings.ContainsAny(raw[len(raw)-1:], ".,!?;:()[]\"")
}

// isNumericOnly returns true if the token contains only digits and hyphens.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return true
}
