package candidates

import "strings"

// PhraseParser joins known multi-word phrases (usually the multi-word
// vocabulary entries) into single units so that chunking at stopwords does
// not split them, e.g. "proof of stake".
type PhraseParser struct {
	dict   map[string]struct{}
	maxLen int
}

// Unit is one parsed element: a single token or a recognised phrase.
type Unit struct {
	Text   string
	Lower  string
	Phrase bool
	Break  bool
}

// NewPhraseParser creates a parser over the given phrases. Single-word
// entries are ignored.
func NewPhraseParser(phrases []string) *PhraseParser {
	dict := make(map[string]struct{})
	maxLen := 1
	for _, p := range phrases {
		key := strings.ToLower(strings.Join(strings.Fields(p), " "))
		n := phraseLen(key)
		if n < 2 {
			continue
		}
		dict[key] = struct{}{}
		if n > maxLen {
			maxLen = n
		}
	}
	return &PhraseParser{dict: dict, maxLen: maxLen}
}

// Parse applies greedy longest-match. A phrase never spans a clause break.
func (p *PhraseParser) Parse(tokens []Token) []Unit {
	var result []Unit
	i := 0

	for i < len(tokens) {
		matchLen := 0

		// Try matching from longest phrase to shortest (bigram)
		maxPhrase := p.maxLen
		if remaining := len(tokens) - i; maxPhrase > remaining {
			maxPhrase = remaining
		}
		for n := maxPhrase; n >= 2; n-- {
			if spansBreak(tokens[i : i+n]) {
				continue
			}
			if _, ok := p.dict[joinLower(tokens[i:i+n])]; ok {
				matchLen = n
				break
			}
		}

		if matchLen > 0 {
			span := tokens[i : i+matchLen]
			result = append(result, Unit{
				Text:   joinText(span),
				Lower:  joinLower(span),
				Phrase: true,
				Break:  span[len(span)-1].Break,
			})
			i += matchLen
			continue
		}

		result = append(result, Unit{Text: tokens[i].Text, Lower: tokens[i].Lower, Break: tokens[i].Break})
		i++
	}

	return result
}

func spansBreak(tokens []Token) bool {
	for _, t := range tokens[:len(tokens)-1] {
		if t.Break {
			return true
		}
	}
	return false
}

func joinText(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

func joinLower(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Lower
	}
	return strings.Join(parts, " ")
}

func phraseLen(phrase string) int {
	if phrase == "" {
		return 1
	}
	return len(strings.Fields(phrase))
}
