// Package clean normalizes raw chat messages before candidate generation.
// The original message is never modified; validation always runs against
// the raw text.
package clean

import (
	"io"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

var (
	emojiPattern = regexp.MustCompile(`[` +
		`\x{1F600}-\x{1F64F}` + // emoticons
		`\x{1F300}-\x{1F5FF}` + // symbols & pictographs
		`\x{1F680}-\x{1F6FF}` + // transport & map
		`\x{1F1E0}-\x{1F1FF}` + // flags
		`\x{2500}-\x{2BEF}` +
		`\x{2702}-\x{27B0}` +
		`\x{24C2}-\x{1F251}` +
		`\x{1F926}-\x{1F937}` +
		`\x{10000}-\x{10FFFF}` +
		`\x{2640}-\x{2642}` +
		`\x{2600}-\x{2B55}` +
		`\x{200D}\x{23CF}\x{23E9}\x{231A}\x{FE0F}\x{3030}` +
		`]+`)
	linkPattern   = regexp.MustCompile(`(?i)(https?://)?[\da-z.-]+\.[a-z.]{2,6}[/\w.-]*`)
	numberPattern = regexp.MustCompile(`(^|\s)\d+(\s|$)`)
)

// Message runs the chat-message pipeline: emojis, HTML tags, stand-alone
// numbers and links are removed and whitespace is collapsed.
func Message(text string) string {
	text = StripEmojis(text)
	text = StripTags(text)
	text = StripNumbers(text)
	text = StripLinks(text)
	return CollapseSpaces(text)
}

// StripEmojis removes emojis and other pictographic characters.
func StripEmojis(text string) string {
	return emojiPattern.ReplaceAllString(text, "")
}

// StripTags replaces every HTML tag with a space, keeping text content.
func StripTags(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String()
			}
			return text
		case html.TextToken:
			b.Write(z.Text())
		default:
			b.WriteByte(' ')
		}
	}
}

// StripNumbers removes numbers that stand alone (`3.33 blockchain` loses
// 3.33) while keeping digits attached to words (`web3`). Thousands and
// decimal separators inside numbers are removed first.
func StripNumbers(text string) string {
	text = dropNumericSeparators(text)
	// Adjacent numbers share a separator, so apply until stable.
	for {
		next := numberPattern.ReplaceAllString(text, " ")
		if next == text {
			return next
		}
		text = next
	}
}

func dropNumericSeparators(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prevDigit := false
	for _, r := range text {
		if (r == ',' || r == '.') && prevDigit {
			continue
		}
		prevDigit = unicode.IsDigit(r)
		b.WriteRune(r)
	}
	return b.String()
}

// StripLinks removes URLs and bare domains.
func StripLinks(text string) string {
	return linkPattern.ReplaceAllString(text, "")
}

// CollapseSpaces trims and reduces whitespace runs to one space.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
