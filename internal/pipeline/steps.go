package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Step is one named text transform of the pipeline.
type Step struct {
	Name string
	Fn   func(string) string
}

// Lowercase lowercases letters and leaves digits, punctuation, symbols and emoji alone.
func Lowercase(text string) string {
	// a Caser keeps state, so one per call
	return cases.Lower(language.Und).String(text)
}

// isSpace is unicode.IsSpace plus the ASCII separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// NormalizeWhitespace collapses whitespace runs to one space and trims the ends.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.FieldsFunc(text, isSpace), " ")
}

func isMark(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ',':
		return true
	}
	return false
}

// NormalizePunctuation collapses runs of an identical mark from ".!?;," to one
// occurrence, then puts a space after every mark that is followed by a
// non-whitespace character.
func NormalizePunctuation(text string) string {
	collapsed := make([]rune, 0, len(text))
	prev := rune(-1)
	for _, r := range text {
		if isMark(r) && r == prev {
			continue
		}
		collapsed = append(collapsed, r)
		prev = r
	}

	var b strings.Builder
	b.Grow(len(text) + 8)
	for i, r := range collapsed {
		b.WriteRune(r)
		if isMark(r) && i+1 < len(collapsed) && !isSpace(collapsed[i+1]) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
