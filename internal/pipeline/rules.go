package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// ContractionRule rewrites every non-overlapping match of Pattern to Replacement.
type ContractionRule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// spaceClass is the body of a character class matching every rune isSpace accepts.
// RE2's \s alone is ASCII only.
const spaceClass = `\s\v\x{1c}-\x{1f}\x{85}\p{Z}`

// NewRule compiles pattern with \s widened to Unicode whitespace.
func NewRule(pattern, replacement string) (ContractionRule, error) {
	re, err := regexp.Compile(widenSpace(pattern))
	if err != nil {
		return ContractionRule{}, fmt.Errorf("compile rule %q: %w", pattern, err)
	}
	return ContractionRule{Pattern: re, Replacement: replacement}, nil
}

// widenSpace rewrites every unescaped \s, inside or outside a character class.
func widenSpace(pattern string) string {
	if !strings.Contains(pattern, `\s`) {
		return pattern
	}
	var b strings.Builder
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			if pattern[i+1] == 's' {
				if inClass {
					b.WriteString(spaceClass)
				} else {
					b.WriteString("[" + spaceClass + "]")
				}
			} else {
				b.WriteByte(c)
				b.WriteByte(pattern[i+1])
			}
			i++
			continue
		case c == '[' && !inClass:
			inClass = true
		case c == ']' && inClass:
			inClass = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

func MustRule(pattern, replacement string) ContractionRule {
	r, err := NewRule(pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

// Apply replaces matches literally; "$" in Replacement is not expanded.
func (r ContractionRule) Apply(text string) string {
	return r.Pattern.ReplaceAllLiteralString(text, r.Replacement)
}

// informal spellings observed in the emotion dataset, in application order.
// Patterns are case-sensitive and word-boundary anchored.
var informalRuleSpecs = []struct {
	pattern     string
	replacement string
}{
	{`\b(i\s?m|im|Im|I\s?m)\b`, "I'm"},
	{`\b(dont|don\s?t|Dont|Don\s?t)\b`, "don't"},
	{`\b(didnt|did\s?nt|Didnt|Did\s?nt)\b`, "didn't"},
	{`\b(ive|i\s?ve|Ive|I\s?ve)\b`, "I've"},
	{`\b(youve|you\s?ve|Youve|Y\s?ve)\b`, "You've"},
	{`\b(wasnt|was\s?nt|Wasnt|Was\s?nt)\b`, "wasn't"},
	{`\b(doesnt|does\s?nt|Doesnt|Does\s?nt)\b`, "doesn't"},
	{`\b(shouldnt|should\s?nt|Shouldnt|Should\s?nt)\b`, "shouldn't"},
	{`\b(cant|can\s?t|Cant|Can\s?t)\b`, "can't"},
	{`\b(wont|won\s?t|Wont|Won\s?t)\b`, "won't"},
	{`\b(couldnt|could\s?nt|Couldnt|Could\s?nt)\b`, "couldn't"},
	{`\b(wouldnt|would\s?nt|Wouldnt|Would\s?nt)\b`, "wouldn't"},
}

var defaultInformalRules = func() []ContractionRule {
	rules := make([]ContractionRule, 0, len(informalRuleSpecs))
	for _, s := range informalRuleSpecs {
		rules = append(rules, MustRule(s.pattern, s.replacement))
	}
	return rules
}()

// DefaultInformalRules returns a copy of the built-in informal contraction rules.
func DefaultInformalRules() []ContractionRule {
	return append([]ContractionRule(nil), defaultInformalRules...)
}
