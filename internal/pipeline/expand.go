package pipeline

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Expander expands apostrophized contractions into their full forms.
type Expander interface {
	Expand(text string) string
}

// ExpanderFunc adapts a plain function to Expander.
type ExpanderFunc func(string) string

func (f ExpanderFunc) Expand(text string) string { return f(text) }

// LocalExpander expands contractions from an in-process table.
type LocalExpander struct {
	table map[string]string
	re    *regexp.Regexp
}

// NewLocalExpander builds an expander over the built-in English contraction table.
func NewLocalExpander() *LocalExpander {
	return NewTableExpander(englishContractions)
}

// NewTableExpander builds an expander over table. Keys are lowercase and use a
// straight apostrophe; a typographic apostrophe in the input matches as well.
func NewTableExpander(table map[string]string) *LocalExpander {
	keys := make([]string, 0, len(table))
	own := make(map[string]string, len(table))
	for k, v := range table {
		k = strings.ToLower(k)
		keys = append(keys, k)
		own[k] = v
	}
	// longest first so "wouldn't've" wins over "wouldn't"
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	alts := make([]string, len(keys))
	for i, k := range keys {
		alts[i] = edge(k, true) + strings.ReplaceAll(regexp.QuoteMeta(k), "'", "['’]") + edge(k, false)
	}
	pattern := `(?i)(?:` + strings.Join(alts, "|") + `)`
	return &LocalExpander{table: own, re: regexp.MustCompile(pattern)}
}

// edge anchors one end of key. Keys that start or end with an apostrophe
// ("'em", "goin'") need a non-boundary there, since the apostrophe is not a word rune.
func edge(key string, start bool) string {
	r, _ := utf8.DecodeLastRuneInString(key)
	if start {
		r, _ = utf8.DecodeRuneInString(key)
	}
	if r == '\'' {
		return `\B`
	}
	return `\b`
}

func (e *LocalExpander) Expand(text string) string {
	if len(e.table) == 0 {
		return text
	}
	return e.re.ReplaceAllStringFunc(text, func(m string) string {
		key := strings.ToLower(strings.ReplaceAll(m, "’", "'"))
		full, ok := e.table[key]
		if !ok {
			return m
		}
		return matchCase(m, full)
	})
}

// matchCase gives full the casing style of the matched contraction.
func matchCase(match, full string) string {
	letters, upper := 0, 0
	for _, r := range match {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters > 1 && upper == letters {
		return strings.ToUpper(full)
	}
	first, _ := utf8.DecodeRuneInString(match)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(full)
		return string(unicode.ToUpper(r)) + full[size:]
	}
	return full
}

var englishContractions = map[string]string{
	"ain't":        "are not",
	"aren't":       "are not",
	"can't":        "cannot",
	"can't've":     "cannot have",
	"could've":     "could have",
	"couldn't":     "could not",
	"couldn't've":  "could not have",
	"didn't":       "did not",
	"doesn't":      "does not",
	"don't":        "do not",
	"hadn't":       "had not",
	"hadn't've":    "had not have",
	"hasn't":       "has not",
	"haven't":      "have not",
	"he'd":         "he would",
	"he'd've":      "he would have",
	"he'll":        "he will",
	"he'll've":     "he will have",
	"he's":         "he is",
	"here's":       "here is",
	"how'd":        "how did",
	"how'd'y":      "how do you",
	"how'll":       "how will",
	"how's":        "how is",
	"i'd":          "I would",
	"i'd've":       "I would have",
	"i'll":         "I will",
	"i'll've":      "I will have",
	"i'm":          "I am",
	"i've":         "I have",
	"isn't":        "is not",
	"it'd":         "it would",
	"it'd've":      "it would have",
	"it'll":        "it will",
	"it'll've":     "it will have",
	"it's":         "it is",
	"let's":        "let us",
	"ma'am":        "madam",
	"mayn't":       "may not",
	"might've":     "might have",
	"mightn't":     "might not",
	"mightn't've":  "might not have",
	"must've":      "must have",
	"mustn't":      "must not",
	"mustn't've":   "must not have",
	"needn't":      "need not",
	"needn't've":   "need not have",
	"o'clock":      "of the clock",
	"oughtn't":     "ought not",
	"oughtn't've":  "ought not have",
	"shan't":       "shall not",
	"sha'n't":      "shall not",
	"shan't've":    "shall not have",
	"she'd":        "she would",
	"she'd've":     "she would have",
	"she'll":       "she will",
	"she'll've":    "she will have",
	"she's":        "she is",
	"should've":    "should have",
	"shouldn't":    "should not",
	"shouldn't've": "should not have",
	"so've":        "so have",
	"that'd":       "that would",
	"that'd've":    "that would have",
	"that'll":      "that will",
	"that's":       "that is",
	"there'd":      "there would",
	"there'd've":   "there would have",
	"there'll":     "there will",
	"there're":     "there are",
	"there's":      "there is",
	"these're":     "these are",
	"they'd":       "they would",
	"they'd've":    "they would have",
	"they'll":      "they will",
	"they'll've":   "they will have",
	"they're":      "they are",
	"they've":      "they have",
	"this's":       "this is",
	"those're":     "those are",
	"to've":        "to have",
	"wasn't":       "was not",
	"we'd":         "we would",
	"we'd've":      "we would have",
	"we'll":        "we will",
	"we'll've":     "we will have",
	"we're":        "we are",
	"we've":        "we have",
	"weren't":      "were not",
	"what'd":       "what did",
	"what'll":      "what will",
	"what'll've":   "what will have",
	"what're":      "what are",
	"what's":       "what is",
	"what've":      "what have",
	"when's":       "when is",
	"when've":      "when have",
	"where'd":      "where did",
	"where'll":     "where will",
	"where're":     "where are",
	"where's":      "where is",
	"where've":     "where have",
	"which's":      "which is",
	"who'd":        "who would",
	"who'd've":     "who would have",
	"who'll":       "who will",
	"who'll've":    "who will have",
	"who're":       "who are",
	"who's":        "who is",
	"who've":       "who have",
	"why'd":        "why did",
	"why're":       "why are",
	"why's":        "why is",
	"why've":       "why have",
	"will've":      "will have",
	"won't":        "will not",
	"won't've":     "will not have",
	"would've":     "would have",
	"wouldn't":     "would not",
	"wouldn't've":  "would not have",
	"y'all":        "you all",
	"y'all'd":      "you all would",
	"y'all'd've":   "you all would have",
	"y'all're":     "you all are",
	"y'all've":     "you all have",
	"you'd":        "you would",
	"you'd've":     "you would have",
	"you'll":       "you will",
	"you'll've":    "you will have",
	"you're":       "you are",
	"you've":       "you have",
	"ne'er":        "never",
	"e'er":         "ever",
	"gov't":        "government",
	"g'day":        "good day",
	"d'you":        "do you",
	"c'mon":        "come on",
	"daren't":      "dare not",
	"here're":      "here are",
	"how're":       "how are",

	// clipped forms
	"'em":       "them",
	"'cause":    "because",
	"'bout":     "about",
	"'til":      "until",
	"'tis":      "it is",
	"'twas":     "it was",
	"y'know":    "you know",
	"doin'":     "doing",
	"goin'":     "going",
	"nothin'":   "nothing",
	"somethin'": "something",
	"havin'":    "having",
	"lovin'":    "loving",
	"feelin'":   "feeling",
	"thinkin'":  "thinking",
	"talkin'":   "talking",
	"comin'":    "coming",
	"thats":     "that is",
	"whats":     "what is",

	// slang
	"gonna":   "going to",
	"wanna":   "want to",
	"gotta":   "got to",
	"gimme":   "give me",
	"lemme":   "let me",
	"kinda":   "kind of",
	"sorta":   "sort of",
	"outta":   "out of",
	"lotta":   "lot of",
	"dunno":   "do not know",
	"hafta":   "have to",
	"oughta":  "ought to",
	"whatcha": "what are you",
	"gotcha":  "got you",
	"innit":   "is it not",
	"wassup":  "what is up",
	"i'mma":   "I am going to",
	"ima":     "I am going to",
}
