// Package keywords extracts the technical vocabulary of résumés and job descriptions.
package keywords

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9+.#-]*`)

// trailingPunct is stripped from the end of every token.
const trailingPunct = ".,;:!?()[]{}\"'`“”’‘"

// verdict is the outcome of a single classification rule.
type verdict int

const (
	undecided verdict = iota
	keep
	drop
)

type rule struct {
	name  string
	check func(tok string) verdict
}

// rules are evaluated in order; the first decisive verdict wins.
var rules = []rule{
	{"allow-list", func(tok string) verdict { return keepIf(contains(techTerms, tok)) }},
	{"numeric", func(tok string) verdict { return dropIf(isNumeric(tok)) }},
	{"digit-allow-list", func(tok string) verdict { return keepIf(contains(digitTerms, tok)) }},
	{"digit", func(tok string) verdict { return dropIf(strings.ContainsAny(tok, "0123456789")) }},
	{"acronym", func(tok string) verdict { return keepIf(contains(acronyms, tok)) }},
	{"hyphen", func(tok string) verdict { return dropIf(strings.Contains(tok, "-")) }},
	{"special-spelling", func(tok string) verdict { return keepIf(contains(specialSpellings, tok)) }},
}

// Classify returns the set of technical keywords found in text.
func Classify(text string) Set {
	out := make(Set)
	if text == "" {
		return out
	}
	for _, raw := range tokenPattern.FindAllString(text, -1) {
		tok := Normalize(raw)
		if len(tok) <= 1 || IsStopWord(tok) {
			continue
		}
		if IsTechTerm(tok) {
			out[tok] = struct{}{}
		}
	}
	return out
}

// Normalize trims trailing punctuation, lower-cases and canonicalizes a raw token.
func Normalize(raw string) string {
	tok := strings.ToLower(strings.TrimRight(raw, trailingPunct))
	if canon, ok := canonicalForms[tok]; ok {
		return canon
	}
	return tok
}

// IsTechTerm reports whether a normalized token is technical.
func IsTechTerm(tok string) bool {
	for _, r := range rules {
		switch r.check(tok) {
		case keep:
			return true
		case drop:
			return false
		}
	}
	return false
}

func keepIf(b bool) verdict {
	if b {
		return keep
	}
	return undecided
}

func dropIf(b bool) verdict {
	if b {
		return drop
	}
	return undecided
}

func contains(table map[string]struct{}, tok string) bool {
	_, ok := table[tok]
	return ok
}

func isNumeric(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return tok != ""
}

// Set is an unordered collection of normalized keywords.
type Set map[string]struct{}

// NewSet builds a set from the given keywords.
func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Len returns the number of keywords.
func (s Set) Len() int { return len(s) }

// Contains reports whether kw is in the set.
func (s Set) Contains(kw string) bool {
	_, ok := s[kw]
	return ok
}

// Intersect returns the keywords present in both sets.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for k := range s {
		if other.Contains(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Difference returns the keywords in s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for k := range s {
		if !other.Contains(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the keywords in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
