// Package search normalizes job search keywords and ranks postings against
// them.
package search

import (
	"strings"
	"unicode"
)

const maxVariants = 10

type Query struct {
	Original   string
	Normalized string
	Variants   []string
	Location   string
}

func (q Query) Empty() bool {
	return q.Normalized == "" && q.Location == ""
}

func ParseQuery(keywords, location string) Query {
	q := Query{Original: keywords, Normalized: NormalizeQuery(keywords), Location: NormalizeQuery(location)}
	q.Variants = ExpandQuery(q.Normalized)
	return q
}

// NormalizeQuery lowercases input and collapses whitespace. Letters, digits
// and the symbols used in technology names (c++, c#, node.js) are kept.
func NormalizeQuery(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '+', r == '#', r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '/', r == ',':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ExpandQuery returns normalized followed by synonym variants, both for the
// whole query and for a leading phrase followed by more words.
func ExpandQuery(normalized string) []string {
	if normalized == "" {
		return []string{}
	}

	out := make([]string, 0, maxVariants)
	seen := make(map[string]struct{}, maxVariants)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(normalized)
	for _, syn := range GetSynonyms(normalized) {
		add(syn)
	}

	words := strings.Fields(normalized)
	tryPrefix := func(n int) {
		if len(words) <= n {
			return
		}
		rest := strings.Join(words[n:], " ")
		for _, syn := range GetSynonyms(strings.Join(words[:n], " ")) {
			add(syn + " " + rest)
		}
	}
	tryPrefix(1)
	tryPrefix(2)

	// Drop leading seniority so "senior backend" also matches "backend".
	if len(words) > 1 && isSeniority(words[0]) {
		rest := strings.Join(words[1:], " ")
		add(rest)
		for _, syn := range GetSynonyms(rest) {
			add(syn)
		}
	}

	if len(out) > maxVariants {
		out = out[:maxVariants]
	}
	return out
}

func isSeniority(w string) bool {
	switch w {
	case "junior", "jr", "mid", "senior", "sr", "lead", "principal", "staff":
		return true
	}
	return false
}
