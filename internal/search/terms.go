package search

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	tokenRe      = regexp.MustCompile(`[a-zA-Z]{3,}`)
)

// stopwords never become content search terms.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true,
	"dish": true, "dishes": true, "food": true, "for": true,
	"give": true, "i": true, "in": true, "is": true, "it": true,
	"me": true, "please": true, "recipe": true, "recipes": true,
	"recommend": true, "recommended": true, "suggest": true,
	"some": true, "the": true, "to": true, "want": true,
	"with": true, "without": true, "option": true, "options": true,
}

// filterKeywords are handled by the diet/calorie filters and must not leak
// into the free-text terms.
var filterKeywords = map[string]bool{
	"veg": true, "vegetarian": true, "non": true, "nonveg": true,
	"non-veg": true, "calorie": true, "calories": true, "kcal": true,
	"low": true, "high": true, "medium": true,
}

// normalizeTerm lowercases, trims and collapses internal whitespace.
func normalizeTerm(s string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// extractSearchTerms produces the ordered, de-duplicated free-text terms for
// a query. Structured include terms from the parser are preferred; the raw
// query tokens supplement them with stopwords, filter keywords and excluded
// terms removed.
func extractSearchTerms(query string, parsed ParsedQuery) []string {
	var terms []string
	for _, t := range parsed.IncludeTerms {
		if nt := normalizeTerm(t); nt != "" {
			terms = append(terms, nt)
		}
	}

	excluded := make(map[string]bool, len(parsed.ExcludeTerms))
	for _, t := range parsed.ExcludeTerms {
		if nt := normalizeTerm(t); nt != "" {
			excluded[nt] = true
		}
	}

	for _, tok := range tokenRe.FindAllString(strings.ToLower(query), -1) {
		if stopwords[tok] || excluded[tok] || filterKeywords[tok] {
			continue
		}
		terms = append(terms, tok)
	}

	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
