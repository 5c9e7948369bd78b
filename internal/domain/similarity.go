package domain

import (
	"strings"
	"unicode"
)

const (
	scoreExact    = 1.0
	scoreContains = 0.9
	creditVariant = 0.8

	houseScoreSuffixOnly = 0.9
)

// Scorer computes free-text similarity for city and street names.
// A Scorer is immutable and safe for concurrent use.
type Scorer struct {
	variants variantMatcher
}

// NewScorer creates a Scorer from a variant rule table. editTolerance > 0
// additionally accepts words within that Levenshtein distance.
func NewScorer(rules []VariantRule, editTolerance int) *Scorer {
	return &Scorer{
		variants: variantMatcher{
			rules:        append([]VariantRule(nil), rules...),
			maxEditDelta: editTolerance,
		},
	}
}

// NewExtendedScorer returns a Scorer using ExtendedVariantRules and a
// one-edit tolerance.
func NewExtendedScorer() *Scorer {
	return NewScorer(ExtendedVariantRules, 1)
}

var defaultScorer = NewScorer(DefaultVariantRules, 0)

// Similarity scores a and b with the default variant rules.
func Similarity(a, b string) float64 {
	return defaultScorer.Similarity(a, b)
}

// Similarity returns a score in [0,1]: 1 for normalized-equal strings, 0.9
// when one contains the other, otherwise the share of words matched exactly
// (credit 1) or as spelling variants (credit 0.8).
func (s *Scorer) Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return scoreExact
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return scoreContains
	}

	wordsA := strings.Fields(na)
	wordsB := strings.Fields(nb)
	total := max(len(wordsA), len(wordsB))
	if total == 0 {
		return 0
	}

	// Target words are not consumed, so a repeated source word may match the
	// same target word more than once.
	var credit float64
	for _, w := range wordsA {
		credit += s.wordCredit(w, wordsB)
	}
	return credit / float64(total)
}

// wordCredit is 1 if word appears in candidates, 0.8 if a spelling variant
// does and 0 otherwise.
func (s *Scorer) wordCredit(word string, candidates []string) float64 {
	for _, c := range candidates {
		if c == word {
			return scoreExact
		}
	}
	for _, c := range candidates {
		if _, ok := s.variants.match(word, c); ok {
			return creditVariant
		}
	}
	return 0
}

// HouseNumberSimilarity compares house numbers. Identical numbers score 1;
// numbers that only differ in their Hebrew sub-unit letter ("6" vs "6א")
// score 0.9; anything else scores 0.
func HouseNumberSimilarity(userHouse, officialHouse string) float64 {
	u := strings.TrimSpace(userHouse)
	o := strings.TrimSpace(officialHouse)
	if u == "" || o == "" {
		return 0
	}
	if u == o {
		return scoreExact
	}
	du, do := stripHebrewLetters(u), stripHebrewLetters(o)
	if du != "" && du == do {
		return houseScoreSuffixOnly
	}
	return 0
}

// stripHebrewLetters removes the letters א through ת and surrounding spaces.
func stripHebrewLetters(s string) string {
	s = strings.Map(func(r rune) rune {
		if r >= 'א' && r <= 'ת' {
			return -1
		}
		return r
	}, s)
	return strings.TrimFunc(s, unicode.IsSpace)
}
