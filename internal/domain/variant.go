package domain

import (
	"regexp"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// VariantRule rewrites a word into a canonical spelling. Two words are
// variants under a rule when the rule rewrites both to the same string.
type VariantRule struct {
	Name    string
	Rewrite func(word string) string
}

// Matches reports whether a and b become equal once the rule is applied to both.
func (r VariantRule) Matches(a, b string) bool {
	return r.Rewrite(a) == r.Rewrite(b)
}

// replaceRule builds a VariantRule from a regular expression replacement.
func replaceRule(name, pattern, replacement string) VariantRule {
	re := regexp.MustCompile(pattern)
	return VariantRule{
		Name: name,
		Rewrite: func(word string) string {
			return re.ReplaceAllString(word, replacement)
		},
	}
}

// DefaultVariantRules lists the Hebrew spelling variations tolerated when
// comparing street and city words. Order matters only for reporting; any
// matching rule makes the words variants.
var DefaultVariantRules = []VariantRule{
	replaceRule("strip-final-he", "ה$", ""),
	replaceRule("strip-final-yod", "י$", ""),
	replaceRule("yod-to-vav", "י", "ו"),
	replaceRule("yin-to-nun", "ינ", "נ"),
}

// ExtendedVariantRules adds looser rewrites on top of DefaultVariantRules:
// יצחק/יצהק, שלום/שלם and doubled letters (חייםם, רחוובות).
var ExtendedVariantRules = append(append([]VariantRule{}, DefaultVariantRules...),
	replaceRule("het-qof-to-he-qof", "חק", "הק"),
	replaceRule("final-vav-mem", "ום$", "ם"),
	VariantRule{Name: "collapse-doubles", Rewrite: collapseDoubles},
)

// collapseDoubles replaces every run of a repeated rune with a single rune.
func collapseDoubles(word string) string {
	out := make([]rune, 0, len(word))
	for _, r := range word {
		if n := len(out); n > 0 && out[n-1] == r {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// minEditTokenLength keeps the edit tolerance away from very short words,
// where a single edit turns one word into an unrelated one (בן/בת).
const minEditTokenLength = 3

// variantMatcher decides whether two distinct words are spelling variants.
type variantMatcher struct {
	rules        []VariantRule
	maxEditDelta int
}

// match returns the name of the first rule under which a and b are variants.
func (m variantMatcher) match(a, b string) (string, bool) {
	for _, rule := range m.rules {
		if rule.Matches(a, b) {
			return rule.Name, true
		}
	}
	if m.maxEditDelta > 0 &&
		utf8.RuneCountInString(a) >= minEditTokenLength &&
		utf8.RuneCountInString(b) >= minEditTokenLength &&
		levenshtein.ComputeDistance(a, b) <= m.maxEditDelta {
		return "edit-distance", true
	}
	return "", false
}
