package domain

import "strings"

// quoteAndDashReplacer drops quote marks and turns hyphens into spaces.
// ״ is the Hebrew gershayim, ׳ the geresh and ־ the maqaf. Typographic
// quotes and the en dash come from keyboards with smart punctuation.
var quoteAndDashReplacer = strings.NewReplacer(
	`"`, "",
	`'`, "",
	"״", "",
	"׳", "",
	"\u2018", "",
	"\u2019", "",
	"\u201C", "",
	"\u201D", "",
	"-", " ",
	"־", " ",
	"\u2013", " ",
)

// Normalize canonicalizes free text for comparison: lower case, no quote
// marks, hyphens as spaces, single spaces, trimmed.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(text)
	s = quoteAndDashReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
