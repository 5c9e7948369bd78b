// Package domain implements the Israeli address and postal-code matching engine.
//
// # Input Conventions
//
// Users type addresses in Hebrew, often loosely:
//
//	city:   "תל אביב", "תל-אביב יפו", "קיבוץ גבעת חיים"
//	street: "דיזנגוף", "שד' רוטשילד", "הרב קוק"
//	house:  "100", "6א", "12 ב"
//
// Rural settlements (kibbutzim, moshavim) frequently have no street grid, so
// street and house may both be blank. Only the city is required.
//
// # Normalization
//
// [Normalize] lower-cases, drops quote marks (", ', gershayim ״, geresh ׳),
// turns hyphens and the Hebrew maqaf ־ into spaces and collapses whitespace.
// Abbreviation marks such as the geresh in "שד'" therefore disappear rather
// than being expanded.
//
// # Similarity
//
// [Similarity] returns 1 for normalized-equal strings, 0.9 for containment and
// otherwise a word-level score where exact words earn 1 and spelling variants
// earn 0.8. Variants are defined by an ordered [VariantRule] table: a word pair
// is a variant when some rule rewrites both words to the same string.
//
//	strip-final-he:  "חיפה" ~ "חיפ"      (a final ה may be dropped)
//	strip-final-yod: "כרמלי" ~ "כרמל"    (a final י may be dropped)
//	yod-to-vav:      "דוד"  ~ "דיד"      (matres lectionis)
//	yin-to-nun:      "פינחס" ~ "פנחס"    (name variants)
//
// Each rule rewrites both words the same way, so "חיפה" and "חיפי" are not
// variants: one drops its ה, the other keeps its י.
//
// House numbers use [HouseNumberSimilarity]: Hebrew letters act as sub-unit
// suffixes ("6א"), so "6" vs "6א" scores 0.9, never 1.
//
// # Geocoding Precision
//
// The provider's location_type is classified by [ClassifyPrecision]:
//
//	ROOFTOP             -> PRECISE
//	RANGE_INTERPOLATED  -> ACCEPTABLE
//	anything else       -> INSUFFICIENT (rejected outright)
//
// # Postal Codes
//
// Israeli postal codes have 7 digits; legacy 5-digit codes are still common.
// [EvaluateZip] compares all 7 digits when both sides have them and the first
// 5 otherwise.
//
// # Errors
//
// Mismatches are verdicts, not errors. Only a failed call to the geocoding
// provider is an error, reported as [*ProviderError] so callers can tell
// "invalid" apart from "could not check".
package domain
