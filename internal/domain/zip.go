package domain

import "strings"

const (
	fullZipDigits   = 7
	legacyZipDigits = 5
)

// EvaluateZip compares the user's postal code with the one returned by the
// provider. Full 7-digit codes must match exactly; when either side has fewer
// than 7 digits only the first 5 are compared.
func EvaluateZip(userZip string, result GeocodeResult) ZipVerdict {
	if !result.Found {
		return ZipVerdict{UserZip: userZip, Reason: ReasonNotFound}
	}
	official := result.Components.PostalCode
	if strings.TrimSpace(official) == "" {
		return ZipVerdict{UserZip: userZip, Reason: ReasonNoPostalCode}
	}

	v := ZipVerdict{UserZip: userZip, OfficialZip: official}

	u, o := digitsOnly(userZip), digitsOnly(official)
	switch {
	case len(u) == fullZipDigits && len(o) == fullZipDigits:
		v.Valid = u == o
	case len(u) >= legacyZipDigits && len(o) >= legacyZipDigits:
		v.Valid = u[:legacyZipDigits] == o[:legacyZipDigits]
	default:
		v.Reason = ReasonZipTooShort
		return v
	}

	if !v.Valid {
		v.Reason = ReasonZipMismatch
	}
	return v
}

// digitsOnly drops every character that is not an ASCII digit.
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
