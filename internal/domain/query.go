package domain

import "strings"

// DefaultCountry is appended to every geocoding query.
const DefaultCountry = "ישראל"

// BuildQuery renders a query as "<street> <house>, <city>, <country>",
// leaving out whatever the user did not supply.
func BuildQuery(q AddressQuery, country string) string {
	if country == "" {
		country = DefaultCountry
	}
	parts := make([]string, 0, 3)
	if line := strings.TrimSpace(strings.TrimSpace(q.Street) + " " + strings.TrimSpace(q.House)); line != "" {
		parts = append(parts, line)
	}
	if city := strings.TrimSpace(q.City); city != "" {
		parts = append(parts, city)
	}
	parts = append(parts, country)
	return strings.Join(parts, ", ")
}

// WithPostalCode appends a postal code to a geocoding query.
func WithPostalCode(query, zip string) string {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return query
	}
	return query + ", " + zip
}
