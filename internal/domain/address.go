package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCityRequired is returned by AddressQuery.Validate when the city is blank.
var ErrCityRequired = errors.New("city is required")

// AddressQuery is the address as typed by the user. Street and House may be
// empty for settlements without a street grid.
type AddressQuery struct {
	City   string `json:"city"`
	Street string `json:"street,omitempty"`
	House  string `json:"house,omitempty"`
}

// Validate checks the only hard requirement on a query: a non-blank city.
func (q AddressQuery) Validate() error {
	if strings.TrimSpace(q.City) == "" {
		return ErrCityRequired
	}
	return nil
}

// Components holds the typed sub-fields of a geocoding result.
// An empty string means the provider did not return that component.
type Components struct {
	City        string `json:"city,omitempty"`
	Street      string `json:"street,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

// GeocodeResult is a single resolved address from the geocoding provider.
// Found is false when the provider returned no usable result.
type GeocodeResult struct {
	Found            bool         `json:"found"`
	FormattedAddress string       `json:"formatted_address,omitempty"`
	PrecisionTag     PrecisionTag `json:"precision_tag,omitempty"`
	Components       Components   `json:"components"`
	Lat              float64      `json:"lat,omitempty"`
	Lon              float64      `json:"lon,omitempty"`
}

// HasCoordinates reports whether the result carries a usable location.
func (r GeocodeResult) HasCoordinates() bool {
	return r.Lat != 0 || r.Lon != 0
}

// Reason is the machine-readable cause of a negative verdict.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonNotFound              Reason = "NOT_FOUND"
	ReasonNoPostalCode          Reason = "NO_POSTAL_CODE"
	ReasonInsufficientPrecision Reason = "INSUFFICIENT_PRECISION"
	ReasonCityMismatch          Reason = "CITY_MISMATCH"
	ReasonStreetMismatch        Reason = "STREET_MISMATCH"
	ReasonHouseMismatch         Reason = "HOUSE_MISMATCH"
	ReasonZipMismatch           Reason = "ZIP_MISMATCH"
	ReasonZipTooShort           Reason = "ZIP_TOO_SHORT"
	ReasonProviderError         Reason = "PROVIDER_ERROR"
)

// HouseDetail refines a HOUSE_MISMATCH verdict.
type HouseDetail string

const (
	HouseDetailNone HouseDetail = ""
	// HouseDetailWeakCityStreet: the house number could only have been waived
	// (or, for interpolated geocodes, even considered) with stronger city and
	// street agreement.
	HouseDetailWeakCityStreet HouseDetail = "WEAK_CITY_STREET"
	// HouseDetailNumberDiffers: the provider returned a house number and it
	// disagrees with the user's.
	HouseDetailNumberDiffers HouseDetail = "HOUSE_NUMBER_DIFFERS"
	// HouseDetailNotConfirmed: strict mode only; an interpolated geocode did
	// not return the house number the user supplied.
	HouseDetailNotConfirmed HouseDetail = "HOUSE_NOT_CONFIRMED"
)

// Scores are the per-field similarities behind an address verdict.
type Scores struct {
	City   float64 `json:"city"`
	Street float64 `json:"street"`
	House  float64 `json:"house"`
}

// MatchVerdict is the outcome of evaluating an address against a geocode.
type MatchVerdict struct {
	Valid         bool          `json:"valid"`
	Reason        Reason        `json:"reason,omitempty"`
	HouseDetail   HouseDetail   `json:"house_detail,omitempty"`
	Scores        Scores        `json:"scores"`
	PrecisionTier PrecisionTier `json:"precision_tier,omitempty"`
	CityMatches   bool          `json:"city_matches"`
	StreetMatches bool          `json:"street_matches"`
	HouseMatches  bool          `json:"house_matches"`
}

// ZipVerdict is the outcome of comparing a user postal code with the official one.
type ZipVerdict struct {
	Valid       bool   `json:"valid"`
	OfficialZip string `json:"official_zip,omitempty"`
	UserZip     string `json:"user_zip"`
	Reason      Reason `json:"reason,omitempty"`
}

// ProviderError reports that the geocoding provider could not be queried or
// its response could not be understood. It means "unable to verify", never
// "invalid".
type ProviderError struct {
	Query string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("geocode %q: %v", e.Query, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
