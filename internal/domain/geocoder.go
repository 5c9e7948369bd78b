package domain

import "context"

// Geocoder resolves addresses with an external geocoding provider.
// A query the provider cannot resolve yields a result with Found == false and
// a nil error; errors are reserved for transport and protocol failures.
type Geocoder interface {
	// Geocode resolves a free-text address.
	Geocode(ctx context.Context, address string) (GeocodeResult, error)

	// ReverseGeocode resolves coordinates, preferring a result that carries a
	// postal code.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodeResult, error)
}
