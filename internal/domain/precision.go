package domain

// PrecisionTag is the provider's location_type for a geocode.
type PrecisionTag string

const (
	PrecisionRooftop           PrecisionTag = "ROOFTOP"
	PrecisionRangeInterpolated PrecisionTag = "RANGE_INTERPOLATED"
	PrecisionGeometricCenter   PrecisionTag = "GEOMETRIC_CENTER"
	PrecisionApproximate       PrecisionTag = "APPROXIMATE"
)

// PrecisionTier is the confidence bucket a precision tag falls into.
type PrecisionTier string

const (
	TierPrecise      PrecisionTier = "PRECISE"
	TierAcceptable   PrecisionTier = "ACCEPTABLE"
	TierInsufficient PrecisionTier = "INSUFFICIENT"
)

// ClassifyPrecision maps a provider precision tag to a tier. Unknown tags are
// INSUFFICIENT.
func ClassifyPrecision(tag PrecisionTag) PrecisionTier {
	switch tag {
	case PrecisionRooftop:
		return TierPrecise
	case PrecisionRangeInterpolated:
		return TierAcceptable
	default:
		return TierInsufficient
	}
}
