package domain

import "strings"

// Thresholds are the similarity bars used by AddressPolicy.
type Thresholds struct {
	// Similarity is the bar city and street must each clear.
	Similarity float64
	// HighSimilarity is the bar both city and street must clear before a
	// missing or interpolated house number is tolerated.
	HighSimilarity float64
	// HousePrecise is the house-number bar for rooftop geocodes.
	HousePrecise float64
	// HouseAcceptable is the house-number bar for interpolated geocodes.
	HouseAcceptable float64
}

// DefaultThresholds returns the production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Similarity:      0.7,
		HighSimilarity:  0.85,
		HousePrecise:    0.7,
		HouseAcceptable: 0.6,
	}
}

// PolicyOption customizes an AddressPolicy.
type PolicyOption func(*AddressPolicy)

// WithScorer replaces the default similarity scorer.
func WithScorer(s *Scorer) PolicyOption {
	return func(p *AddressPolicy) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithStrictInterpolatedHouse makes interpolated geocodes without a house
// number component fail when the user did supply a house number.
func WithStrictInterpolatedHouse(strict bool) PolicyOption {
	return func(p *AddressPolicy) {
		p.strictInterpolatedHouse = strict
	}
}

// AddressPolicy turns a geocode and the user's input into a MatchVerdict.
// It holds no mutable state and is safe for concurrent use.
type AddressPolicy struct {
	thresholds              Thresholds
	scorer                  *Scorer
	strictInterpolatedHouse bool
}

// NewAddressPolicy creates an AddressPolicy with the given thresholds.
func NewAddressPolicy(t Thresholds, opts ...PolicyOption) *AddressPolicy {
	p := &AddressPolicy{
		thresholds: t,
		scorer:     defaultScorer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Thresholds returns the policy's thresholds.
func (p *AddressPolicy) Thresholds() Thresholds {
	return p.thresholds
}

// Evaluate decides whether result confirms query.
//
// Low-precision geocodes are rejected before any text is compared. Otherwise
// city and street must each clear the similarity bar, and the house number
// must agree; a missing house number is tolerated only when city and street
// both clear the high bar.
func (p *AddressPolicy) Evaluate(query AddressQuery, result GeocodeResult) MatchVerdict {
	if !result.Found {
		return MatchVerdict{Reason: ReasonNotFound}
	}

	tier := ClassifyPrecision(result.PrecisionTag)
	if tier == TierInsufficient {
		return MatchVerdict{Reason: ReasonInsufficientPrecision, PrecisionTier: tier}
	}

	comp := result.Components
	scores := Scores{
		City:   p.scorer.Similarity(query.City, comp.City),
		Street: p.streetSimilarity(query.Street, comp.Street),
	}
	hasHouse := strings.TrimSpace(comp.HouseNumber) != ""
	if hasHouse {
		scores.House = HouseNumberSimilarity(query.House, comp.HouseNumber)
	}

	t := p.thresholds
	cityMatches := scores.City >= t.Similarity
	streetMatches := scores.Street >= t.Similarity
	highMatch := scores.City >= t.HighSimilarity && scores.Street >= t.HighSimilarity

	var houseMatches bool
	switch tier {
	case TierPrecise:
		if hasHouse {
			houseMatches = scores.House >= t.HousePrecise
		} else {
			houseMatches = highMatch
		}
	case TierAcceptable:
		switch {
		case !highMatch:
			houseMatches = false
		case hasHouse:
			houseMatches = scores.House >= t.HouseAcceptable
		default:
			houseMatches = !p.strictInterpolatedHouse || strings.TrimSpace(query.House) == ""
		}
	}

	v := MatchVerdict{
		Valid:         cityMatches && streetMatches && houseMatches,
		Scores:        scores,
		PrecisionTier: tier,
		CityMatches:   cityMatches,
		StreetMatches: streetMatches,
		HouseMatches:  houseMatches,
	}

	switch {
	case v.Valid:
	case !cityMatches:
		v.Reason = ReasonCityMismatch
	case !streetMatches:
		v.Reason = ReasonStreetMismatch
	default:
		v.Reason = ReasonHouseMismatch
		v.HouseDetail = houseDetail(tier, hasHouse, highMatch)
	}
	return v
}

// streetSimilarity scores the street fields. A street absent on both sides
// (settlement without a street grid) counts as agreement.
func (p *AddressPolicy) streetSimilarity(userStreet, officialStreet string) float64 {
	if strings.TrimSpace(userStreet) == "" && strings.TrimSpace(officialStreet) == "" {
		return scoreExact
	}
	return p.scorer.Similarity(userStreet, officialStreet)
}

func houseDetail(tier PrecisionTier, hasHouse, highMatch bool) HouseDetail {
	switch {
	case tier == TierAcceptable && !highMatch:
		return HouseDetailWeakCityStreet
	case hasHouse:
		return HouseDetailNumberDiffers
	case tier == TierAcceptable:
		return HouseDetailNotConfirmed
	default:
		return HouseDetailWeakCityStreet
	}
}
