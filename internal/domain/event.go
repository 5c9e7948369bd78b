package domain

import (
	"time"

	"github.com/google/uuid"
)

// Flow identifies which check produced a verification event.
type Flow string

const (
	FlowAddress Flow = "address"
	FlowZip     Flow = "zip"
)

// VerificationEvent records the outcome of one check for downstream
// consumers (quoting, mailing, compliance).
type VerificationEvent struct {
	ID               string        `json:"id"`
	Flow             Flow          `json:"flow"`
	Query            string        `json:"query"`
	Valid            bool          `json:"valid"`
	Reason           Reason        `json:"reason,omitempty"`
	HouseDetail      HouseDetail   `json:"house_detail,omitempty"`
	PrecisionTier    PrecisionTier `json:"precision_tier,omitempty"`
	FormattedAddress string        `json:"formatted_address,omitempty"`
	Scores           *Scores       `json:"scores,omitempty"`
	UserZip          string        `json:"user_zip,omitempty"`
	OfficialZip      string        `json:"official_zip,omitempty"`
	CheckedAt        time.Time     `json:"checked_at"`
}

// NewAddressEvent builds the event for an address check.
func NewAddressEvent(query string, result GeocodeResult, v MatchVerdict) VerificationEvent {
	scores := v.Scores
	return VerificationEvent{
		ID:               uuid.NewString(),
		Flow:             FlowAddress,
		Query:            query,
		Valid:            v.Valid,
		Reason:           v.Reason,
		HouseDetail:      v.HouseDetail,
		PrecisionTier:    v.PrecisionTier,
		FormattedAddress: result.FormattedAddress,
		Scores:           &scores,
		CheckedAt:        clock.Now().UTC(),
	}
}

// NewZipEvent builds the event for a postal-code check.
func NewZipEvent(query string, result GeocodeResult, v ZipVerdict) VerificationEvent {
	return VerificationEvent{
		ID:               uuid.NewString(),
		Flow:             FlowZip,
		Query:            query,
		Valid:            v.Valid,
		Reason:           v.Reason,
		FormattedAddress: result.FormattedAddress,
		UserZip:          v.UserZip,
		OfficialZip:      v.OfficialZip,
		CheckedAt:        clock.Now().UTC(),
	}
}
