package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/couchcryptid/address-verify-service/internal/domain"
	"github.com/couchcryptid/address-verify-service/internal/verify"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 64 << 10

// Verifier runs address and postal-code checks. *verify.Service implements it.
type Verifier interface {
	VerifyAddress(ctx context.Context, q domain.AddressQuery) (verify.AddressCheck, error)
	VerifyZip(ctx context.Context, q domain.AddressQuery, userZip string) (verify.ZipCheck, error)
}

type addressRequest struct {
	City   string `json:"city" validate:"required,max=100"`
	Street string `json:"street" validate:"max=100"`
	House  string `json:"house" validate:"max=20"`
}

func (r addressRequest) query() domain.AddressQuery {
	return domain.AddressQuery{City: r.City, Street: r.Street, House: r.House}
}

type zipRequest struct {
	addressRequest
	ZipCode string `json:"zipCode" validate:"required,max=20"`
}

type scoresResponse struct {
	City   float64 `json:"city"`
	Street float64 `json:"street"`
	House  float64 `json:"house"`
}

type componentsResponse struct {
	City   *string `json:"city"`
	Street *string `json:"street"`
	House  *string `json:"house"`
}

type validationResponse struct {
	CityMatches       bool    `json:"cityMatches"`
	StreetMatches     bool    `json:"streetMatches"`
	HouseMatches      bool    `json:"houseMatches"`
	HouseNumberFound  bool    `json:"houseNumberFound"`
	UserHouseNumber   string  `json:"userHouseNumber"`
	GoogleHouseNumber *string `json:"googleHouseNumber"`
}

type addressResponse struct {
	Valid         bool                `json:"valid"`
	Address       *string             `json:"address"`
	LocationType  string              `json:"locationType,omitempty"`
	PrecisionTier string              `json:"precisionTier,omitempty"`
	Similarity    *scoresResponse     `json:"similarity,omitempty"`
	Components    *componentsResponse `json:"components,omitempty"`
	Validation    *validationResponse `json:"validation,omitempty"`
	Reason        string              `json:"reason,omitempty"`
	Detail        string              `json:"detail,omitempty"`
	Error         string              `json:"error,omitempty"`
}

type zipResponse struct {
	Valid       bool    `json:"valid"`
	OfficialZip *string `json:"officialZip"`
	UserZip     string  `json:"userZip"`
	Address     *string `json:"address"`
	Fallback    string  `json:"fallback,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Error       string  `json:"error,omitempty"`
}

type errorResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error"`
}

type handlers struct {
	verifier Verifier
	validate *validator.Validate
	logger   *slog.Logger
}

func newHandlers(v Verifier, logger *slog.Logger) *handlers {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &handlers{verifier: v, validate: validate, logger: logger}
}

func (h *handlers) verifyAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !h.decode(w, r, &req) {
		return
	}

	check, err := h.verifier.VerifyAddress(r.Context(), req.query())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAddressResponse(check))
}

func (h *handlers) verifyZip(w http.ResponseWriter, r *http.Request) {
	var req zipRequest
	if !h.decode(w, r, &req) {
		return
	}

	check, err := h.verifier.VerifyZip(r.Context(), req.query(), req.ZipCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newZipResponse(check))
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		return false
	}
	return true
}

func (h *handlers) writeError(w http.ResponseWriter, err error) {
	var perr *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrCityRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, verify.ErrNoGeocoder):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.As(err, &perr):
		h.logger.Error("geocoding provider failed", "query", perr.Query, "error", perr.Err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Reason: string(domain.ReasonProviderError),
			Error:  "unable to verify address: geocoding provider unavailable",
		})
	default:
		h.logger.Error("verification failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func newAddressResponse(c verify.AddressCheck) addressResponse {
	v := c.Verdict
	if !c.Result.Found {
		return addressResponse{Reason: string(v.Reason), Error: "Address not found"}
	}

	resp := addressResponse{
		Valid:         v.Valid,
		Address:       &c.Result.FormattedAddress,
		LocationType:  string(c.Result.PrecisionTag),
		PrecisionTier: string(v.PrecisionTier),
		Reason:        string(v.Reason),
		Detail:        string(v.HouseDetail),
	}
	if v.Reason == domain.ReasonInsufficientPrecision {
		resp.Error = "Address location is not precise enough"
		return resp
	}

	comp := c.Result.Components
	resp.Similarity = &scoresResponse{City: v.Scores.City, Street: v.Scores.Street, House: v.Scores.House}
	resp.Components = &componentsResponse{
		City:   optional(comp.City),
		Street: optional(comp.Street),
		House:  optional(comp.HouseNumber),
	}
	resp.Validation = &validationResponse{
		CityMatches:       v.CityMatches,
		StreetMatches:     v.StreetMatches,
		HouseMatches:      v.HouseMatches,
		HouseNumberFound:  comp.HouseNumber != "",
		UserHouseNumber:   c.Query.House,
		GoogleHouseNumber: optional(comp.HouseNumber),
	}
	return resp
}

func newZipResponse(c verify.ZipCheck) zipResponse {
	v := c.Verdict
	resp := zipResponse{
		Valid:       v.Valid,
		OfficialZip: optional(v.OfficialZip),
		UserZip:     v.UserZip,
		Fallback:    string(c.Fallback),
		Reason:      string(v.Reason),
	}
	if c.Result.Found {
		resp.Address = &c.Result.FormattedAddress
	}
	switch v.Reason {
	case domain.ReasonNotFound:
		resp.Error = "Address not found"
	case domain.ReasonNoPostalCode:
		resp.Error = "No postal code found for this address"
	case domain.ReasonZipTooShort:
		resp.Error = "Postal code is too short to compare"
	}
	return resp
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
