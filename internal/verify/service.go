// Package verify runs address and postal-code checks against the geocoding
// provider and records their outcome.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/address-verify-service/internal/domain"
	"github.com/couchcryptid/address-verify-service/internal/observability"
)

// ErrNoGeocoder is returned when no geocoding provider is configured.
var ErrNoGeocoder = errors.New("geocoding is not configured")

const (
	outcomeValid   = "valid"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// Fallback names the lookup that recovered a missing postal code.
type Fallback string

const (
	FallbackNone        Fallback = ""
	FallbackPostalQuery Fallback = "postal_query"
	FallbackReverse     Fallback = "reverse"
)

// Publisher receives an event for every completed check.
type Publisher interface {
	Publish(ctx context.Context, event domain.VerificationEvent) error
}

// AddressCheck is the full outcome of an address verification.
type AddressCheck struct {
	Query   domain.AddressQuery
	Search  string
	Result  domain.GeocodeResult
	Verdict domain.MatchVerdict
}

// ZipCheck is the full outcome of a postal-code verification.
type ZipCheck struct {
	Query    domain.AddressQuery
	Search   string
	Result   domain.GeocodeResult
	Verdict  domain.ZipVerdict
	Fallback Fallback
}

// Option customizes a Service.
type Option func(*Service)

// WithCountry sets the country appended to every query.
func WithCountry(country string) Option {
	return func(s *Service) {
		if country != "" {
			s.country = country
		}
	}
}

// WithZipFallback toggles the postal-code recovery lookups.
func WithZipFallback(enabled bool) Option {
	return func(s *Service) { s.zipFallback = enabled }
}

// WithPublisher sets where verification events are sent.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// Service verifies addresses and postal codes. It is safe for concurrent use.
type Service struct {
	geocoder    domain.Geocoder
	policy      *domain.AddressPolicy
	publisher   Publisher
	country     string
	zipFallback bool
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewService creates a Service. A nil geocoder yields a service whose checks
// fail with ErrNoGeocoder.
func NewService(g domain.Geocoder, policy *domain.AddressPolicy, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		geocoder:    g,
		policy:      policy,
		country:     domain.DefaultCountry,
		zipFallback: true,
		metrics:     metrics,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReadiness returns nil when the service can reach a geocoder.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.geocoder == nil {
		return ErrNoGeocoder
	}
	return nil
}

// VerifyAddress geocodes q and judges whether the result confirms it.
// Only provider failures are returned as errors, as *domain.ProviderError.
func (s *Service) VerifyAddress(ctx context.Context, q domain.AddressQuery) (AddressCheck, error) {
	if s.geocoder == nil {
		return AddressCheck{}, ErrNoGeocoder
	}
	if err := q.Validate(); err != nil {
		return AddressCheck{}, err
	}

	start := time.Now()
	check := AddressCheck{Query: q, Search: domain.BuildQuery(q, s.country)}

	result, err := s.geocoder.Geocode(ctx, check.Search)
	if err != nil {
		s.recordError(domain.FlowAddress, start)
		return check, &domain.ProviderError{Query: check.Search, Err: err}
	}

	check.Result = result
	check.Verdict = s.policy.Evaluate(q, result)
	s.record(domain.FlowAddress, check.Verdict.Valid, check.Verdict.Reason, start)

	s.logger.Debug("address verified",
		"query", check.Search,
		"valid", check.Verdict.Valid,
		"reason", check.Verdict.Reason,
		"precision", result.PrecisionTag,
		"city_score", check.Verdict.Scores.City,
		"street_score", check.Verdict.Scores.Street,
		"house_score", check.Verdict.Scores.House,
	)
	s.publish(ctx, domain.NewAddressEvent(check.Search, result, check.Verdict))
	return check, nil
}

// VerifyZip geocodes q and compares the official postal code with userZip.
// When the geocode lacks a postal code, the query is retried with userZip
// appended and then the coordinates are reverse geocoded.
func (s *Service) VerifyZip(ctx context.Context, q domain.AddressQuery, userZip string) (ZipCheck, error) {
	if s.geocoder == nil {
		return ZipCheck{}, ErrNoGeocoder
	}
	if err := q.Validate(); err != nil {
		return ZipCheck{}, err
	}

	start := time.Now()
	check := ZipCheck{Query: q, Search: domain.BuildQuery(q, s.country)}

	result, err := s.geocoder.Geocode(ctx, check.Search)
	if err != nil {
		s.recordError(domain.FlowZip, start)
		return check, &domain.ProviderError{Query: check.Search, Err: err}
	}

	if s.zipFallback && result.Found && strings.TrimSpace(result.Components.PostalCode) == "" {
		result, check.Fallback = s.recoverPostalCode(ctx, check.Search, userZip, result)
	}

	check.Result = result
	check.Verdict = domain.EvaluateZip(userZip, result)
	s.record(domain.FlowZip, check.Verdict.Valid, check.Verdict.Reason, start)

	s.logger.Debug("postal code verified",
		"query", check.Search,
		"valid", check.Verdict.Valid,
		"reason", check.Verdict.Reason,
		"official_zip", check.Verdict.OfficialZip,
		"fallback", check.Fallback,
	)
	s.publish(ctx, domain.NewZipEvent(check.Search, result, check.Verdict))
	return check, nil
}

// recoverPostalCode tries to fill in a missing postal code. Lookup failures
// are logged and leave result unchanged.
func (s *Service) recoverPostalCode(ctx context.Context, search, userZip string, result domain.GeocodeResult) (domain.GeocodeResult, Fallback) {
	if strings.TrimSpace(userZip) != "" {
		r, err := s.geocoder.Geocode(ctx, domain.WithPostalCode(search, userZip))
		switch {
		case err != nil:
			s.logger.Warn("postal code query fallback failed", "query", search, "error", err)
			s.metrics.ZipFallbacks.WithLabelValues(string(FallbackPostalQuery), outcomeError).Inc()
		case r.Found && strings.TrimSpace(r.Components.PostalCode) != "":
			s.metrics.ZipFallbacks.WithLabelValues(string(FallbackPostalQuery), "recovered").Inc()
			result.Components.PostalCode = r.Components.PostalCode
			result.FormattedAddress = r.FormattedAddress
			return result, FallbackPostalQuery
		default:
			s.metrics.ZipFallbacks.WithLabelValues(string(FallbackPostalQuery), "miss").Inc()
		}
	}

	if !result.HasCoordinates() {
		return result, FallbackNone
	}

	r, err := s.geocoder.ReverseGeocode(ctx, result.Lat, result.Lon)
	switch {
	case err != nil:
		s.logger.Warn("reverse geocode fallback failed", "query", search, "lat", result.Lat, "lon", result.Lon, "error", err)
		s.metrics.ZipFallbacks.WithLabelValues(string(FallbackReverse), outcomeError).Inc()
	case r.Found && strings.TrimSpace(r.Components.PostalCode) != "":
		s.metrics.ZipFallbacks.WithLabelValues(string(FallbackReverse), "recovered").Inc()
		result.Components.PostalCode = r.Components.PostalCode
		return result, FallbackReverse
	default:
		s.metrics.ZipFallbacks.WithLabelValues(string(FallbackReverse), "miss").Inc()
	}
	return result, FallbackNone
}

func (s *Service) publish(ctx context.Context, event domain.VerificationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish verification event failed", "event_id", event.ID, "flow", event.Flow, "error", err)
		s.metrics.EventPublishErrors.Inc()
	}
}

func (s *Service) record(flow domain.Flow, valid bool, reason domain.Reason, start time.Time) {
	outcome := outcomeInvalid
	if valid {
		outcome = outcomeValid
	}
	s.metrics.Verifications.WithLabelValues(string(flow), outcome).Inc()
	if reason != domain.ReasonNone {
		s.metrics.VerificationReasons.WithLabelValues(string(flow), string(reason)).Inc()
	}
	s.metrics.VerificationDuration.WithLabelValues(string(flow)).Observe(time.Since(start).Seconds())
}

func (s *Service) recordError(flow domain.Flow, start time.Time) {
	s.metrics.Verifications.WithLabelValues(string(flow), outcomeError).Inc()
	s.metrics.VerificationReasons.WithLabelValues(string(flow), string(domain.ReasonProviderError)).Inc()
	s.metrics.VerificationDuration.WithLabelValues(string(flow)).Observe(time.Since(start).Seconds())
}
