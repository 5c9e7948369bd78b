// Package app assembles the verification service from configuration.
package app

import (
	"log/slog"

	"github.com/couchcryptid/address-verify-service/internal/adapter/google"
	"github.com/couchcryptid/address-verify-service/internal/config"
	"github.com/couchcryptid/address-verify-service/internal/domain"
	"github.com/couchcryptid/address-verify-service/internal/observability"
	"github.com/couchcryptid/address-verify-service/internal/verify"
)

// NewPolicy builds the address policy described by cfg.
func NewPolicy(cfg *config.Config) *domain.AddressPolicy {
	opts := []domain.PolicyOption{domain.WithStrictInterpolatedHouse(cfg.StrictInterpolatedHouse)}
	if cfg.ExtendedVariants {
		opts = append(opts, domain.WithScorer(domain.NewExtendedScorer()))
	}
	return domain.NewAddressPolicy(domain.Thresholds{
		Similarity:      cfg.SimilarityThreshold,
		HighSimilarity:  cfg.HighSimilarityThreshold,
		HousePrecise:    cfg.HousePreciseThreshold,
		HouseAcceptable: cfg.HouseAcceptableThreshold,
	}, opts...)
}

// NewGeocoder returns the Google client, or nil when geocoding is disabled.
func NewGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	if !cfg.GeocodeEnabled {
		metrics.GeocodeEnabled.Set(0)
		logger.Warn("google geocoding disabled, verification requests will be refused")
		return nil
	}
	metrics.GeocodeEnabled.Set(1)
	logger.Info("google geocoding enabled", "language", cfg.GeocodeLanguage, "timeout", cfg.GeocodeTimeout)
	return google.NewClient(cfg.GoogleMapsKey, cfg.GeocodeTimeout, metrics, logger,
		google.WithBaseURL(cfg.GeocodeBaseURL),
		google.WithLanguage(cfg.GeocodeLanguage),
	)
}

// NewService wires the geocoder and policy into a verify.Service. A nil
// publisher disables verification events.
func NewService(cfg *config.Config, publisher verify.Publisher, metrics *observability.Metrics, logger *slog.Logger) *verify.Service {
	opts := []verify.Option{
		verify.WithCountry(cfg.GeocodeCountry),
		verify.WithZipFallback(cfg.ZipFallbackEnabled),
	}
	if publisher != nil {
		opts = append(opts, verify.WithPublisher(publisher))
	}
	return verify.NewService(NewGeocoder(cfg, metrics, logger), NewPolicy(cfg), metrics, logger, opts...)
}
