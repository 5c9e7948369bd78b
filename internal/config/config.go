package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Google geocoding configuration.
	GoogleMapsKey   string
	GeocodeEnabled  bool
	GeocodeBaseURL  string
	GeocodeLanguage string
	GeocodeCountry  string
	GeocodeTimeout  time.Duration

	// Matching configuration.
	SimilarityThreshold      float64
	HighSimilarityThreshold  float64
	HousePreciseThreshold    float64
	HouseAcceptableThreshold float64
	ExtendedVariants         bool
	StrictInterpolatedHouse  bool
	ZipFallbackEnabled       bool

	// Verification event publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaVerdictTopic  string
	BatchSize          int
	BatchFlushInterval time.Duration
	EventBufferSize    int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	bufferSize, err := parseBufferSize()
	if err != nil {
		return nil, err
	}

	key := os.Getenv("GOOGLE_MAPS_KEY")
	geocodeEnabled := key != ""
	if v := os.Getenv("GEOCODE_ENABLED"); v != "" {
		geocodeEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		GoogleMapsKey:   key,
		GeocodeEnabled:  geocodeEnabled,
		GeocodeBaseURL:  sharedcfg.EnvOrDefault("GEOCODE_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
		GeocodeLanguage: sharedcfg.EnvOrDefault("GEOCODE_LANGUAGE", "he"),
		GeocodeCountry:  sharedcfg.EnvOrDefault("GEOCODE_COUNTRY", "ישראל"),
		GeocodeTimeout:  geocodeTimeout,

		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaVerdictTopic:  sharedcfg.EnvOrDefault("KAFKA_VERDICT_TOPIC", "address-verifications"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		EventBufferSize:    bufferSize,
	}

	thresholds := []struct {
		env string
		def float64
		dst *float64
	}{
		{"MATCH_SIMILARITY_THRESHOLD", 0.7, &cfg.SimilarityThreshold},
		{"MATCH_HIGH_SIMILARITY_THRESHOLD", 0.85, &cfg.HighSimilarityThreshold},
		{"MATCH_HOUSE_PRECISE_THRESHOLD", 0.7, &cfg.HousePreciseThreshold},
		{"MATCH_HOUSE_ACCEPTABLE_THRESHOLD", 0.6, &cfg.HouseAcceptableThreshold},
	}
	for _, th := range thresholds {
		if *th.dst, err = parseThreshold(th.env, th.def); err != nil {
			return nil, err
		}
	}

	flags := []struct {
		env string
		def bool
		dst *bool
	}{
		{"MATCH_EXTENDED_VARIANTS", false, &cfg.ExtendedVariants},
		{"MATCH_STRICT_INTERPOLATED_HOUSE", false, &cfg.StrictInterpolatedHouse},
		{"ZIP_FALLBACK_ENABLED", true, &cfg.ZipFallbackEnabled},
		{"KAFKA_ENABLED", false, &cfg.KafkaEnabled},
	}
	for _, f := range flags {
		if *f.dst, err = parseBool(f.env, f.def); err != nil {
			return nil, err
		}
	}

	if cfg.HighSimilarityThreshold < cfg.SimilarityThreshold {
		return nil, errors.New("MATCH_HIGH_SIMILARITY_THRESHOLD must not be below MATCH_SIMILARITY_THRESHOLD")
	}
	if cfg.GeocodeEnabled && cfg.GoogleMapsKey == "" {
		return nil, errors.New("GEOCODE_ENABLED is true but GOOGLE_MAPS_KEY is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaVerdictTopic == "" {
			return nil, errors.New("KAFKA_VERDICT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseDuration(env, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(env, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", env)
	}
	return d, nil
}

func parseBufferSize() (int, error) {
	s := os.Getenv("EVENT_BUFFER_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid EVENT_BUFFER_SIZE: must be a positive integer")
	}
	return n, nil
}

func parseThreshold(env string, def float64) (float64, error) {
	s := os.Getenv(env)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v > 1 {
		return 0, fmt.Errorf("invalid %s: must be a number in (0,1]", env)
	}
	return v, nil
}

func parseBool(env string, def bool) (bool, error) {
	s := os.Getenv(env)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", env, err)
	}
	return v, nil
}
