package assessment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/airindex/airindex/internal/aqi"
	"github.com/airindex/airindex/internal/ingest"
)

// FeedMetrics records feed call durations and cache activity.
// Satisfied by middleware.ProviderMetrics.
type FeedMetrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the assessment service.
type ServiceConfig struct {
	// Provider is the observation feed used for location lookups.
	Provider ingest.Provider

	// Repository stores assessment history.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// Metrics, when set, receives feed request and cache hit/miss counts.
	Metrics FeedMetrics

	// FeedName labels metrics for the configured provider (default: "feed").
	FeedName string

	// CacheTTL is how long to cache per-location assessments (default: 5 minutes).
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale assessments on feed errors (default: 30 minutes).
	StaleIfErrorTTL time.Duration
}

type cacheEntry struct {
	record    *Record
	fetchedAt time.Time
	expiry    time.Time
}

// Service scores readings, caches per-location results, and records history.
type Service struct {
	provider        ingest.Provider
	repo            Repository
	logger          zerolog.Logger
	metrics         FeedMetrics
	feedName        string
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu    sync.RWMutex
	cache map[string]*cacheEntry
}

// NewService creates a new assessment service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	feedName := cfg.FeedName
	if feedName == "" {
		feedName = "feed"
	}

	return &Service{
		provider:        cfg.Provider,
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		feedName:        feedName,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		cache:           make(map[string]*cacheEntry),
	}
}

// AssessReading scores a caller-supplied reading and records the result.
// Engine validation errors pass through unwrapped so callers can match
// aqi.ErrInvalidReading.
func (s *Service) AssessReading(ctx context.Context, reading aqi.Reading, source string) (*Record, error) {
	result, err := aqi.Assess(reading)
	if err != nil {
		return nil, err
	}

	record := &Record{
		ID:         uuid.New().String(),
		Reading:    reading,
		Result:     *result,
		Source:     source,
		AssessedAt: time.Now(),
	}

	if err := s.repo.Save(ctx, record); err != nil {
		// The caller still gets their assessment; history is best-effort here.
		s.logger.Error().Err(err).Str("record_id", record.ID).Msg("failed to persist assessment")
	}

	s.logger.Debug().
		Int("aqi", result.AQI).
		Str("category", string(result.Category)).
		Int("dominant", len(result.DominantPollutants)).
		Msg("reading assessed")

	return record, nil
}

// AssessObservation scores a feed observation and records it against its
// location. Used by the stream consumer and the refresh worker.
func (s *Service) AssessObservation(ctx context.Context, obs *ingest.Observation) (*Record, error) {
	result, err := aqi.Assess(obs.Reading)
	if err != nil {
		return nil, err
	}

	record := &Record{
		ID:         uuid.New().String(),
		Lat:        obs.Lat,
		Lon:        obs.Lon,
		Reading:    obs.Reading,
		Result:     *result,
		Source:     obs.Source,
		MeasuredAt: obs.MeasuredAt,
		AssessedAt: time.Now(),
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[locationKey(obs.Lat, obs.Lon)] = &cacheEntry{
		record:    record,
		fetchedAt: record.AssessedAt,
		expiry:    record.AssessedAt.Add(s.cacheTTL),
	}
	s.mu.Unlock()

	s.logger.Info().
		Float64("lat", obs.Lat).
		Float64("lon", obs.Lon).
		Str("source", obs.Source).
		Int("aqi", result.AQI).
		Str("category", string(result.Category)).
		Msg("observation assessed")

	return record, nil
}

// GetLocationAssessment returns the current assessment for a location.
// It uses a cached version if available and not expired.
func (s *Service) GetLocationAssessment(ctx context.Context, lat, lon float64) (*Record, error) {
	if !ingest.ValidCoordinates(lat, lon) {
		return nil, ingest.ErrInvalidCoordinates
	}

	key := locationKey(lat, lon)

	// Check for fresh cache
	s.mu.RLock()
	if entry, ok := s.cache[key]; ok && time.Now().Before(entry.expiry) {
		record := entry.record
		s.mu.RUnlock()
		if s.metrics != nil {
			s.metrics.RecordCacheHit(s.feedName, "assessment")
		}
		return record, nil
	}
	s.mu.RUnlock()

	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.feedName, "assessment")
	}

	// Need to refresh
	return s.refreshLocation(ctx, lat, lon)
}

// RefreshLocation forces a fresh fetch and assessment for a location.
func (s *Service) RefreshLocation(ctx context.Context, lat, lon float64) error {
	if !ingest.ValidCoordinates(lat, lon) {
		return ingest.ErrInvalidCoordinates
	}

	s.mu.Lock()
	delete(s.cache, locationKey(lat, lon))
	s.mu.Unlock()

	_, err := s.refreshLocation(ctx, lat, lon)
	return err
}

// GetRecord retrieves a stored assessment by ID.
func (s *Service) GetRecord(ctx context.Context, id string) (*Record, error) {
	return s.repo.Get(ctx, id)
}

// History lists stored assessments, newest first.
func (s *Service) History(ctx context.Context, opts ListOptions) (*ListResult, error) {
	return s.repo.List(ctx, opts)
}

// InvalidateCache clears all cached location assessments.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cacheEntry)
}

// CacheStatus returns information about the current cache state.
func (s *Service) CacheStatus() CacheStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := CacheStatus{Locations: len(s.cache)}
	now := time.Now()
	for _, entry := range s.cache {
		if now.Before(entry.expiry) {
			status.Fresh++
		}
		if entry.fetchedAt.After(status.NewestFetch) {
			status.NewestFetch = entry.fetchedAt
		}
	}
	return status
}

// CacheStatus represents the current state of the location cache.
type CacheStatus struct {
	Locations   int       `json:"locations"`
	Fresh       int       `json:"fresh"`
	NewestFetch time.Time `json:"newest_fetch,omitzero"`
}

// refreshLocation fetches a fresh observation and assesses it.
func (s *Service) refreshLocation(ctx context.Context, lat, lon float64) (*Record, error) {
	key := locationKey(lat, lon)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check: another goroutine might have refreshed while we waited
	if entry, ok := s.cache[key]; ok && time.Now().Before(entry.expiry) {
		return entry.record, nil
	}

	s.logger.Debug().Float64("lat", lat).Float64("lon", lon).Msg("refreshing location assessment")

	fetchStart := time.Now()
	obs, err := s.provider.FetchObservation(ctx, lat, lon)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.feedName, "fetch_observation", time.Since(fetchStart), err)
	}
	if err != nil {
		if errors.Is(err, ingest.ErrNoDataForLocation) || errors.Is(err, ingest.ErrInvalidCoordinates) {
			return nil, err
		}

		s.logger.Error().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("failed to fetch observation")

		// If we have stale data that's not too old, return it
		if entry, ok := s.cache[key]; ok && time.Now().Before(entry.fetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", entry.fetchedAt).
				Msg("serving stale assessment due to feed error")
			return entry.record, nil
		}

		return nil, ErrProviderUnavailable
	}

	result, err := aqi.Assess(obs.Reading)
	if err != nil {
		return nil, err
	}

	record := &Record{
		ID:         uuid.New().String(),
		Lat:        lat,
		Lon:        lon,
		Reading:    obs.Reading,
		Result:     *result,
		Source:     obs.Source,
		MeasuredAt: obs.MeasuredAt,
		AssessedAt: time.Now(),
	}

	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("record_id", record.ID).Msg("failed to persist assessment")
	}

	s.cache[key] = &cacheEntry{
		record:    record,
		fetchedAt: record.AssessedAt,
		expiry:    record.AssessedAt.Add(s.cacheTTL),
	}

	s.logger.Info().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("aqi", result.AQI).
		Str("category", string(result.Category)).
		Time("expires_at", s.cache[key].expiry).
		Msg("location assessment refreshed")

	return record, nil
}
