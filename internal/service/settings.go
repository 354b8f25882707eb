package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"guarantee-desk/internal/db"
	"guarantee-desk/internal/logger"
	"guarantee-desk/internal/repository"
	"guarantee-desk/internal/scoring"
)

type settingsStore interface {
	Get(ctx context.Context) (*repository.MatchSettings, error)
	Upsert(ctx context.Context, t scoring.Thresholds) (*repository.MatchSettings, error)
}

// ErrInvalidThresholds is returned when an operator submits threshold
// values outside their allowed ranges.
var ErrInvalidThresholds = errors.New("invalid matching thresholds")

// SettingsService serves the runtime-tunable matching thresholds. Values
// are cached after the first read and invalidated explicitly on update,
// so threshold changes take effect without a redeploy while steady-state
// lookups stay cheap.
type SettingsService struct {
	store    settingsStore
	defaults scoring.Thresholds

	mu     sync.RWMutex
	cached *scoring.Thresholds
}

// NewSettingsService creates a new settings service. defaults are served
// until a settings row exists and whenever the store cannot be read.
func NewSettingsService(store settingsStore, defaults scoring.Thresholds) *SettingsService {
	return &SettingsService{
		store:    store,
		defaults: defaults,
	}
}

// Thresholds returns the live thresholds. Never fails: a missing row
// falls back to the defaults silently, a store error falls back with a
// warning.
func (s *SettingsService) Thresholds(ctx context.Context) scoring.Thresholds {
	s.mu.RLock()
	if s.cached != nil {
		t := *s.cached
		s.mu.RUnlock()
		return t
	}
	s.mu.RUnlock()

	stored, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logger.Warn().Err(err).Msg("settings store read failed, using default thresholds")
		}
		return s.defaults
	}

	s.mu.Lock()
	s.cached = &stored.Thresholds
	s.mu.Unlock()
	return stored.Thresholds
}

// Update validates and persists new thresholds, then invalidates the
// cache so the next lookup sees them.
func (s *SettingsService) Update(ctx context.Context, t scoring.Thresholds) (*repository.MatchSettings, error) {
	if !t.Validate() {
		return nil, ErrInvalidThresholds
	}

	stored, err := s.store.Upsert(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("persist thresholds: %w", err)
	}

	s.Invalidate()
	logger.Info().
		Float64("auto_accept", t.AutoAccept).
		Float64("review", t.Review).
		Float64("weak_floor", t.WeakFloor).
		Float64("conflict_delta", t.ConflictDelta).
		Int("max_candidates", t.MaxCandidates).
		Msg("matching thresholds updated")
	return stored, nil
}

// Invalidate drops the cached thresholds
func (s *SettingsService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// Current returns the stored settings row, or the defaults when none
// exists yet.
func (s *SettingsService) Current(ctx context.Context) (*repository.MatchSettings, error) {
	stored, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &repository.MatchSettings{Thresholds: s.defaults}, nil
		}
		return nil, err
	}
	return stored, nil
}
