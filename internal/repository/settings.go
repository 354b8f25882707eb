package repository

import (
	"context"
	"errors"
	"time"

	"guarantee-desk/internal/db"
	"guarantee-desk/internal/scoring"

	"github.com/jackc/pgx/v5"
)

// MatchSettings is the single row of operator-tunable matching thresholds
type MatchSettings struct {
	Thresholds scoring.Thresholds `json:"thresholds"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// SettingsRepository handles match-settings persistence
type SettingsRepository struct {
	q db.Querier
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(q db.Querier) *SettingsRepository {
	return &SettingsRepository{q: q}
}

// Get returns the stored thresholds, or db.ErrNotFound when the settings
// row has never been written
func (r *SettingsRepository) Get(ctx context.Context) (*MatchSettings, error) {
	var s MatchSettings
	err := r.q.QueryRow(ctx, `
		SELECT auto_accept, review, weak_floor, conflict_delta, max_candidates, updated_at
		FROM match_settings
		WHERE id = 1`).
		Scan(&s.Thresholds.AutoAccept, &s.Thresholds.Review, &s.Thresholds.WeakFloor,
			&s.Thresholds.ConflictDelta, &s.Thresholds.MaxCandidates, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Upsert writes the thresholds, creating the settings row on first use
func (r *SettingsRepository) Upsert(ctx context.Context, t scoring.Thresholds) (*MatchSettings, error) {
	var s MatchSettings
	err := r.q.QueryRow(ctx, `
		INSERT INTO match_settings (id, auto_accept, review, weak_floor, conflict_delta, max_candidates)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET auto_accept = EXCLUDED.auto_accept,
		    review = EXCLUDED.review,
		    weak_floor = EXCLUDED.weak_floor,
		    conflict_delta = EXCLUDED.conflict_delta,
		    max_candidates = EXCLUDED.max_candidates,
		    updated_at = now()
		RETURNING auto_accept, review, weak_floor, conflict_delta, max_candidates, updated_at`,
		t.AutoAccept, t.Review, t.WeakFloor, t.ConflictDelta, t.MaxCandidates).
		Scan(&s.Thresholds.AutoAccept, &s.Thresholds.Review, &s.Thresholds.WeakFloor,
			&s.Thresholds.ConflictDelta, &s.Thresholds.MaxCandidates, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
