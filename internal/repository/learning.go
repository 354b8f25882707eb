package repository

import (
	"context"
	"time"

	"guarantee-desk/internal/db"
	"guarantee-desk/internal/normalize"

	"github.com/jackc/pgx/v5/pgtype"
)

// LearningRecord holds the per-(canonical key, entity) counters that bias
// future rankings. Rows are created lazily on first operator feedback and
// never hard-deleted; blocking is a penalty, not a removal.
type LearningRecord struct {
	CanonicalKey string           `json:"canonical_key"`
	Domain       normalize.Domain `json:"domain"`
	EntityID     int64            `json:"entity_id"`
	UsageCount   int              `json:"usage_count"`
	BlockCount   int              `json:"block_count"`
	LastUsedAt   *time.Time       `json:"last_used_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// LearningRepository handles learning-record persistence
type LearningRepository struct {
	q db.Querier
}

// NewLearningRepository creates a new learning repository
func NewLearningRepository(q db.Querier) *LearningRepository {
	return &LearningRepository{q: q}
}

// ListByKey returns every learning record for a canonical key, ordered by
// entity id for deterministic candidate generation
func (r *LearningRepository) ListByKey(ctx context.Context, domain normalize.Domain, canonicalKey string) ([]LearningRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT canonical_key, domain, entity_id, usage_count, block_count, last_used_at, created_at, updated_at
		FROM learning_record
		WHERE domain = $1 AND canonical_key = $2
		ORDER BY entity_id`, string(domain), canonicalKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LearningRecord
	for rows.Next() {
		rec, err := scanLearningRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListForEntity returns the learned aliases pointing at an entity
// (operator audit view)
func (r *LearningRepository) ListForEntity(ctx context.Context, domain normalize.Domain, entityID int64) ([]LearningRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT canonical_key, domain, entity_id, usage_count, block_count, last_used_at, created_at, updated_at
		FROM learning_record
		WHERE domain = $1 AND entity_id = $2
		ORDER BY usage_count DESC, canonical_key`, string(domain), entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LearningRecord
	for rows.Next() {
		rec, err := scanLearningRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecordUsage increments the usage counter for (key, entity), creating the
// record on first confirmation. The increment happens inside a single
// conditional upsert so concurrent confirmations for the same key cannot
// lose updates.
func (r *LearningRepository) RecordUsage(ctx context.Context, domain normalize.Domain, canonicalKey string, entityID int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO learning_record (domain, canonical_key, entity_id, usage_count, block_count, last_used_at)
		VALUES ($1, $2, $3, 1, 0, now())
		ON CONFLICT (domain, canonical_key, entity_id) DO UPDATE
		SET usage_count = learning_record.usage_count + 1,
		    last_used_at = now(),
		    updated_at = now()`,
		string(domain), canonicalKey, entityID)
	return err
}

// RecordBlock increments the block counter for (key, entity). The penalty
// stays scoped to the pair: rejecting a wrong suggestion must not
// suppress the right one.
func (r *LearningRepository) RecordBlock(ctx context.Context, domain normalize.Domain, canonicalKey string, entityID int64) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO learning_record (domain, canonical_key, entity_id, usage_count, block_count)
		VALUES ($1, $2, $3, 0, 1)
		ON CONFLICT (domain, canonical_key, entity_id) DO UPDATE
		SET block_count = learning_record.block_count + 1,
		    updated_at = now()`,
		string(domain), canonicalKey, entityID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLearningRecord(row rowScanner) (LearningRecord, error) {
	var rec LearningRecord
	var lastUsed pgtype.Timestamptz
	err := row.Scan(&rec.CanonicalKey, &rec.Domain, &rec.EntityID, &rec.UsageCount, &rec.BlockCount, &lastUsed, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return rec, err
	}
	if lastUsed.Valid {
		rec.LastUsedAt = &lastUsed.Time
	}
	return rec, nil
}
