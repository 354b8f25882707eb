package repository

import (
	"context"
	"errors"
	"time"

	"guarantee-desk/internal/db"
	"guarantee-desk/internal/normalize"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CatalogEntity represents a confirmed dictionary entry (supplier or bank)
type CatalogEntity struct {
	ID           int64            `json:"id"`
	Domain       normalize.Domain `json:"domain"`
	OfficialName string           `json:"official_name"`
	CanonicalKey string           `json:"canonical_key"`
	StrictKey    string           `json:"-"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// EntityAlias represents an operator-confirmed alternative name for an entity
type EntityAlias struct {
	ID           int64     `json:"id"`
	EntityID     int64     `json:"entity_id"`
	RawName      string    `json:"raw_name"`
	CanonicalKey string    `json:"canonical_key"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateEntityRequest holds parameters for adding a dictionary entry
type CreateEntityRequest struct {
	Domain       normalize.Domain
	OfficialName string
}

// CreateAliasRequest holds parameters for confirming an alternative name
type CreateAliasRequest struct {
	EntityID int64
	RawName  string
}

// CatalogRepository handles dictionary persistence
type CatalogRepository struct {
	q db.Querier
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(q db.Querier) *CatalogRepository {
	return &CatalogRepository{q: q}
}

// ListEntities returns all confirmed entities for a domain, ordered by id
func (r *CatalogRepository) ListEntities(ctx context.Context, domain normalize.Domain) ([]CatalogEntity, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, domain, official_name, canonical_key, strict_key, created_at, updated_at
		FROM catalog_entity
		WHERE domain = $1
		ORDER BY id`, string(domain))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []CatalogEntity
	for rows.Next() {
		var e CatalogEntity
		if err := rows.Scan(&e.ID, &e.Domain, &e.OfficialName, &e.CanonicalKey, &e.StrictKey, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// ListAliases returns all confirmed alternative names for a domain, ordered by id
func (r *CatalogRepository) ListAliases(ctx context.Context, domain normalize.Domain) ([]EntityAlias, error) {
	rows, err := r.q.Query(ctx, `
		SELECT a.id, a.entity_id, a.raw_name, a.canonical_key, a.created_at
		FROM entity_alias a
		JOIN catalog_entity e ON e.id = a.entity_id
		WHERE e.domain = $1
		ORDER BY a.id`, string(domain))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []EntityAlias
	for rows.Next() {
		var a EntityAlias
		if err := rows.Scan(&a.ID, &a.EntityID, &a.RawName, &a.CanonicalKey, &a.CreatedAt); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

// GetEntity retrieves an entity by id
func (r *CatalogRepository) GetEntity(ctx context.Context, id int64) (*CatalogEntity, error) {
	var e CatalogEntity
	err := r.q.QueryRow(ctx, `
		SELECT id, domain, official_name, canonical_key, strict_key, created_at, updated_at
		FROM catalog_entity
		WHERE id = $1`, id).
		Scan(&e.ID, &e.Domain, &e.OfficialName, &e.CanonicalKey, &e.StrictKey, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// CreateEntity adds a dictionary entry. The strict (space-free) key has a
// unique index per domain, so adding a variant spelling of an existing
// entry fails with db.ErrDuplicate instead of creating a twin.
func (r *CatalogRepository) CreateEntity(ctx context.Context, req CreateEntityRequest) (*CatalogEntity, error) {
	key := normalize.Key(req.OfficialName, req.Domain)
	strict := normalize.StrictKey(req.OfficialName, req.Domain)

	var e CatalogEntity
	err := r.q.QueryRow(ctx, `
		INSERT INTO catalog_entity (domain, official_name, canonical_key, strict_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, domain, official_name, canonical_key, strict_key, created_at, updated_at`,
		string(req.Domain), req.OfficialName, key, strict).
		Scan(&e.ID, &e.Domain, &e.OfficialName, &e.CanonicalKey, &e.StrictKey, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, db.ErrDuplicate
		}
		return nil, err
	}
	return &e, nil
}

// CreateAlias confirms an alternative name for an entity
func (r *CatalogRepository) CreateAlias(ctx context.Context, domain normalize.Domain, req CreateAliasRequest) (*EntityAlias, error) {
	key := normalize.Key(req.RawName, domain)

	var a EntityAlias
	err := r.q.QueryRow(ctx, `
		INSERT INTO entity_alias (entity_id, raw_name, canonical_key)
		VALUES ($1, $2, $3)
		RETURNING id, entity_id, raw_name, canonical_key, created_at`,
		req.EntityID, req.RawName, key).
		Scan(&a.ID, &a.EntityID, &a.RawName, &a.CanonicalKey, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, db.ErrDuplicate
		}
		return nil, err
	}
	return &a, nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
