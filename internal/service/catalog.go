package service

import (
	"context"
	"errors"
	"strings"

	"guarantee-desk/internal/normalize"
	"guarantee-desk/internal/repository"
)

type catalogStore interface {
	catalogReader
	GetEntity(ctx context.Context, id int64) (*repository.CatalogEntity, error)
	CreateEntity(ctx context.Context, req repository.CreateEntityRequest) (*repository.CatalogEntity, error)
	CreateAlias(ctx context.Context, domain normalize.Domain, req repository.CreateAliasRequest) (*repository.EntityAlias, error)
}

// ErrNameRequired is returned when a dictionary entry is submitted with a
// name that is empty or normalizes to nothing.
var ErrNameRequired = errors.New("a non-empty name is required")

// CatalogService manages the supplier and bank dictionaries the engine
// matches against.
type CatalogService struct {
	catalog catalogStore
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog catalogStore) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// ListEntities returns the dictionary for a domain
func (s *CatalogService) ListEntities(ctx context.Context, domain normalize.Domain) ([]repository.CatalogEntity, error) {
	if !domain.Valid() {
		return nil, ErrUnknownDomain
	}
	return s.catalog.ListEntities(ctx, domain)
}

// CreateEntity adds a dictionary entry. Names that strict-normalize to an
// existing entry are rejected as duplicates by the repository.
func (s *CatalogService) CreateEntity(ctx context.Context, domain normalize.Domain, officialName string) (*repository.CatalogEntity, error) {
	if !domain.Valid() {
		return nil, ErrUnknownDomain
	}
	officialName = strings.TrimSpace(officialName)
	if officialName == "" || normalize.Key(officialName, domain) == "" {
		return nil, ErrNameRequired
	}
	return s.catalog.CreateEntity(ctx, repository.CreateEntityRequest{
		Domain:       domain,
		OfficialName: officialName,
	})
}

// ConfirmAlias stores an operator-approved alternative name for an entity
func (s *CatalogService) ConfirmAlias(ctx context.Context, entityID int64, rawName string) (*repository.EntityAlias, error) {
	entity, err := s.catalog.GetEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	rawName = strings.TrimSpace(rawName)
	if rawName == "" || normalize.Key(rawName, entity.Domain) == "" {
		return nil, ErrNameRequired
	}
	return s.catalog.CreateAlias(ctx, entity.Domain, repository.CreateAliasRequest{
		EntityID: entityID,
		RawName:  rawName,
	})
}
