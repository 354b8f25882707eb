package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"guarantee-desk/internal/api"
	"guarantee-desk/internal/db"
	"guarantee-desk/internal/normalize"
	"guarantee-desk/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler handles dictionary management requests
type CatalogHandler struct {
	catalogService  *service.CatalogService
	feedbackService *service.FeedbackService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService, feedbackService *service.FeedbackService) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		feedbackService: feedbackService,
	}
}

// CreateEntityRequest is the request body for adding a dictionary entry
type CreateEntityRequest struct {
	OfficialName string `json:"official_name" binding:"required"`
}

// CreateAliasRequest is the request body for confirming an alternative name
type CreateAliasRequest struct {
	RawName string `json:"raw_name" binding:"required"`
}

// ListEntities returns the dictionary for a domain
func (h *CatalogHandler) ListEntities(c *gin.Context) {
	domain := normalize.Domain(c.Param("domain"))

	entities, err := h.catalogService.ListEntities(c.Request.Context(), domain)
	if err != nil {
		h.sendCatalogError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, entities)
}

// CreateEntity adds a dictionary entry
func (h *CatalogHandler) CreateEntity(c *gin.Context) {
	domain := normalize.Domain(c.Param("domain"))

	var req CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "invalid request body", err.Error())
		return
	}

	entity, err := h.catalogService.CreateEntity(c.Request.Context(), domain, req.OfficialName)
	if err != nil {
		h.sendCatalogError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusCreated, entity)
}

// CreateAlias confirms an alternative name for an entity
func (h *CatalogHandler) CreateAlias(c *gin.Context) {
	entityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		api.SendValidationError(c, "invalid entity id", "")
		return
	}

	var req CreateAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "invalid request body", err.Error())
		return
	}

	alias, err := h.catalogService.ConfirmAlias(c.Request.Context(), entityID, req.RawName)
	if err != nil {
		h.sendCatalogError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusCreated, alias)
}

// ListLearnedAliases returns the learning records pointing at an entity
func (h *CatalogHandler) ListLearnedAliases(c *gin.Context) {
	domain := normalize.Domain(c.Param("domain"))
	entityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		api.SendValidationError(c, "invalid entity id", "")
		return
	}

	records, err := h.feedbackService.LearnedAliases(c.Request.Context(), domain, entityID)
	if err != nil {
		h.sendCatalogError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, records)
}

func (h *CatalogHandler) sendCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownDomain):
		api.SendValidationError(c, "domain must be supplier or bank", "")
	case errors.Is(err, service.ErrNameRequired):
		api.SendValidationError(c, "a non-empty name is required", "")
	case errors.Is(err, db.ErrDuplicate):
		api.SendConflict(c, "an equivalent dictionary entry already exists")
	case errors.Is(err, db.ErrNotFound):
		api.SendNotFound(c, "entity")
	default:
		api.SendInternalError(c, "catalog operation failed")
	}
}
