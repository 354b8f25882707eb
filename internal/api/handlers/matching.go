package handlers

import (
	"errors"
	"net/http"

	"guarantee-desk/internal/api"
	"guarantee-desk/internal/normalize"
	"guarantee-desk/internal/service"

	"github.com/gin-gonic/gin"
)

// MatchingHandler handles candidate lookup, match decisions and operator
// feedback for guarantee rows
type MatchingHandler struct {
	candidateService *service.CandidateService
	matchService     *service.MatchService
	feedbackService  *service.FeedbackService
}

// NewMatchingHandler creates a new matching handler
func NewMatchingHandler(candidateService *service.CandidateService, matchService *service.MatchService, feedbackService *service.FeedbackService) *MatchingHandler {
	return &MatchingHandler{
		candidateService: candidateService,
		matchService:     matchService,
		feedbackService:  feedbackService,
	}
}

// SubmitDecisionRequest is the request body for operator feedback on one row
type SubmitDecisionRequest struct {
	RawName           string  `json:"raw_name" binding:"required"`
	Domain            string  `json:"domain" binding:"required,oneof=supplier bank"`
	ChosenEntityID    int64   `json:"chosen_entity_id"`
	RejectedEntityIDs []int64 `json:"rejected_entity_ids"`
}

// GetCandidates returns the ranked candidate list for a raw name
func (h *MatchingHandler) GetCandidates(c *gin.Context) {
	rawName := c.Query("name")
	if rawName == "" {
		api.SendValidationError(c, "name query parameter is required", "")
		return
	}
	domain := normalize.Domain(c.Query("domain"))

	candidates, err := h.candidateService.Candidates(c.Request.Context(), rawName, domain)
	if err != nil {
		h.sendMatchingError(c, err)
		return
	}
	if candidates == nil {
		candidates = []service.Candidate{}
	}

	api.SendSuccess(c, http.StatusOK, candidates)
}

// BatchCandidatesRequest is the request body for resolving a page of
// spreadsheet rows in one call
type BatchCandidatesRequest struct {
	Names  []string `json:"names" binding:"required,min=1,max=500"`
	Domain string   `json:"domain" binding:"required,oneof=supplier bank"`
}

// GetBatchCandidates resolves many raw names at once, computing each
// distinct canonical key a single time
func (h *MatchingHandler) GetBatchCandidates(c *gin.Context) {
	var req BatchCandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "invalid request body", err.Error())
		return
	}

	results, err := h.candidateService.CandidatesForAll(c.Request.Context(),
		req.Names, normalize.Domain(req.Domain))
	if err != nil {
		h.sendMatchingError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, results)
}

// GetMatchDecision returns the automatic decision for a raw name
func (h *MatchingHandler) GetMatchDecision(c *gin.Context) {
	rawName := c.Query("name")
	if rawName == "" {
		api.SendValidationError(c, "name query parameter is required", "")
		return
	}
	domain := normalize.Domain(c.Query("domain"))

	decision, err := h.matchService.Match(c.Request.Context(), rawName, domain)
	if err != nil {
		h.sendMatchingError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusOK, decision)
}

// SubmitDecision records operator feedback: one confirmed entity and any
// number of rejected suggestions
func (h *MatchingHandler) SubmitDecision(c *gin.Context) {
	var req SubmitDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	if req.ChosenEntityID == 0 && len(req.RejectedEntityIDs) == 0 {
		api.SendValidationError(c, "a chosen entity or at least one rejected entity is required", "")
		return
	}

	err := h.feedbackService.RecordDecision(c.Request.Context(), req.RawName,
		normalize.Domain(req.Domain), req.ChosenEntityID, req.RejectedEntityIDs)
	if err != nil {
		h.sendMatchingError(c, err)
		return
	}

	api.SendSuccess(c, http.StatusNoContent, nil)
}

// sendMatchingError maps engine errors onto distinct API codes so the UI
// can tell "no match" from "system degraded"
func (h *MatchingHandler) sendMatchingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownDomain):
		api.SendValidationError(c, "domain must be supplier or bank", "")
	case errors.Is(err, service.ErrEmptyName):
		api.SendValidationError(c, "name normalizes to an empty key", "")
	case errors.Is(err, service.ErrCatalogUnavailable):
		api.SendCatalogUnavailable(c)
	case errors.Is(err, service.ErrLearningDegraded):
		api.SendLearningDegraded(c)
	default:
		api.SendInternalError(c, "matching failed")
	}
}
