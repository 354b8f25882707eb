package handlers

import (
	"errors"
	"net/http"

	"guarantee-desk/internal/api"
	"guarantee-desk/internal/scoring"
	"guarantee-desk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// SettingsHandler handles matching-threshold requests
type SettingsHandler struct {
	settingsService *service.SettingsService
	validator       *validator.Validate
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		validator:       validator.New(),
	}
}

// UpdateSettingsRequest is the request body for tuning the thresholds.
// auto_accept must not drop below review, or rows would auto-match with
// scores the operator asked to review.
type UpdateSettingsRequest struct {
	AutoAccept    float64 `json:"auto_accept" binding:"required,gt=0,lte=1" validate:"gtefield=Review"`
	Review        float64 `json:"review" binding:"required,gt=0,lte=1"`
	WeakFloor     float64 `json:"weak_floor" binding:"required,gt=0,lte=1"`
	ConflictDelta float64 `json:"conflict_delta" binding:"gte=0,lte=1"`
	MaxCandidates int     `json:"max_candidates" binding:"required,gte=1,lte=100"`
}

// GetSettings returns the live matching thresholds
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Current(c.Request.Context())
	if err != nil {
		api.SendInternalError(c, "failed to read settings")
		return
	}

	api.SendSuccess(c, http.StatusOK, settings)
}

// UpdateSettings persists new thresholds and makes them live immediately
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		api.SendValidationError(c, "auto_accept must be at or above review", err.Error())
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), scoring.Thresholds{
		AutoAccept:    req.AutoAccept,
		Review:        req.Review,
		WeakFloor:     req.WeakFloor,
		ConflictDelta: req.ConflictDelta,
		MaxCandidates: req.MaxCandidates,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidThresholds) {
			api.SendValidationError(c, "thresholds out of range", "")
			return
		}
		api.SendInternalError(c, "failed to update settings")
		return
	}

	api.SendSuccess(c, http.StatusOK, settings)
}
