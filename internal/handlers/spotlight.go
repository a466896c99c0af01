package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/soundcollective/collective-api/internal/errors"
	"github.com/soundcollective/collective-api/internal/middleware"
	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/services"
	"gorm.io/datatypes"
)

type SpotlightHandler struct {
	spotlightService *services.SpotlightService
}

func NewSpotlightHandler(spotlightService *services.SpotlightService) *SpotlightHandler {
	return &SpotlightHandler{spotlightService: spotlightService}
}

// CreateSpotlight features a new musician or venue. The previously featured
// one moves to the previous list.
func (h *SpotlightHandler) CreateSpotlight(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type createSpotlightRequest struct {
		Kind        models.SpotlightKind `json:"kind" binding:"required"`
		Name        string               `json:"name" binding:"required"`
		Description string               `json:"description"`
		ImageURL    string               `json:"image_url"`
		Links       datatypes.JSON       `json:"links"`
		Stats       datatypes.JSON       `json:"stats"`
	}
	var req createSpotlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Kind and name are required")
		return
	}

	spotlight, err := h.spotlightService.Create(services.CreateSpotlightInput{
		Kind:        req.Kind,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Links:       req.Links,
		Stats:       req.Stats,
		CreatorID:   userID,
	})
	if err != nil {
		respondSpotlightError(c, err)
		return
	}

	c.JSON(http.StatusCreated, spotlight)
}

// GetCurrent returns the currently featured spotlight
func (h *SpotlightHandler) GetCurrent(c *gin.Context) {
	spotlight, err := h.spotlightService.GetCurrent()
	if err != nil {
		respondSpotlightError(c, err)
		return
	}
	c.JSON(http.StatusOK, spotlight)
}

// GetPrevious returns previously featured spotlights, newest first
func (h *SpotlightHandler) GetPrevious(c *gin.Context) {
	spotlights, err := h.spotlightService.GetPrevious()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch spotlights")
		return
	}
	c.JSON(http.StatusOK, gin.H{"spotlights": spotlights})
}

// GetSpotlight returns one spotlight by ID
func (h *SpotlightHandler) GetSpotlight(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	spotlight, err := h.spotlightService.GetByID(id)
	if err != nil {
		respondSpotlightError(c, err)
		return
	}
	c.JSON(http.StatusOK, spotlight)
}

func respondSpotlightError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSpotlightNotFound),
		errors.Is(err, services.ErrNoCurrentSpotlight):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrSpotlightNameRequired),
		errors.Is(err, services.ErrInvalidSpotlightKind):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
