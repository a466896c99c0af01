package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soundcollective/collective-api/internal/models"
	"github.com/soundcollective/collective-api/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSpotlightNotFound     = errors.New("spotlight not found")
	ErrNoCurrentSpotlight    = errors.New("no current spotlight")
	ErrSpotlightNameRequired = errors.New("spotlight name is required")
	ErrInvalidSpotlightKind  = errors.New("spotlight kind must be musician or venue")
)

// SpotlightService handles the featured musician/venue record.
type SpotlightService struct {
	spotlightRepo repository.SpotlightRepository
}

// NewSpotlightService creates a new SpotlightService.
func NewSpotlightService(spotlightRepo repository.SpotlightRepository) *SpotlightService {
	return &SpotlightService{spotlightRepo: spotlightRepo}
}

// CreateSpotlightInput represents input for featuring a new spotlight.
type CreateSpotlightInput struct {
	Kind        models.SpotlightKind
	Name        string
	Description string
	ImageURL    string
	Links       datatypes.JSON
	Stats       datatypes.JSON
	CreatorID   uint64
}

// Create features a new spotlight. The previous current row, if any, is
// flipped to non-current in the same transaction as the insert, so there is
// never more than one current row.
func (s *SpotlightService) Create(input CreateSpotlightInput) (*models.Spotlight, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrSpotlightNameRequired
	}
	switch input.Kind {
	case models.SpotlightMusician, models.SpotlightVenue:
	default:
		return nil, ErrInvalidSpotlightKind
	}

	spotlight := &models.Spotlight{
		Kind:        input.Kind,
		Name:        input.Name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Links:       input.Links,
		Stats:       input.Stats,
		CreatorID:   input.CreatorID,
	}
	if err := s.spotlightRepo.CreateAsCurrent(spotlight); err != nil {
		return nil, fmt.Errorf("failed to create spotlight: %w", err)
	}
	return spotlight, nil
}

// GetCurrent returns the spotlight currently featured.
func (s *SpotlightService) GetCurrent() (*models.Spotlight, error) {
	spotlight, err := s.spotlightRepo.FindCurrent()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCurrentSpotlight
		}
		return nil, fmt.Errorf("failed to find current spotlight: %w", err)
	}
	return spotlight, nil
}

// GetPrevious returns previously featured spotlights, newest first.
func (s *SpotlightService) GetPrevious() ([]models.Spotlight, error) {
	return s.spotlightRepo.ListPrevious()
}

// GetByID returns one spotlight.
func (s *SpotlightService) GetByID(id uint64) (*models.Spotlight, error) {
	spotlight, err := s.spotlightRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpotlightNotFound
		}
		return nil, fmt.Errorf("failed to find spotlight: %w", err)
	}
	return spotlight, nil
}
