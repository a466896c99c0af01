package repository

import (
	"time"

	"github.com/soundcollective/collective-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSpotlightRepository is a GORM implementation of SpotlightRepository
type GormSpotlightRepository struct {
	db *gorm.DB
}

// NewSpotlightRepository creates a new SpotlightRepository
func NewSpotlightRepository(db *gorm.DB) SpotlightRepository {
	return &GormSpotlightRepository{db: db}
}

// CreateAsCurrent makes the new spotlight the single current one. The flip of
// the previous current rows and the insert share a transaction; the current
// rows are locked first so concurrent creates serialize instead of both
// flipping zero rows under read committed.
func (r *GormSpotlightRepository) CreateAsCurrent(spotlight *models.Spotlight) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var currentIDs []uint64
		if err := tx.Model(&models.Spotlight{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("is_current = ?", true).
			Pluck("id", &currentIDs).Error; err != nil {
			return err
		}

		if len(currentIDs) > 0 {
			if err := tx.Model(&models.Spotlight{}).
				Where("id IN ?", currentIDs).
				Updates(map[string]interface{}{
					"is_current": false,
					"updated_at": time.Now(),
				}).Error; err != nil {
				return err
			}
		}

		spotlight.IsCurrent = true
		return tx.Create(spotlight).Error
	})
}

// FindCurrent returns the row flagged current
func (r *GormSpotlightRepository) FindCurrent() (*models.Spotlight, error) {
	var spotlight models.Spotlight
	if err := r.db.Preload("Creator").Where("is_current = ?", true).First(&spotlight).Error; err != nil {
		return nil, err
	}
	return &spotlight, nil
}

// ListPrevious returns non-current spotlights, newest first
func (r *GormSpotlightRepository) ListPrevious() ([]models.Spotlight, error) {
	var spotlights []models.Spotlight
	err := r.db.Preload("Creator").
		Where("is_current = ?", false).
		Order("created_at DESC").
		Find(&spotlights).Error
	return spotlights, err
}

// FindByID finds a spotlight by ID
func (r *GormSpotlightRepository) FindByID(id uint64) (*models.Spotlight, error) {
	var spotlight models.Spotlight
	if err := r.db.Preload("Creator").First(&spotlight, id).Error; err != nil {
		return nil, err
	}
	return &spotlight, nil
}
