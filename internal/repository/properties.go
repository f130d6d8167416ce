package repository

import (
	"errors"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"gorm.io/gorm"
)

// PropertyRepository provides org-scoped access to property rows.
type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(property *model.Property) error {
	if err := r.db.Create(property).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "failed to create property", err)
	}
	return nil
}

func (r *PropertyRepository) GetInOrg(orgID, id string) (*model.Property, error) {
	var property model.Property
	if err := r.db.First(&property, "id = ? AND org_id = ?", id, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "property not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load property", err)
	}
	return &property, nil
}

func (r *PropertyRepository) ListByOrg(orgID string) ([]model.Property, error) {
	var properties []model.Property
	if err := r.db.Where("org_id = ?", orgID).Order("name").Find(&properties).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list properties", err)
	}
	return properties, nil
}

func (r *PropertyRepository) Update(orgID, id string, updates map[string]interface{}) error {
	result := r.db.Model(&model.Property{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Updates(updates)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to update property", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "property not found")
	}
	return nil
}

func (r *PropertyRepository) Delete(orgID, id string) error {
	result := r.db.Where("id = ? AND org_id = ?", id, orgID).Delete(&model.Property{})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete property", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "property not found")
	}
	return nil
}
