package repository

import (
	"errors"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"gorm.io/gorm"
)

// OrganizationRepository provides access to organization rows.
type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(org *model.Organization) error {
	if err := r.db.Create(org).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "failed to create organization", err)
	}
	return nil
}

func (r *OrganizationRepository) GetByID(id string) (*model.Organization, error) {
	var org model.Organization
	if err := r.db.First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "organization not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load organization", err)
	}
	return &org, nil
}

func (r *OrganizationRepository) Update(id string, updates map[string]interface{}) error {
	result := r.db.Model(&model.Organization{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to update organization", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "organization not found")
	}
	return nil
}
