package repository

import (
	"errors"
	"strings"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"gorm.io/gorm"
)

// ProfileRepository provides access to profile rows. Every org-facing
// method takes the caller's organization id explicitly; there is no
// unscoped query path for profiles of other tenants.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a profile. The unique email index makes provisioning
// exactly-once: a second insert for the same address fails.
func (r *ProfileRepository) Create(profile *model.Profile) error {
	if err := r.db.Create(profile).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			return apperr.New(apperr.ConstraintViolation, "email already registered").WithField("email")
		}
		return apperr.Wrap(apperr.Internal, "failed to create profile", err)
	}
	return nil
}

// GetByEmail is used by login only.
func (r *ProfileRepository) GetByEmail(email string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.First(&profile, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "profile not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load profile", err)
	}
	return &profile, nil
}

// GetByID is used by the auth layer to resolve the caller itself.
func (r *ProfileRepository) GetByID(id string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "profile not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load profile", err)
	}
	return &profile, nil
}

// GetInOrg resolves a profile visible to the given organization.
func (r *ProfileRepository) GetInOrg(orgID, id string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.First(&profile, "id = ? AND org_id = ?", id, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "profile not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load profile", err)
	}
	return &profile, nil
}

// ListByOrg lists the organization's profiles, optionally filtered by role.
func (r *ProfileRepository) ListByOrg(orgID, role string) ([]model.Profile, error) {
	query := r.db.Where("org_id = ?", orgID)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var profiles []model.Profile
	if err := query.Order("full_name").Find(&profiles).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list profiles", err)
	}
	return profiles, nil
}

// Update applies field updates to a profile within the organization.
func (r *ProfileRepository) Update(orgID, id string, updates map[string]interface{}) error {
	result := r.db.Model(&model.Profile{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Updates(updates)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to update profile", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "profile not found")
	}
	return nil
}

// Delete removes a profile row within the organization.
func (r *ProfileRepository) Delete(orgID, id string) error {
	result := r.db.Where("id = ? AND org_id = ?", id, orgID).Delete(&model.Profile{})
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to delete profile", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "profile not found")
	}
	return nil
}
