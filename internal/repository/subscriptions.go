package repository

import (
	"errors"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"gorm.io/gorm"
)

// SubscriptionRepository maintains recurring service contracts from
// payment-provider subscription events.
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	if err := r.db.Create(sub).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "failed to create subscription", err)
	}
	return nil
}

func (r *SubscriptionRepository) GetByID(id string) (*model.Subscription, error) {
	var sub model.Subscription
	if err := r.db.First(&sub, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "subscription not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load subscription", err)
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListByOrg(orgID string) ([]model.Subscription, error) {
	var subs []model.Subscription
	if err := r.db.Where("org_id = ?", orgID).Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list subscriptions", err)
	}
	return subs, nil
}

func (r *SubscriptionRepository) UpdateFields(id string, updates map[string]interface{}) error {
	result := r.db.Model(&model.Subscription{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to update subscription", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "subscription not found")
	}
	return nil
}
