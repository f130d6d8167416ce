package repository

import (
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookEventRepository records payment-provider deliveries. The
// unique provider event id column is the durable replay guard.
type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Record inserts the delivery and reports whether it was seen for the
// first time. Conflicting provider ids are swallowed, not errors: the
// provider retries deliveries.
func (r *WebhookEventRepository) Record(event *model.WebhookEvent) (bool, error) {
	event.ProcessedAt = time.Now().UTC()
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}},
		DoNothing: true,
	}).Create(event)
	if result.Error != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to record webhook event", result.Error)
	}
	return result.RowsAffected > 0, nil
}
