package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WebhookEvent records every accepted payment-provider delivery. The
// unique provider event id is the durable idempotence guard against
// at-least-once delivery; Payload keeps the raw event for audit.
type WebhookEvent struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	ProviderID  string         `json:"provider_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	Type        string         `json:"type" gorm:"type:varchar(100);not null"`
	Payload     datatypes.JSON `json:"payload"`
	ProcessedAt time.Time      `json:"processed_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (e *WebhookEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
