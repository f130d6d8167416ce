package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription statuses mapped from the payment provider vocabulary.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPastDue   = "past_due"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription is a recurring service contract for a property,
// maintained from payment-provider subscription events.
type Subscription struct {
	ID              string     `json:"id" gorm:"type:uuid;primaryKey"`
	OrgID           string     `json:"org_id" gorm:"type:uuid;index;not null"`
	PropertyID      string     `json:"property_id" gorm:"type:uuid;index;not null"`
	Service         string     `json:"service" gorm:"type:varchar(20);not null"`
	Status          string     `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	FrequencyMonths int        `json:"frequency_months" gorm:"not null;default:6"`
	PricePerService float64    `json:"price_per_service"`
	NextServiceDate *time.Time `json:"next_service_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
