package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization is the tenant boundary. Every other entity is scoped to
// exactly one organization.
type Organization struct {
	ID               string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name             string    `json:"name" gorm:"type:varchar(200);not null"`
	CountryCode      string    `json:"country_code" gorm:"type:varchar(2);default:'DE'"`
	AddressLine1     string    `json:"address_line1" gorm:"type:varchar(200)"`
	AddressLine2     string    `json:"address_line2" gorm:"type:varchar(200)"`
	City             string    `json:"city" gorm:"type:varchar(100)"`
	PostalCode       string    `json:"postal_code" gorm:"type:varchar(20)"`
	Country          string    `json:"country" gorm:"type:varchar(100)"`
	Phone            string    `json:"phone" gorm:"type:varchar(50)"`
	Email            string    `json:"email" gorm:"type:varchar(200)"`
	TaxID            string    `json:"tax_id" gorm:"type:varchar(50)"`
	StripeCustomerID string    `json:"stripe_customer_id" gorm:"type:varchar(100)"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
