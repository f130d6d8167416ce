package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Property is a customer site work orders are carried out at.
type Property struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	OrgID        string    `json:"org_id" gorm:"type:uuid;index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(200);not null"`
	AddressLine1 string    `json:"address_line1" gorm:"type:varchar(200);not null"`
	AddressLine2 string    `json:"address_line2" gorm:"type:varchar(200)"`
	City         string    `json:"city" gorm:"type:varchar(100);not null"`
	PostalCode   string    `json:"postal_code" gorm:"type:varchar(20);not null"`
	Country      string    `json:"country" gorm:"type:varchar(100);default:'Deutschland'"`
	ContactName  string    `json:"contact_name" gorm:"type:varchar(200)"`
	ContactPhone string    `json:"contact_phone" gorm:"type:varchar(50)"`
	ContactEmail string    `json:"contact_email" gorm:"type:varchar(200)"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
