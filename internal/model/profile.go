package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile represents an authenticated user of an organization. The ID
// doubles as the auth identity; OrgID is nullable only while the
// profile is being provisioned.
type Profile struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(200);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(100);not null"`
	FullName     string    `json:"full_name" gorm:"type:varchar(200)"`
	Phone        string    `json:"phone" gorm:"type:varchar(50)"`
	Role         string    `json:"role" gorm:"type:varchar(20);not null;default:'customer'"`
	OrgID        *string   `json:"org_id" gorm:"type:uuid;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
