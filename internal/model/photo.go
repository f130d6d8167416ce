package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo is append-only evidence attached to a work-order report.
// The object itself lives in photo storage under FilePath.
type Photo struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	WorkOrderID string    `json:"work_order_id" gorm:"type:uuid;index;not null"`
	FilePath    string    `json:"file_path" gorm:"type:varchar(500);not null"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
