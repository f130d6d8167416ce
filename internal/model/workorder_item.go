package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkOrderItem is a billable line on a technician report. The set of
// items is replaced wholesale each time a report is saved.
type WorkOrderItem struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	WorkOrderID string    `json:"work_order_id" gorm:"type:uuid;index;not null"`
	Description string    `json:"description" gorm:"type:varchar(500);not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"not null"`
	Completed   bool      `json:"completed" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TotalPrice is the derived line total.
func (i *WorkOrderItem) TotalPrice() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

func (i *WorkOrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
