package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service kinds offered on a work order.
const (
	ServiceMaintenance = "maintenance"
	ServiceRepair      = "repair"
	ServiceInspection  = "inspection"
)

// Work-order priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// WorkOrder is a unit of requested or performed service against a
// property. Status moves through the lifecycle state machine; the
// report fields are filled by the assigned technician on completion.
type WorkOrder struct {
	ID          string  `json:"id" gorm:"type:uuid;primaryKey"`
	OrgID       string  `json:"org_id" gorm:"type:uuid;index;not null"`
	PropertyID  string  `json:"property_id" gorm:"type:uuid;index;not null"`
	Service     string  `json:"service" gorm:"type:varchar(20);not null"`
	Description string  `json:"description" gorm:"type:text;not null"`
	Status      string  `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	Priority    string  `json:"priority" gorm:"type:varchar(10);not null;default:'medium'"`
	AssignedTo  *string `json:"assigned_to" gorm:"type:uuid;index"`

	ScheduledAt    *time.Time `json:"scheduled_at"`
	PreferredStart *time.Time `json:"preferred_start"`
	PreferredEnd   *time.Time `json:"preferred_end"`
	CreatedBy      string     `json:"created_by" gorm:"type:uuid;not null"`

	// Completion report
	WorkPerformed     string     `json:"work_performed" gorm:"type:text"`
	MaterialsUsed     string     `json:"materials_used" gorm:"type:text"`
	TimeSpent         string     `json:"time_spent" gorm:"type:varchar(50)"`
	IssuesFound       string     `json:"issues_found" gorm:"type:text"`
	Recommendations   string     `json:"recommendations" gorm:"type:text"`
	CustomerSignature bool       `json:"customer_signature" gorm:"default:false"`
	CompletedAt       *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations (optional for GORM to preload)
	Property *Property       `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Items    []WorkOrderItem `json:"items,omitempty" gorm:"foreignKey:WorkOrderID"`
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
