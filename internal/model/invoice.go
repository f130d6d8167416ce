package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stored invoice statuses. "pending" is a presentation-only alias of
// "sent" used by the customer portal; it is never persisted.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusVoid    = "void"
)

// Invoice is the billable document derived from a completed work
// order. TotalAmount = Amount + TaxAmount holds on every mutation path
// that sets the three fields. Never deleted once sent.
type Invoice struct {
	ID              string     `json:"id" gorm:"type:uuid;primaryKey"`
	OrgID           string     `json:"org_id" gorm:"type:uuid;not null;uniqueIndex:idx_invoices_org_number"`
	WorkOrderID     string     `json:"work_order_id" gorm:"type:uuid;index;not null"`
	InvoiceNumber   string     `json:"invoice_number" gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_org_number"`
	Amount          float64    `json:"amount" gorm:"not null"`
	TaxAmount       float64    `json:"tax_amount" gorm:"not null"`
	TotalAmount     float64    `json:"total_amount" gorm:"not null"`
	Status          string     `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	DueDate         *time.Time `json:"due_date"`
	PaidAt          *time.Time `json:"paid_at"`
	StripeInvoiceID string     `json:"stripe_invoice_id" gorm:"type:varchar(100)"`
	Notes           string     `json:"notes" gorm:"type:text"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// PresentationStatus maps the stored status to the portal vocabulary.
func (i *Invoice) PresentationStatus() string {
	if i.Status == InvoiceStatusSent {
		return "pending"
	}
	return i.Status
}
