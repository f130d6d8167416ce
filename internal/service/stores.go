package service

import (
	"context"
	"time"

	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/repository"
)

// Actor is the authenticated caller a service operation runs on behalf
// of, resolved from the JWT claims by the handler layer.
type Actor struct {
	ID    string
	OrgID string
	Role  lifecycle.Role
}

// WorkOrderStore is the work-order persistence the services depend on.
type WorkOrderStore interface {
	Create(order *model.WorkOrder) error
	GetInOrg(orgID, id string) (*model.WorkOrder, error)
	GetWithRelations(orgID, id string) (*model.WorkOrder, error)
	ListByOrg(orgID string, filter repository.WorkOrderFilter) ([]model.WorkOrder, error)
	UpdateFields(orgID, id string, updates map[string]interface{}) error
	ReplaceItems(workOrderID string, items []model.WorkOrderItem) error
	ListItems(workOrderID string) ([]model.WorkOrderItem, error)
	AddPhoto(photo *model.Photo) error
	ListPhotos(workOrderID string) ([]model.Photo, error)
}

// ProfileStore resolves profiles for assignment checks.
type ProfileStore interface {
	GetInOrg(orgID, id string) (*model.Profile, error)
}

// PropertyStore resolves properties for work-order creation.
type PropertyStore interface {
	GetInOrg(orgID, id string) (*model.Property, error)
}

// InvoiceStore is the invoice persistence the billing flow depends on.
type InvoiceStore interface {
	Create(invoice *model.Invoice) error
	GetByID(id string) (*model.Invoice, error)
	GetByWorkOrder(orgID, workOrderID string) (*model.Invoice, error)
	ListByOrg(orgID, status string) ([]model.Invoice, error)
	CountForYear(orgID string, year int) (int64, error)
	UpdateFields(orgID, id string, updates map[string]interface{}) error
	MarkPaid(id string, paidAt time.Time) (bool, error)
	MarkOverdue(id string) (bool, error)
}

// OrganizationStore resolves the issuing organization for rendering.
type OrganizationStore interface {
	GetByID(id string) (*model.Organization, error)
}

// SubscriptionStore maintains recurring contracts from provider events.
type SubscriptionStore interface {
	Create(sub *model.Subscription) error
	UpdateFields(id string, updates map[string]interface{}) error
}

// EventStore records webhook deliveries for idempotence and audit.
type EventStore interface {
	Record(event *model.WebhookEvent) (bool, error)
}

// PaymentProvider is the outbound payment-provider surface. Creation
// failures are reported, never roll back local writes.
type PaymentProvider interface {
	CreateInvoice(ctx context.Context, invoice *model.Invoice, org *model.Organization) (string, error)
}

// PhotoStorage is the append-only object store for report photos.
type PhotoStorage interface {
	Save(workOrderID, filename string, data []byte) (string, error)
}
