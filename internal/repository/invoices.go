package repository

import (
	"errors"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"gorm.io/gorm"
)

// InvoiceRepository provides access to invoice rows. Portal reads are
// org-scoped; the webhook path resolves by id only, since provider
// events carry no organization context.
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(invoice *model.Invoice) error {
	if err := r.db.Create(invoice).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "failed to create invoice", err)
	}
	return nil
}

func (r *InvoiceRepository) GetInOrg(orgID, id string) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.First(&invoice, "id = ? AND org_id = ?", id, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "invoice not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load invoice", err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByID(id string) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "invoice not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load invoice", err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByWorkOrder(orgID, workOrderID string) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.db.First(&invoice, "work_order_id = ? AND org_id = ?", workOrderID, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "invoice not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load invoice", err)
	}
	return &invoice, nil
}

func (r *InvoiceRepository) ListByOrg(orgID, status string) ([]model.Invoice, error) {
	query := r.db.Where("org_id = ?", orgID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var invoices []model.Invoice
	if err := query.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list invoices", err)
	}
	return invoices, nil
}

// CountForYear counts the organization's invoices issued in a calendar
// year, used for sequential invoice numbering.
func (r *InvoiceRepository) CountForYear(orgID string, year int) (int64, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var count int64
	err := r.db.Model(&model.Invoice{}).
		Where("org_id = ? AND created_at >= ? AND created_at < ?", orgID, start, end).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to count invoices", err)
	}
	return count, nil
}

func (r *InvoiceRepository) UpdateFields(orgID, id string, updates map[string]interface{}) error {
	result := r.db.Model(&model.Invoice{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Updates(updates)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to update invoice", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "invoice not found")
	}
	return nil
}

// MarkPaid sets an invoice to paid unless it already is. The guard
// makes payment-succeeded replays no-ops: paid_at keeps the time the
// first event was applied. Returns false when nothing changed.
func (r *InvoiceRepository) MarkPaid(id string, paidAt time.Time) (bool, error) {
	result := r.db.Model(&model.Invoice{}).
		Where("id = ? AND status <> ?", id, model.InvoiceStatusPaid).
		Updates(map[string]interface{}{
			"status":  model.InvoiceStatusPaid,
			"paid_at": paidAt,
		})
	if result.Error != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to mark invoice paid", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkOverdue flags a failed payment. A paid or voided invoice never
// regresses: a stale failure event arriving after payment is ignored.
func (r *InvoiceRepository) MarkOverdue(id string) (bool, error) {
	result := r.db.Model(&model.Invoice{}).
		Where("id = ? AND status NOT IN ?", id, []string{model.InvoiceStatusPaid, model.InvoiceStatusVoid}).
		Update("status", model.InvoiceStatusOverdue)
	if result.Error != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to mark invoice overdue", result.Error)
	}
	return result.RowsAffected > 0, nil
}
