package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/pkg/config"
	"github.com/fenstri/fieldservice/prometheus"
	"go.uber.org/zap"
)

// InvoiceService derives invoices from completed work orders and
// renders them to fixed-layout documents.
type InvoiceService struct {
	invoices InvoiceStore
	orders   WorkOrderStore
	orgs     OrganizationStore
	provider PaymentProvider
	billing  config.BillingConfig
	log      *zap.Logger
}

func NewInvoiceService(invoices InvoiceStore, orders WorkOrderStore, orgs OrganizationStore, provider PaymentProvider, billing config.BillingConfig, log *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoices: invoices,
		orders:   orders,
		orgs:     orgs,
		provider: provider,
		billing:  billing,
		log:      log,
	}
}

// Issue derives an invoice from a done work order: the subtotal is the
// sum of line items, tax is applied at the configured rate, and the
// invariant total = amount + tax holds at construction. A provider
// invoice is created best-effort afterwards; its failure leaves the
// local invoice standing.
func (s *InvoiceService) Issue(ctx context.Context, actor Actor, workOrderID string) (*model.Invoice, error) {
	if actor.Role != lifecycle.RoleDispatcher && actor.Role != lifecycle.RoleAdmin {
		return nil, apperr.New(apperr.AccessDenied, "only dispatchers and admins issue invoices")
	}

	order, err := s.orders.GetWithRelations(actor.OrgID, workOrderID)
	if err != nil {
		return nil, err
	}
	if lifecycle.Status(order.Status) != lifecycle.StatusDone {
		return nil, apperr.New(apperr.ConstraintViolation, "work order is not done").WithField("status")
	}
	if _, err := s.invoices.GetByWorkOrder(actor.OrgID, workOrderID); err == nil {
		return nil, apperr.New(apperr.ConstraintViolation, "work order already has an invoice").WithField("work_order_id")
	} else if !apperr.Is(err, apperr.NotFound) {
		return nil, err
	}

	var amount float64
	for _, item := range order.Items {
		amount += item.TotalPrice()
	}
	amount = roundCents(amount)
	tax := roundCents(amount * s.billing.TaxRate)
	total := roundCents(amount + tax)

	number, err := s.nextNumber(actor.OrgID)
	if err != nil {
		return nil, err
	}

	dueDate := time.Now().UTC().AddDate(0, 0, s.billing.DueDays)
	invoice := &model.Invoice{
		OrgID:         actor.OrgID,
		WorkOrderID:   workOrderID,
		InvoiceNumber: number,
		Amount:        amount,
		TaxAmount:     tax,
		TotalAmount:   total,
		Status:        model.InvoiceStatusSent,
		DueDate:       &dueDate,
	}
	if err := s.invoices.Create(invoice); err != nil {
		return nil, err
	}
	prometheus.RecordInvoiceOperation("issue")
	s.log.Info("Invoice issued",
		zap.String("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Float64("total_amount", invoice.TotalAmount))

	// Best-effort provider registration; the local invoice stands even
	// when the provider call fails.
	if s.provider != nil {
		org, err := s.orgs.GetByID(actor.OrgID)
		if err == nil {
			providerID, err := s.provider.CreateInvoice(ctx, invoice, org)
			if err != nil {
				s.log.Warn("Payment provider invoice creation failed",
					zap.String("invoice_id", invoice.ID), zap.Error(err))
			} else if providerID != "" {
				if err := s.invoices.UpdateFields(actor.OrgID, invoice.ID, map[string]interface{}{
					"stripe_invoice_id": providerID,
				}); err == nil {
					invoice.StripeInvoiceID = providerID
				}
			}
		}
	}

	return invoice, nil
}

// List returns the organization's invoices. The portal's "pending"
// filter is a presentation alias of the stored "sent" status.
func (s *InvoiceService) List(actor Actor, status string) ([]model.Invoice, error) {
	if status == "pending" {
		status = model.InvoiceStatusSent
	}
	return s.invoices.ListByOrg(actor.OrgID, status)
}

// Get resolves an invoice, distinguishing a missing invoice from one
// owned by another organization.
func (s *InvoiceService) Get(actor Actor, id string) (*model.Invoice, error) {
	invoice, err := s.invoices.GetByID(id)
	if err != nil {
		return nil, err
	}
	if invoice.OrgID != actor.OrgID {
		return nil, apperr.New(apperr.AccessDenied, "invoice belongs to another organization")
	}
	return invoice, nil
}

// Render resolves invoice, work order, property and organization and
// renders the printable document. Fails with NotFound for a missing
// invoice and AccessDenied on an organization mismatch; it never
// produces a partially-filled document.
func (s *InvoiceService) Render(actor Actor, invoiceID string) ([]byte, error) {
	invoice, err := s.Get(actor, invoiceID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.GetWithRelations(invoice.OrgID, invoice.WorkOrderID)
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.GetByID(invoice.OrgID)
	if err != nil {
		return nil, err
	}

	doc, err := renderInvoiceHTML(s.billing, invoice, order, org)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to render invoice", err)
	}
	prometheus.RecordInvoiceOperation("render")
	return doc, nil
}

// nextNumber allocates a sequential per-organization invoice number,
// e.g. INV-2025-0007.
func (s *InvoiceService) nextNumber(orgID string) (string, error) {
	year := time.Now().UTC().Year()
	count, err := s.invoices.CountForYear(orgID, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%04d", year, count+1), nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
