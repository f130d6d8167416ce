package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBilling() config.BillingConfig {
	return config.BillingConfig{
		IssuerName:    "Fenstri GmbH",
		IssuerTagline: "Professioneller Fensterservice",
		IssuerAddress: "Musterstraße 123",
		IssuerCity:    "10115 Berlin",
		IssuerCountry: "Deutschland",
		IBAN:          "DE12 3456 7890 1234 5678 90",
		BIC:           "DEUTDEFF",
		TaxRate:       0.19,
		DueDays:       14,
	}
}

func doneOrderWithItems() *model.WorkOrder {
	order := assignedOrder(string(lifecycle.StatusDone))
	order.Items = []model.WorkOrderItem{
		{Description: "Dichtung erneuern", Quantity: 2, UnitPrice: 45.50},
		{Description: "Anfahrt", Quantity: 1, UnitPrice: 25.00},
	}
	return order
}

func TestIssueDerivesAmounts(t *testing.T) {
	invoices := new(MockInvoiceStore)
	orders := new(MockWorkOrderStore)

	orders.On("GetWithRelations", testOrgID, testOrderID).Return(doneOrderWithItems(), nil)
	invoices.On("GetByWorkOrder", testOrgID, testOrderID).
		Return(nil, apperr.New(apperr.NotFound, "invoice not found"))
	invoices.On("CountForYear", testOrgID, time.Now().UTC().Year()).Return(int64(6), nil)
	invoices.On("Create", mock.AnythingOfType("*model.Invoice")).Return(nil)

	svc := NewInvoiceService(invoices, orders, new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	invoice, err := svc.Issue(context.Background(), dispatcherActor(), testOrderID)

	require.NoError(t, err)
	// 2 * 45.50 + 25.00 = 116.00, 19% tax = 22.04
	assert.Equal(t, 116.00, invoice.Amount)
	assert.Equal(t, 22.04, invoice.TaxAmount)
	assert.Equal(t, 138.04, invoice.TotalAmount)
	assert.Equal(t, invoice.Amount+invoice.TaxAmount, invoice.TotalAmount)
	assert.Equal(t, fmt.Sprintf("INV-%d-0007", time.Now().UTC().Year()), invoice.InvoiceNumber)
	assert.Equal(t, model.InvoiceStatusSent, invoice.Status)
	require.NotNil(t, invoice.DueDate)
	invoices.AssertExpectations(t)
}

func TestIssueRequiresDoneOrder(t *testing.T) {
	invoices := new(MockInvoiceStore)
	orders := new(MockWorkOrderStore)

	orders.On("GetWithRelations", testOrgID, testOrderID).
		Return(assignedOrder(string(lifecycle.StatusInProgress)), nil)

	svc := NewInvoiceService(invoices, orders, new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	_, err := svc.Issue(context.Background(), dispatcherActor(), testOrderID)

	assert.True(t, apperr.Is(err, apperr.ConstraintViolation))
	invoices.AssertNotCalled(t, "Create", mock.Anything)
}

func TestIssueRejectsDuplicateInvoice(t *testing.T) {
	invoices := new(MockInvoiceStore)
	orders := new(MockWorkOrderStore)

	orders.On("GetWithRelations", testOrgID, testOrderID).Return(doneOrderWithItems(), nil)
	invoices.On("GetByWorkOrder", testOrgID, testOrderID).
		Return(&model.Invoice{ID: "inv-1", WorkOrderID: testOrderID}, nil)

	svc := NewInvoiceService(invoices, orders, new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	_, err := svc.Issue(context.Background(), dispatcherActor(), testOrderID)

	assert.True(t, apperr.Is(err, apperr.ConstraintViolation))
}

func TestIssueDeniedForTechnician(t *testing.T) {
	svc := NewInvoiceService(new(MockInvoiceStore), new(MockWorkOrderStore), new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	_, err := svc.Issue(context.Background(), technicianActor(), testOrderID)

	assert.True(t, apperr.Is(err, apperr.AccessDenied))
}

func TestIssueSurvivesProviderFailure(t *testing.T) {
	invoices := new(MockInvoiceStore)
	orders := new(MockWorkOrderStore)
	orgs := new(MockOrganizationStore)
	provider := new(MockPaymentProvider)

	orders.On("GetWithRelations", testOrgID, testOrderID).Return(doneOrderWithItems(), nil)
	invoices.On("GetByWorkOrder", testOrgID, testOrderID).
		Return(nil, apperr.New(apperr.NotFound, "invoice not found"))
	invoices.On("CountForYear", testOrgID, mock.Anything).Return(int64(0), nil)
	invoices.On("Create", mock.AnythingOfType("*model.Invoice")).Return(nil)
	orgs.On("GetByID", testOrgID).Return(&model.Organization{ID: testOrgID}, nil)
	provider.On("CreateInvoice", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("provider down"))

	svc := NewInvoiceService(invoices, orders, orgs, provider, testBilling(), zap.NewNop())

	invoice, err := svc.Issue(context.Background(), dispatcherActor(), testOrderID)

	require.NoError(t, err)
	assert.Empty(t, invoice.StripeInvoiceID)
	invoices.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssueRecordsProviderInvoiceID(t *testing.T) {
	invoices := new(MockInvoiceStore)
	orders := new(MockWorkOrderStore)
	orgs := new(MockOrganizationStore)
	provider := new(MockPaymentProvider)

	orders.On("GetWithRelations", testOrgID, testOrderID).Return(doneOrderWithItems(), nil)
	invoices.On("GetByWorkOrder", testOrgID, testOrderID).
		Return(nil, apperr.New(apperr.NotFound, "invoice not found"))
	invoices.On("CountForYear", testOrgID, mock.Anything).Return(int64(0), nil)
	invoices.On("Create", mock.AnythingOfType("*model.Invoice")).Return(nil)
	orgs.On("GetByID", testOrgID).Return(&model.Organization{ID: testOrgID, StripeCustomerID: "cus_1"}, nil)
	provider.On("CreateInvoice", mock.Anything, mock.Anything, mock.Anything).Return("in_abc", nil)
	invoices.On("UpdateFields", testOrgID, mock.Anything, map[string]interface{}{
		"stripe_invoice_id": "in_abc",
	}).Return(nil)

	svc := NewInvoiceService(invoices, orders, orgs, provider, testBilling(), zap.NewNop())

	invoice, err := svc.Issue(context.Background(), dispatcherActor(), testOrderID)

	require.NoError(t, err)
	assert.Equal(t, "in_abc", invoice.StripeInvoiceID)
	invoices.AssertExpectations(t)
}

func TestListMapsPendingFilter(t *testing.T) {
	invoices := new(MockInvoiceStore)
	invoices.On("ListByOrg", testOrgID, model.InvoiceStatusSent).
		Return([]model.Invoice{}, nil)

	svc := NewInvoiceService(invoices, new(MockWorkOrderStore), new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	_, err := svc.List(dispatcherActor(), "pending")

	require.NoError(t, err)
	invoices.AssertExpectations(t)
}

func TestGetCrossOrgDenied(t *testing.T) {
	invoices := new(MockInvoiceStore)
	invoices.On("GetByID", "inv-1").
		Return(&model.Invoice{ID: "inv-1", OrgID: "other-org"}, nil)

	svc := NewInvoiceService(invoices, new(MockWorkOrderStore), new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	_, err := svc.Get(dispatcherActor(), "inv-1")

	assert.True(t, apperr.Is(err, apperr.AccessDenied))
}

func TestRenderMissingInvoice(t *testing.T) {
	invoices := new(MockInvoiceStore)
	invoices.On("GetByID", "inv-missing").
		Return(nil, apperr.New(apperr.NotFound, "invoice not found"))

	svc := NewInvoiceService(invoices, new(MockWorkOrderStore), new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	_, err := svc.Render(dispatcherActor(), "inv-missing")

	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestRenderProducesCompleteDocument(t *testing.T) {
	invoices := new(MockInvoiceStore)
	orders := new(MockWorkOrderStore)
	orgs := new(MockOrganizationStore)

	due := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	invoices.On("GetByID", "inv-1").Return(&model.Invoice{
		ID:            "inv-1",
		OrgID:         testOrgID,
		WorkOrderID:   testOrderID,
		InvoiceNumber: "INV-2025-0007",
		Amount:        116.00,
		TaxAmount:     22.04,
		TotalAmount:   138.04,
		Status:        model.InvoiceStatusSent,
		DueDate:       &due,
	}, nil)

	order := doneOrderWithItems()
	order.Property = &model.Property{
		Name:         "Bürohaus Mitte",
		AddressLine1: "Hauptstraße 1",
		City:         "Berlin",
		PostalCode:   "10117",
	}
	orders.On("GetWithRelations", testOrgID, testOrderID).Return(order, nil)
	orgs.On("GetByID", testOrgID).Return(&model.Organization{ID: testOrgID, Name: "Hausverwaltung Nord"}, nil)

	svc := NewInvoiceService(invoices, orders, orgs, nil, testBilling(), zap.NewNop())

	doc, err := svc.Render(dispatcherActor(), "inv-1")

	require.NoError(t, err)
	html := string(doc)
	assert.Contains(t, html, "INV-2025-0007")
	assert.Contains(t, html, "Fenstri GmbH")
	assert.Contains(t, html, "Bürohaus Mitte")
	assert.Contains(t, html, "Dichtung erneuern")
	assert.Contains(t, html, "MwSt")
	assert.Contains(t, html, "138,04")
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 22.04, roundCents(116.00*0.19))
	assert.Equal(t, 0.1, roundCents(0.1))
	assert.Equal(t, 1.24, roundCents(1.236))
}
