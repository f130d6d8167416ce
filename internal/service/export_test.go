package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExportInvoicesAdminOnly(t *testing.T) {
	svc := NewInvoiceService(new(MockInvoiceStore), new(MockWorkOrderStore), new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	_, err := svc.ExportInvoices(dispatcherActor())

	assert.True(t, apperr.Is(err, apperr.AccessDenied))
}

func TestExportInvoicesWorkbookContent(t *testing.T) {
	invoices := new(MockInvoiceStore)
	due := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	invoices.On("ListByOrg", testOrgID, "").Return([]model.Invoice{
		{
			InvoiceNumber: "INV-2025-0001",
			WorkOrderID:   testOrderID,
			Status:        model.InvoiceStatusSent,
			Amount:        116.00,
			TaxAmount:     22.04,
			TotalAmount:   138.04,
			DueDate:       &due,
		},
	}, nil)

	svc := NewInvoiceService(invoices, new(MockWorkOrderStore), new(MockOrganizationStore), nil, testBilling(), zap.NewNop())

	data, err := svc.ExportInvoices(Actor{ID: "admin-1", OrgID: testOrgID, Role: lifecycle.RoleAdmin})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Invoices", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Invoice Number", header)

	number, err := f.GetCellValue("Invoices", "A2")
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-0001", number)

	dueCell, err := f.GetCellValue("Invoices", "G2")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-15", dueCell)
}
