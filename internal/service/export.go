package service

import (
	"fmt"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/prometheus"
	"github.com/xuri/excelize/v2"
)

// invoiceExportHeader is the column layout of the invoice export.
var invoiceExportHeader = []string{
	"Invoice Number",
	"Work Order",
	"Status",
	"Amount",
	"Tax",
	"Total",
	"Due Date",
	"Paid At",
	"Created",
}

// ExportInvoices produces an .xlsx workbook of the organization's
// invoices for the admin portal.
func (s *InvoiceService) ExportInvoices(actor Actor) ([]byte, error) {
	if actor.Role != lifecycle.RoleAdmin {
		return nil, apperr.New(apperr.AccessDenied, "only admins export invoices")
	}

	invoices, err := s.invoices.ListByOrg(actor.OrgID, "")
	if err != nil {
		return nil, err
	}

	data, err := buildInvoiceWorkbook(invoices)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to build workbook", err)
	}
	prometheus.RecordInvoiceOperation("export")
	return data, nil
}

func buildInvoiceWorkbook(invoices []model.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	// No deferred Close here, WriteToBuffer needs the file open.

	const sheetName = "Invoices"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, header := range invoiceExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, err
		}
	}

	for row, invoice := range invoices {
		values := []interface{}{
			invoice.InvoiceNumber,
			invoice.WorkOrderID,
			invoice.Status,
			invoice.Amount,
			invoice.TaxAmount,
			invoice.TotalAmount,
			timeCell(invoice.DueDate),
			timeCell(invoice.PaidAt),
			invoice.CreatedAt.Format("2006-01-02"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func timeCell(t *time.Time) interface{} {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
