package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/service"
	"github.com/fenstri/fieldservice/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InvoiceHandler exposes invoice issuance, listing and document
// rendering for the office portals.
type InvoiceHandler struct {
	invoices *service.InvoiceService
}

func NewInvoiceHandler(invoices *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Issue derives an invoice from a completed work order.
func (h *InvoiceHandler) Issue(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req struct {
		WorkOrderID string `json:"work_order_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse invoice request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.WorkOrderID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "work_order_id is required"})
	}

	invoice, err := h.invoices.Issue(c.Request().Context(), actor, req.WorkOrderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, invoice)
}

// List returns the organization's invoices. Stored statuses are mapped
// to their portal labels.
func (h *InvoiceHandler) List(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	invoices, err := h.invoices.List(actor, c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}

	views := make([]echo.Map, 0, len(invoices))
	for i := range invoices {
		views = append(views, invoiceView(&invoices[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"invoices": views, "count": len(views)})
}

// Get returns one invoice.
func (h *InvoiceHandler) Get(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	invoice, err := h.invoices.Get(actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, invoiceView(invoice))
}

// Render returns the printable invoice document. Any failure yields a
// 400 with an error body; a success is always the complete document.
func (h *InvoiceHandler) Render(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	doc, err := h.invoices.Render(actor, c.Param("id"))
	if err != nil {
		logger.FromEcho(c).Warn("Invoice render failed",
			zap.String("invoice_id", c.Param("id")), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to generate invoice"})
	}
	return c.HTMLBlob(http.StatusOK, doc)
}

// Export streams the organization's invoices as an .xlsx workbook.
func (h *InvoiceHandler) Export(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	data, err := h.invoices.ExportInvoices(actor)
	if err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("invoices-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// invoiceView maps an invoice row onto the portal representation,
// replacing the stored "sent" status with the label "pending".
func invoiceView(invoice *model.Invoice) echo.Map {
	return echo.Map{
		"id":                invoice.ID,
		"work_order_id":     invoice.WorkOrderID,
		"invoice_number":    invoice.InvoiceNumber,
		"amount":            invoice.Amount,
		"tax_amount":        invoice.TaxAmount,
		"total_amount":      invoice.TotalAmount,
		"status":            invoice.PresentationStatus(),
		"due_date":          invoice.DueDate,
		"paid_at":           invoice.PaidAt,
		"stripe_invoice_id": invoice.StripeInvoiceID,
		"created_at":        invoice.CreatedAt,
	}
}
