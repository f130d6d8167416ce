package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/repository"
	"github.com/fenstri/fieldservice/internal/service"
	"github.com/fenstri/fieldservice/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxPhotoSize caps a single report photo upload.
const maxPhotoSize = 10 << 20

// WorkOrderHandler exposes work-order creation, assignment, lifecycle
// transitions and technician reports.
type WorkOrderHandler struct {
	orders *service.WorkOrderService
}

func NewWorkOrderHandler(orders *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{orders: orders}
}

// Create opens a new work order in draft.
func (h *WorkOrderHandler) Create(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req struct {
		PropertyID     string     `json:"property_id"`
		Service        string     `json:"service"`
		Description    string     `json:"description"`
		Priority       string     `json:"priority"`
		PreferredStart *time.Time `json:"preferred_start"`
		PreferredEnd   *time.Time `json:"preferred_end"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse work order request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	order, err := h.orders.Create(actor, service.CreateWorkOrderInput{
		PropertyID:     req.PropertyID,
		Service:        req.Service,
		Description:    req.Description,
		Priority:       req.Priority,
		PreferredStart: req.PreferredStart,
		PreferredEnd:   req.PreferredEnd,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// List returns the work orders visible to the caller, optionally
// filtered by status, priority or assignee.
func (h *WorkOrderHandler) List(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	filter := repository.WorkOrderFilter{
		Status:     c.QueryParam("status"),
		Priority:   c.QueryParam("priority"),
		AssignedTo: c.QueryParam("assigned_to"),
		CreatedBy:  c.QueryParam("created_by"),
	}
	orders, err := h.orders.List(actor, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"work_orders": orders, "count": len(orders)})
}

// Get returns one work order with its property and line items.
func (h *WorkOrderHandler) Get(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	order, err := h.orders.Get(actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Assign sets the technician on a work order, scheduling it when it is
// still a draft.
func (h *WorkOrderHandler) Assign(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req struct {
		AssignedTo  string     `json:"assigned_to"`
		ScheduledAt *time.Time `json:"scheduled_at"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse assignment request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.AssignedTo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "assigned_to is required"})
	}

	order, err := h.orders.Assign(actor, c.Param("id"), req.AssignedTo, req.ScheduledAt)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus moves a work order to the requested status under the
// lifecycle guard.
func (h *WorkOrderHandler) UpdateStatus(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse status request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	order, err := h.orders.Transition(actor, c.Param("id"), lifecycle.Status(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// SaveReport stores the technician's completion report and replaces
// the work order's line items.
func (h *WorkOrderHandler) SaveReport(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req struct {
		WorkPerformed     string `json:"work_performed"`
		MaterialsUsed     string `json:"materials_used"`
		TimeSpent         string `json:"time_spent"`
		IssuesFound       string `json:"issues_found"`
		Recommendations   string `json:"recommendations"`
		CustomerSignature bool   `json:"customer_signature"`
		Items             []struct {
			Description string  `json:"description"`
			Quantity    int     `json:"quantity"`
			UnitPrice   float64 `json:"unit_price"`
			Completed   bool    `json:"completed"`
		} `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse report request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	items := make([]model.WorkOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.WorkOrderItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Completed:   item.Completed,
		})
	}

	order, err := h.orders.SaveReport(actor, c.Param("id"), service.ReportInput{
		WorkPerformed:     req.WorkPerformed,
		MaterialsUsed:     req.MaterialsUsed,
		TimeSpent:         req.TimeSpent,
		IssuesFound:       req.IssuesFound,
		Recommendations:   req.Recommendations,
		CustomerSignature: req.CustomerSignature,
		Items:             items,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UploadPhoto accepts one multipart photo for a report.
func (h *WorkOrderHandler) UploadPhoto(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file is required"})
	}
	if fileHeader.Size > maxPhotoSize {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo exceeds the size limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded photo", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid upload"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSize))
	if err != nil {
		log.Error("Failed to read uploaded photo", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid upload"})
	}

	photo, err := h.orders.AttachPhoto(actor, c.Param("id"), fileHeader.Filename, c.FormValue("description"), data)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, photo)
}

// Items lists a work order's line items.
func (h *WorkOrderHandler) Items(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	items, err := h.orders.Items(actor, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}
