package service

import (
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/repository"
	"github.com/fenstri/fieldservice/prometheus"
	"go.uber.org/zap"
)

// WorkOrderService owns work-order creation, assignment, lifecycle
// transitions and technician reports. All status writes go through the
// lifecycle guard; a rejected transition leaves the stored row
// untouched.
type WorkOrderService struct {
	orders     WorkOrderStore
	profiles   ProfileStore
	properties PropertyStore
	photos     PhotoStorage
	log        *zap.Logger
}

func NewWorkOrderService(orders WorkOrderStore, profiles ProfileStore, properties PropertyStore, photos PhotoStorage, log *zap.Logger) *WorkOrderService {
	return &WorkOrderService{
		orders:     orders,
		profiles:   profiles,
		properties: properties,
		photos:     photos,
		log:        log,
	}
}

// CreateWorkOrderInput carries a service request from the portal.
type CreateWorkOrderInput struct {
	PropertyID     string
	Service        string
	Description    string
	Priority       string
	PreferredStart *time.Time
	PreferredEnd   *time.Time
}

var validServices = map[string]bool{
	model.ServiceMaintenance: true,
	model.ServiceRepair:      true,
	model.ServiceInspection:  true,
}

var validPriorities = map[string]bool{
	model.PriorityLow:    true,
	model.PriorityMedium: true,
	model.PriorityHigh:   true,
	model.PriorityUrgent: true,
}

// Create opens a new work order in draft. Customers, dispatchers and
// admins may create; technicians may not.
func (s *WorkOrderService) Create(actor Actor, in CreateWorkOrderInput) (*model.WorkOrder, error) {
	if actor.Role == lifecycle.RoleTechnician {
		return nil, apperr.New(apperr.AccessDenied, "technicians may not create work orders")
	}

	if !validServices[in.Service] {
		return nil, apperr.New(apperr.ConstraintViolation, "unknown service kind").WithField("service")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !validPriorities[in.Priority] {
		return nil, apperr.New(apperr.ConstraintViolation, "unknown priority").WithField("priority")
	}
	if in.Description == "" {
		return nil, apperr.New(apperr.ConstraintViolation, "description is required").WithField("description")
	}

	// The target property must exist in the caller's organization.
	if _, err := s.properties.GetInOrg(actor.OrgID, in.PropertyID); err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.ConstraintViolation, "property does not exist in this organization").WithField("property_id")
		}
		return nil, err
	}

	order := &model.WorkOrder{
		OrgID:          actor.OrgID,
		PropertyID:     in.PropertyID,
		Service:        in.Service,
		Description:    in.Description,
		Status:         string(lifecycle.StatusDraft),
		Priority:       in.Priority,
		PreferredStart: in.PreferredStart,
		PreferredEnd:   in.PreferredEnd,
		CreatedBy:      actor.ID,
	}
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}

	prometheus.RecordWorkOrderOperation("create")
	s.log.Info("Work order created",
		zap.String("work_order_id", order.ID),
		zap.String("org_id", order.OrgID),
		zap.String("service", order.Service))
	return order, nil
}

// Get loads a single work order. Technicians only see their own
// assignments.
func (s *WorkOrderService) Get(actor Actor, id string) (*model.WorkOrder, error) {
	order, err := s.orders.GetWithRelations(actor.OrgID, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == lifecycle.RoleTechnician && !isAssignee(order, actor.ID) {
		return nil, apperr.New(apperr.AccessDenied, "work order is not assigned to you")
	}
	return order, nil
}

// List returns the organization's work orders visible to the actor.
// Technicians are restricted to their own assignments.
func (s *WorkOrderService) List(actor Actor, filter repository.WorkOrderFilter) ([]model.WorkOrder, error) {
	if actor.Role == lifecycle.RoleTechnician {
		filter.AssignedTo = actor.ID
	}
	return s.orders.ListByOrg(actor.OrgID, filter)
}

// Assign sets the technician on a work order. Assigning a draft order
// advances it to scheduled in the same row update: an order has no
// scheduling meaning while unassigned. Reassignment is allowed while
// the order is still scheduled.
func (s *WorkOrderService) Assign(actor Actor, orderID, technicianID string, scheduledAt *time.Time) (*model.WorkOrder, error) {
	if actor.Role != lifecycle.RoleDispatcher && actor.Role != lifecycle.RoleAdmin {
		return nil, apperr.New(apperr.AccessDenied, "only dispatchers and admins assign technicians")
	}

	order, err := s.orders.GetInOrg(actor.OrgID, orderID)
	if err != nil {
		return nil, err
	}

	technician, err := s.profiles.GetInOrg(actor.OrgID, technicianID)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.ConstraintViolation, "technician does not exist in this organization").WithField("assigned_to")
		}
		return nil, err
	}
	if technician.Role != string(lifecycle.RoleTechnician) {
		return nil, apperr.New(apperr.ConstraintViolation, "assignee must have the technician role").WithField("assigned_to")
	}

	updates := map[string]interface{}{"assigned_to": technicianID}
	if scheduledAt != nil {
		updates["scheduled_at"] = *scheduledAt
	}

	switch lifecycle.Status(order.Status) {
	case lifecycle.StatusDraft:
		if !lifecycle.CanTransition(lifecycle.StatusDraft, lifecycle.StatusScheduled, actor.Role, false) {
			prometheus.RecordTransition(string(lifecycle.StatusScheduled), "rejected")
			return nil, apperr.New(apperr.InvalidTransition, "assignment is not permitted for this role")
		}
		updates["status"] = string(lifecycle.StatusScheduled)
	case lifecycle.StatusScheduled:
		// Reassignment, status unchanged.
	default:
		return nil, apperr.Newf(apperr.InvalidTransition, "cannot assign a technician while the work order is %s", order.Status)
	}

	// Assignment and the draft->scheduled move commit as one update.
	if err := s.orders.UpdateFields(actor.OrgID, orderID, updates); err != nil {
		return nil, err
	}

	prometheus.RecordWorkOrderOperation("assign")
	if _, ok := updates["status"]; ok {
		prometheus.RecordTransition(string(lifecycle.StatusScheduled), "applied")
	}
	s.log.Info("Technician assigned",
		zap.String("work_order_id", orderID),
		zap.String("technician_id", technicianID))

	return s.orders.GetInOrg(actor.OrgID, orderID)
}

// Transition moves a work order to the requested status under the
// lifecycle guard. Invalid requests are rejected synchronously with
// the prior state preserved.
func (s *WorkOrderService) Transition(actor Actor, orderID string, to lifecycle.Status) (*model.WorkOrder, error) {
	if !lifecycle.ValidStatus(to) {
		return nil, apperr.New(apperr.ConstraintViolation, "unknown status").WithField("status")
	}

	order, err := s.orders.GetInOrg(actor.OrgID, orderID)
	if err != nil {
		return nil, err
	}

	from := lifecycle.Status(order.Status)
	if !lifecycle.CanTransition(from, to, actor.Role, isAssignee(order, actor.ID)) {
		prometheus.RecordTransition(string(to), "rejected")
		return nil, apperr.Newf(apperr.InvalidTransition, "cannot move work order from %s to %s", from, to)
	}

	updates := map[string]interface{}{"status": string(to)}
	if to == lifecycle.StatusDone {
		updates["completed_at"] = time.Now().UTC()
	}
	if err := s.orders.UpdateFields(actor.OrgID, orderID, updates); err != nil {
		return nil, err
	}

	prometheus.RecordTransition(string(to), "applied")
	s.log.Info("Work order transitioned",
		zap.String("work_order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	return s.orders.GetInOrg(actor.OrgID, orderID)
}

// ReportInput carries a technician's completion report.
type ReportInput struct {
	WorkPerformed     string
	MaterialsUsed     string
	TimeSpent         string
	IssuesFound       string
	Recommendations   string
	CustomerSignature bool
	Items             []model.WorkOrderItem
}

// SaveReport stores the completion report and replaces the full set of
// line items. Saving a report on an in-progress order completes it.
// The two writes are deliberately sequential: a failed item replacement
// does not undo the committed report update.
func (s *WorkOrderService) SaveReport(actor Actor, orderID string, in ReportInput) (*model.WorkOrder, error) {
	if actor.Role != lifecycle.RoleTechnician {
		return nil, apperr.New(apperr.AccessDenied, "only technicians file reports")
	}

	order, err := s.orders.GetInOrg(actor.OrgID, orderID)
	if err != nil {
		return nil, err
	}
	if !isAssignee(order, actor.ID) {
		return nil, apperr.New(apperr.AccessDenied, "work order is not assigned to you")
	}

	for _, item := range in.Items {
		if item.Description == "" {
			return nil, apperr.New(apperr.ConstraintViolation, "item description is required").WithField("items.description")
		}
		if item.Quantity <= 0 {
			return nil, apperr.New(apperr.ConstraintViolation, "item quantity must be positive").WithField("items.quantity")
		}
		if item.UnitPrice < 0 {
			return nil, apperr.New(apperr.ConstraintViolation, "item unit price must not be negative").WithField("items.unit_price")
		}
	}

	updates := map[string]interface{}{
		"work_performed":     in.WorkPerformed,
		"materials_used":     in.MaterialsUsed,
		"time_spent":         in.TimeSpent,
		"issues_found":       in.IssuesFound,
		"recommendations":    in.Recommendations,
		"customer_signature": in.CustomerSignature,
	}

	switch lifecycle.Status(order.Status) {
	case lifecycle.StatusInProgress:
		if !lifecycle.CanTransition(lifecycle.StatusInProgress, lifecycle.StatusDone, actor.Role, true) {
			prometheus.RecordTransition(string(lifecycle.StatusDone), "rejected")
			return nil, apperr.New(apperr.InvalidTransition, "cannot complete this work order")
		}
		updates["status"] = string(lifecycle.StatusDone)
		updates["completed_at"] = time.Now().UTC()
	case lifecycle.StatusDone:
		// Report corrections on an already-completed order are allowed;
		// items are last-write-wins.
	default:
		return nil, apperr.Newf(apperr.InvalidTransition, "cannot file a report while the work order is %s", order.Status)
	}

	if err := s.orders.UpdateFields(actor.OrgID, orderID, updates); err != nil {
		return nil, err
	}
	if _, ok := updates["status"]; ok {
		prometheus.RecordTransition(string(lifecycle.StatusDone), "applied")
	}

	if err := s.orders.ReplaceItems(orderID, in.Items); err != nil {
		// The report update above already stands; surface the failure.
		s.log.Error("Report saved but item replacement failed",
			zap.String("work_order_id", orderID), zap.Error(err))
		return nil, err
	}

	prometheus.RecordWorkOrderOperation("report")
	return s.orders.GetInOrg(actor.OrgID, orderID)
}

// AttachPhoto uploads report evidence and records it. Photo storage is
// append-only; a failed upload never rolls back prior report writes.
func (s *WorkOrderService) AttachPhoto(actor Actor, orderID, filename, description string, data []byte) (*model.Photo, error) {
	order, err := s.orders.GetInOrg(actor.OrgID, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role == lifecycle.RoleTechnician && !isAssignee(order, actor.ID) {
		return nil, apperr.New(apperr.AccessDenied, "work order is not assigned to you")
	}
	if actor.Role == lifecycle.RoleCustomer {
		return nil, apperr.New(apperr.AccessDenied, "customers may not attach photos")
	}

	path, err := s.photos.Save(orderID, filename, data)
	if err != nil {
		return nil, apperr.Wrap(apperr.ExternalServiceFailure, "photo upload failed", err)
	}

	photo := &model.Photo{
		WorkOrderID: orderID,
		FilePath:    path,
		Description: description,
	}
	if err := s.orders.AddPhoto(photo); err != nil {
		return nil, err
	}

	prometheus.RecordWorkOrderOperation("photo")
	return photo, nil
}

// Items lists the line items of a work order visible to the actor.
func (s *WorkOrderService) Items(actor Actor, orderID string) ([]model.WorkOrderItem, error) {
	if _, err := s.Get(actor, orderID); err != nil {
		return nil, err
	}
	return s.orders.ListItems(orderID)
}

func isAssignee(order *model.WorkOrder, profileID string) bool {
	return order.AssignedTo != nil && *order.AssignedTo == profileID
}
