package repository

import (
	"errors"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/model"
	"gorm.io/gorm"
)

// WorkOrderFilter narrows org-scoped work-order listings.
type WorkOrderFilter struct {
	Status     string
	Priority   string
	AssignedTo string
	CreatedBy  string
}

// WorkOrderRepository provides org-scoped access to work orders and
// their line items and photos.
type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) Create(order *model.WorkOrder) error {
	if err := r.db.Create(order).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "failed to create work order", err)
	}
	return nil
}

func (r *WorkOrderRepository) GetInOrg(orgID, id string) (*model.WorkOrder, error) {
	var order model.WorkOrder
	if err := r.db.First(&order, "id = ? AND org_id = ?", id, orgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "work order not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load work order", err)
	}
	return &order, nil
}

// GetWithRelations loads a work order with its property and line items
// for invoice derivation and rendering.
func (r *WorkOrderRepository) GetWithRelations(orgID, id string) (*model.WorkOrder, error) {
	var order model.WorkOrder
	err := r.db.Preload("Property").Preload("Items").
		First(&order, "id = ? AND org_id = ?", id, orgID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "work order not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load work order", err)
	}
	return &order, nil
}

func (r *WorkOrderRepository) ListByOrg(orgID string, filter WorkOrderFilter) ([]model.WorkOrder, error) {
	query := r.db.Where("org_id = ?", orgID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}

	var orders []model.WorkOrder
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list work orders", err)
	}
	return orders, nil
}

// UpdateFields applies a single atomic row update to a work order
// within the organization. Status and assignment writes go through
// here so a transition is never split across statements.
func (r *WorkOrderRepository) UpdateFields(orgID, id string, updates map[string]interface{}) error {
	result := r.db.Model(&model.WorkOrder{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Updates(updates)
	if result.Error != nil {
		return apperr.Wrap(apperr.Internal, "failed to update work order", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "work order not found")
	}
	return nil
}

// ReplaceItems swaps the full set of line items for a work order in
// one transaction. Report saves are last-write-wins, not incremental.
func (r *WorkOrderRepository) ReplaceItems(workOrderID string, items []model.WorkOrderItem) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("work_order_id = ?", workOrderID).Delete(&model.WorkOrderItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].WorkOrderID = workOrderID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to replace work order items", err)
	}
	return nil
}

func (r *WorkOrderRepository) ListItems(workOrderID string) ([]model.WorkOrderItem, error) {
	var items []model.WorkOrderItem
	if err := r.db.Where("work_order_id = ?", workOrderID).Order("created_at").Find(&items).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list work order items", err)
	}
	return items, nil
}

// AddPhoto appends a photo record. Photos are never updated in place.
func (r *WorkOrderRepository) AddPhoto(photo *model.Photo) error {
	if err := r.db.Create(photo).Error; err != nil {
		return apperr.Wrap(apperr.Internal, "failed to record photo", err)
	}
	return nil
}

func (r *WorkOrderRepository) ListPhotos(workOrderID string) ([]model.Photo, error) {
	var photos []model.Photo
	if err := r.db.Where("work_order_id = ?", workOrderID).Order("created_at").Find(&photos).Error; err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list photos", err)
	}
	return photos, nil
}
