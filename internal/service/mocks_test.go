package service

import (
	"context"
	"time"

	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockWorkOrderStore struct {
	mock.Mock
}

func (m *MockWorkOrderStore) Create(order *model.WorkOrder) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockWorkOrderStore) GetInOrg(orgID, id string) (*model.WorkOrder, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderStore) GetWithRelations(orgID, id string) (*model.WorkOrder, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderStore) ListByOrg(orgID string, filter repository.WorkOrderFilter) ([]model.WorkOrder, error) {
	args := m.Called(orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkOrder), args.Error(1)
}

func (m *MockWorkOrderStore) UpdateFields(orgID, id string, updates map[string]interface{}) error {
	args := m.Called(orgID, id, updates)
	return args.Error(0)
}

func (m *MockWorkOrderStore) ReplaceItems(workOrderID string, items []model.WorkOrderItem) error {
	args := m.Called(workOrderID, items)
	return args.Error(0)
}

func (m *MockWorkOrderStore) ListItems(workOrderID string) ([]model.WorkOrderItem, error) {
	args := m.Called(workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkOrderItem), args.Error(1)
}

func (m *MockWorkOrderStore) AddPhoto(photo *model.Photo) error {
	args := m.Called(photo)
	return args.Error(0)
}

func (m *MockWorkOrderStore) ListPhotos(workOrderID string) ([]model.Photo, error) {
	args := m.Called(workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Photo), args.Error(1)
}

type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetInOrg(orgID, id string) (*model.Profile, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

type MockPropertyStore struct {
	mock.Mock
}

func (m *MockPropertyStore) GetInOrg(orgID, id string) (*model.Property, error) {
	args := m.Called(orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Property), args.Error(1)
}

type MockInvoiceStore struct {
	mock.Mock
}

func (m *MockInvoiceStore) Create(invoice *model.Invoice) error {
	args := m.Called(invoice)
	return args.Error(0)
}

func (m *MockInvoiceStore) GetByID(id string) (*model.Invoice, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) GetByWorkOrder(orgID, workOrderID string) (*model.Invoice, error) {
	args := m.Called(orgID, workOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) ListByOrg(orgID, status string) ([]model.Invoice, error) {
	args := m.Called(orgID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invoice), args.Error(1)
}

func (m *MockInvoiceStore) CountForYear(orgID string, year int) (int64, error) {
	args := m.Called(orgID, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceStore) UpdateFields(orgID, id string, updates map[string]interface{}) error {
	args := m.Called(orgID, id, updates)
	return args.Error(0)
}

func (m *MockInvoiceStore) MarkPaid(id string, paidAt time.Time) (bool, error) {
	args := m.Called(id, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceStore) MarkOverdue(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

type MockOrganizationStore struct {
	mock.Mock
}

func (m *MockOrganizationStore) GetByID(id string) (*model.Organization, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

type MockSubscriptionStore struct {
	mock.Mock
}

func (m *MockSubscriptionStore) Create(sub *model.Subscription) error {
	args := m.Called(sub)
	return args.Error(0)
}

func (m *MockSubscriptionStore) UpdateFields(id string, updates map[string]interface{}) error {
	args := m.Called(id, updates)
	return args.Error(0)
}

type MockEventStore struct {
	mock.Mock
}

func (m *MockEventStore) Record(event *model.WebhookEvent) (bool, error) {
	args := m.Called(event)
	return args.Bool(0), args.Error(1)
}

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateInvoice(ctx context.Context, invoice *model.Invoice, org *model.Organization) (string, error) {
	args := m.Called(ctx, invoice, org)
	return args.String(0), args.Error(1)
}

type MockPhotoStorage struct {
	mock.Mock
}

func (m *MockPhotoStorage) Save(workOrderID, filename string, data []byte) (string, error) {
	args := m.Called(workOrderID, filename, data)
	return args.String(0), args.Error(1)
}
