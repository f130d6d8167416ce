package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/repository"
	"github.com/fenstri/fieldservice/internal/service"
	"github.com/fenstri/fieldservice/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOrderStore struct {
	order         *model.WorkOrder
	updates       map[string]interface{}
	replacedItems []model.WorkOrderItem
}

func (s *stubOrderStore) Create(*model.WorkOrder) error { return nil }
func (s *stubOrderStore) GetInOrg(_, _ string) (*model.WorkOrder, error) {
	return s.order, nil
}
func (s *stubOrderStore) GetWithRelations(_, _ string) (*model.WorkOrder, error) {
	return s.order, nil
}
func (s *stubOrderStore) ListByOrg(string, repository.WorkOrderFilter) ([]model.WorkOrder, error) {
	return nil, nil
}
func (s *stubOrderStore) UpdateFields(_, _ string, updates map[string]interface{}) error {
	s.updates = updates
	return nil
}
func (s *stubOrderStore) ReplaceItems(_ string, items []model.WorkOrderItem) error {
	s.replacedItems = items
	return nil
}
func (s *stubOrderStore) ListItems(string) ([]model.WorkOrderItem, error) { return nil, nil }
func (s *stubOrderStore) AddPhoto(*model.Photo) error                     { return nil }
func (s *stubOrderStore) ListPhotos(string) ([]model.Photo, error)        { return nil, nil }

type stubProfileStore struct{}

func (stubProfileStore) GetInOrg(_, _ string) (*model.Profile, error) { return nil, nil }

type stubPropertyStore struct{}

func (stubPropertyStore) GetInOrg(_, _ string) (*model.Property, error) { return nil, nil }

type stubPhotoStorage struct{}

func (stubPhotoStorage) Save(_, _ string, _ []byte) (string, error) { return "", nil }

func technicianContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, techID, orgID string) echo.Context {
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("wo-1")
	c.Set("user", &jwtutil.UserClaims{
		UserID: techID,
		OrgID:  &orgID,
		Role:   string(lifecycle.RoleTechnician),
	})
	return c
}

func TestSaveReportBindsItemFields(t *testing.T) {
	tech := "tech-1"
	orders := &stubOrderStore{
		order: &model.WorkOrder{
			ID:         "wo-1",
			OrgID:      "org-1",
			Status:     string(lifecycle.StatusInProgress),
			AssignedTo: &tech,
		},
	}
	svc := service.NewWorkOrderService(orders, stubProfileStore{}, stubPropertyStore{}, stubPhotoStorage{}, zap.NewNop())
	h := NewWorkOrderHandler(svc)

	body := `{
		"work_performed": "Resealed frame",
		"items": [
			{"description": "Sealant", "quantity": 3, "unit_price": 12.5, "completed": true},
			{"description": "Hinge check", "quantity": 1, "unit_price": 0, "completed": false}
		]
	}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/work-orders/wo-1/report", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.SaveReport(technicianContext(e, req, rec, tech, "org-1"))

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, orders.replacedItems, 2)
	assert.Equal(t, "Sealant", orders.replacedItems[0].Description)
	assert.Equal(t, 3, orders.replacedItems[0].Quantity)
	assert.Equal(t, 12.5, orders.replacedItems[0].UnitPrice)
	assert.True(t, orders.replacedItems[0].Completed)
	assert.False(t, orders.replacedItems[1].Completed)
	assert.Equal(t, "Resealed frame", orders.updates["work_performed"])
}

func TestSaveReportRejectsZeroQuantity(t *testing.T) {
	tech := "tech-1"
	orders := &stubOrderStore{
		order: &model.WorkOrder{
			ID:         "wo-1",
			OrgID:      "org-1",
			Status:     string(lifecycle.StatusInProgress),
			AssignedTo: &tech,
		},
	}
	svc := service.NewWorkOrderService(orders, stubProfileStore{}, stubPropertyStore{}, stubPhotoStorage{}, zap.NewNop())
	h := NewWorkOrderHandler(svc)

	body := `{"items": [{"description": "Sealant", "quantity": 0, "unit_price": 12.5}]}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/work-orders/wo-1/report", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := h.SaveReport(technicianContext(e, req, rec, tech, "org-1"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, orders.replacedItems)
}
