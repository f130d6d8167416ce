package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/service"
	"github.com/fenstri/fieldservice/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubInvoiceStore struct {
	markedPaid []string
}

func (s *stubInvoiceStore) Create(*model.Invoice) error { return nil }
func (s *stubInvoiceStore) GetByID(string) (*model.Invoice, error) { return nil, nil }
func (s *stubInvoiceStore) GetByWorkOrder(_, _ string) (*model.Invoice, error) { return nil, nil }
func (s *stubInvoiceStore) ListByOrg(_, _ string) ([]model.Invoice, error) { return nil, nil }
func (s *stubInvoiceStore) CountForYear(string, int) (int64, error) { return 0, nil }
func (s *stubInvoiceStore) UpdateFields(_, _ string, _ map[string]interface{}) error {
	return nil
}
func (s *stubInvoiceStore) MarkPaid(id string, _ time.Time) (bool, error) {
	s.markedPaid = append(s.markedPaid, id)
	return true, nil
}
func (s *stubInvoiceStore) MarkOverdue(string) (bool, error) { return true, nil }

type stubSubscriptionStore struct{}

func (stubSubscriptionStore) Create(*model.Subscription) error { return nil }
func (stubSubscriptionStore) UpdateFields(string, map[string]interface{}) error { return nil }

type stubEventStore struct{}

func (stubEventStore) Record(*model.WebhookEvent) (bool, error) { return true, nil }

func newWebhookTest(secret string) (*WebhookHandler, *stubInvoiceStore) {
	invoices := &stubInvoiceStore{}
	reconciler := service.NewReconciler(invoices, stubSubscriptionStore{}, stubEventStore{}, nil, zap.NewNop())
	cfg := config.StripeConfig{WebhookSecret: secret, MaxClockSkew: 5 * time.Minute}
	return NewWebhookHandler(reconciler, cfg), invoices
}

func postWebhook(h *WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	_ = h.HandleStripe(e.NewContext(req, rec))
	return rec
}

func TestWebhookAcceptsSignedEvent(t *testing.T) {
	h, invoices := newWebhookTest("whsec_test")

	body := `{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{"id":"in_1","metadata":{"invoice_id":"inv-1"}}}}`
	signature := service.SignWebhookPayload([]byte(body), "whsec_test", time.Now())

	rec := postWebhook(h, body, signature)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
	assert.Equal(t, []string{"inv-1"}, invoices.markedPaid)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	h, invoices := newWebhookTest("whsec_test")

	rec := postWebhook(h, `{"id":"evt_1","type":"x"}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, invoices.markedPaid)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h, invoices := newWebhookTest("whsec_test")

	body := `{"id":"evt_1","type":"invoice.payment_succeeded"}`
	signature := service.SignWebhookPayload([]byte(body), "whsec_wrong", time.Now())

	rec := postWebhook(h, body, signature)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, invoices.markedPaid)
}

func TestWebhookRejectsSignedMalformedPayload(t *testing.T) {
	h, invoices := newWebhookTest("whsec_test")

	cases := []string{
		"not json",
		`{"id":"","type":""}`,
	}
	for _, body := range cases {
		signature := service.SignWebhookPayload([]byte(body), "whsec_test", time.Now())
		rec := postWebhook(h, body, signature)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, invoices.markedPaid)
}

func TestWebhookRejectsWhenSecretUnset(t *testing.T) {
	h, _ := newWebhookTest("")

	body := `{"id":"evt_1","type":"x"}`
	signature := service.SignWebhookPayload([]byte(body), "whsec_test", time.Now())

	rec := postWebhook(h, body, signature)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
