package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/service"
	"github.com/fenstri/fieldservice/pkg/config"
	"github.com/fenstri/fieldservice/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxWebhookBody caps a provider delivery payload.
const maxWebhookBody = 1 << 20

// WebhookHandler receives payment-provider deliveries. The endpoint is
// unauthenticated; trust comes from the signature over the raw body.
type WebhookHandler struct {
	reconciler *service.Reconciler
	stripe     config.StripeConfig
}

func NewWebhookHandler(reconciler *service.Reconciler, stripe config.StripeConfig) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler, stripe: stripe}
}

// HandleStripe verifies and applies one provider event. Accepted
// deliveries always answer 200 so the provider stops retrying,
// including benign no-ops like duplicates and unknown event kinds.
func (h *WebhookHandler) HandleStripe(c echo.Context) error {
	log := logger.FromEcho(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		log.Error("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable payload"})
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if err := service.VerifyWebhookSignature(payload, signature, h.stripe.WebhookSecret, h.stripe.MaxClockSkew, time.Now()); err != nil {
		log.Warn("Webhook signature rejected", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid signature"})
	}

	if err := h.reconciler.HandleEvent(c.Request().Context(), payload); err != nil {
		log.Error("Webhook event processing failed", zap.Error(err))
		// A signed but malformed envelope is the sender's fault.
		if apperr.Is(err, apperr.ConstraintViolation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": apperr.MessageOf(err)})
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
