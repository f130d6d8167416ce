package handler

import (
	"net/http"

	"github.com/fenstri/fieldservice/internal/repository"
	"github.com/labstack/echo/v4"
)

// SubscriptionHandler exposes the recurring service contracts kept in
// sync from payment-provider events.
type SubscriptionHandler struct {
	subs *repository.SubscriptionRepository
}

func NewSubscriptionHandler(subs *repository.SubscriptionRepository) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

// List returns the organization's subscriptions.
func (h *SubscriptionHandler) List(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	subs, err := h.subs.ListByOrg(actor.OrgID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subscriptions": subs, "count": len(subs)})
}
