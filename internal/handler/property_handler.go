package handler

import (
	"net/http"

	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/repository"
	"github.com/fenstri/fieldservice/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PropertyHandler manages the organization's serviced properties.
type PropertyHandler struct {
	properties *repository.PropertyRepository
}

func NewPropertyHandler(properties *repository.PropertyRepository) *PropertyHandler {
	return &PropertyHandler{properties: properties}
}

type propertyRequest struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
	Notes        string `json:"notes"`
}

// Create registers a property in the caller's organization.
func (h *PropertyHandler) Create(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req propertyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse property request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.AddressLine1 == "" || req.City == "" || req.PostalCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, address_line1, city and postal_code are required"})
	}

	property := &model.Property{
		OrgID:        actor.OrgID,
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Notes:        req.Notes,
	}
	if err := h.properties.Create(property); err != nil {
		return respondError(c, err)
	}

	log.Info("Property created",
		zap.String("property_id", property.ID),
		zap.String("org_id", actor.OrgID))
	return c.JSON(http.StatusCreated, property)
}

// List returns the organization's properties.
func (h *PropertyHandler) List(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	properties, err := h.properties.ListByOrg(actor.OrgID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"properties": properties, "count": len(properties)})
}

// Get returns one property.
func (h *PropertyHandler) Get(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	property, err := h.properties.GetInOrg(actor.OrgID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, property)
}

// Update applies partial changes to a property.
func (h *PropertyHandler) Update(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req map[string]interface{}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse property update", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := make(map[string]interface{})
	for _, field := range []string{
		"name", "address_line1", "address_line2", "city", "postal_code",
		"country", "contact_name", "contact_phone", "contact_email", "notes",
	} {
		if value, ok := req[field]; ok {
			updates[field] = value
		}
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no updatable fields provided"})
	}

	if err := h.properties.Update(actor.OrgID, c.Param("id"), updates); err != nil {
		return respondError(c, err)
	}

	property, err := h.properties.GetInOrg(actor.OrgID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, property)
}

// Delete removes a property.
func (h *PropertyHandler) Delete(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	if err := h.properties.Delete(actor.OrgID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "property deleted"})
}
