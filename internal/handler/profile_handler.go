package handler

import (
	"net/http"

	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/repository"
	"github.com/fenstri/fieldservice/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ProfileHandler manages the organization's team. Role changes and
// member provisioning are admin operations; technician listing is also
// open to dispatchers for assignment.
type ProfileHandler struct {
	profiles *repository.ProfileRepository
}

func NewProfileHandler(profiles *repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// List returns the organization's members, optionally filtered by role.
func (h *ProfileHandler) List(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	role := c.QueryParam("role")
	if role != "" && !lifecycle.ValidRole(lifecycle.Role(role)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	profiles, err := h.profiles.ListByOrg(actor.OrgID, role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"profiles": profiles, "count": len(profiles)})
}

// ListTechnicians returns the assignable technicians of the
// organization.
func (h *ProfileHandler) ListTechnicians(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	profiles, err := h.profiles.ListByOrg(actor.OrgID, string(lifecycle.RoleTechnician))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"technicians": profiles, "count": len(profiles)})
}

// Create provisions a team member with a role inside the organization.
func (h *ProfileHandler) Create(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse member request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}
	if !lifecycle.ValidRole(lifecycle.Role(req.Role)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create member"})
	}

	orgID := actor.OrgID
	profile := &model.Profile{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         req.Role,
		OrgID:        &orgID,
	}
	if err := h.profiles.Create(profile); err != nil {
		return respondError(c, err)
	}

	log.Info("Team member created",
		zap.String("profile_id", profile.ID),
		zap.String("role", profile.Role))
	return c.JSON(http.StatusCreated, profile)
}

// Update changes a member's name, phone or role.
func (h *ProfileHandler) Update(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}
	log := logger.FromEcho(c)

	var req map[string]interface{}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse member update", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := make(map[string]interface{})
	for _, field := range []string{"full_name", "phone", "role"} {
		if value, ok := req[field]; ok {
			updates[field] = value
		}
	}
	if role, ok := updates["role"].(string); ok && !lifecycle.ValidRole(lifecycle.Role(role)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no updatable fields provided"})
	}

	if err := h.profiles.Update(actor.OrgID, c.Param("id"), updates); err != nil {
		return respondError(c, err)
	}

	profile, err := h.profiles.GetInOrg(actor.OrgID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// Delete removes a member from the organization.
func (h *ProfileHandler) Delete(c echo.Context) error {
	actor, ok := resolveActor(c)
	if !ok {
		return nil
	}

	if c.Param("id") == actor.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot remove your own profile"})
	}
	if err := h.profiles.Delete(actor.OrgID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile deleted"})
}
