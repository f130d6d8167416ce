package handler

import (
	"net/http"

	"github.com/fenstri/fieldservice/internal/apperr"
	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/service"
	"github.com/fenstri/fieldservice/pkg/jwtutil"
	"github.com/fenstri/fieldservice/pkg/logger"
	"github.com/labstack/echo/v4"
)

// resolveActor pulls the authenticated actor out of the request
// context. On failure the response has already been written and the
// handler should return nil.
func resolveActor(c echo.Context) (service.Actor, bool) {
	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		logger.FromEcho(c).Error("Failed to get user claims from context")
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		return service.Actor{}, false
	}
	if claims.OrgID == nil {
		logger.FromEcho(c).Warn("Organization context missing from claims")
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context required"})
		return service.Actor{}, false
	}
	return service.Actor{
		ID:    claims.UserID,
		OrgID: *claims.OrgID,
		Role:  lifecycle.Role(claims.Role),
	}, true
}

// respondError maps a classified domain error onto the wire.
func respondError(c echo.Context, err error) error {
	return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": apperr.MessageOf(err)})
}
