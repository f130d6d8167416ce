package handler

import (
	"net/http"

	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/pkg/jwtutil"
	"github.com/fenstri/fieldservice/pkg/logger"
	"github.com/fenstri/fieldservice/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler owns registration and login. Profile provisioning is
// exactly-once: the registration insert runs in one transaction and
// the unique email index rejects replays.
type AuthHandler struct {
	db  *gorm.DB
	jwt *jwtutil.JWTUtil
}

func NewAuthHandler(db *gorm.DB, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwt}
}

// Register creates a profile, and when an organization name is given,
// the organization with the registrant as its admin.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		OrgName  string `json:"org_name,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		log.Error("Invalid registration data",
			zap.String("email", req.Email),
			zap.Bool("password_provided", req.Password != ""))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	profile := model.Profile{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         string(lifecycle.RoleCustomer),
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if req.OrgName != "" {
			org := model.Organization{Name: req.OrgName}
			if err := tx.Create(&org).Error; err != nil {
				return err
			}
			profile.OrgID = &org.ID
			profile.Role = string(lifecycle.RoleAdmin)
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		log.Error("Failed to create profile", zap.String("email", req.Email), zap.Error(err))
		prometheus.RecordAuthError("registration_failed")
		return c.JSON(http.StatusConflict, echo.Map{"error": "registration failed"})
	}

	log.Info("Profile registered",
		zap.String("profile_id", profile.ID),
		zap.String("email", profile.Email),
		zap.String("role", profile.Role))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Registration successful",
		"profile": profile,
	})
}

// Login verifies credentials and returns a JWT carrying the profile's
// organization and role claims.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var profile model.Profile
	if result := h.db.Where("email = ?", req.Email).First(&profile); result.Error != nil {
		log.Error("Profile not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	var orgName string
	if profile.OrgID != nil {
		var org model.Organization
		if result := h.db.Select("name").First(&org, "id = ?", *profile.OrgID); result.Error == nil {
			orgName = org.Name
		}
	}

	token, err := h.jwt.GenerateToken(profile.Email, profile.ID, profile.OrgID, orgName, profile.Role)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("Profile logged in",
		zap.String("email", profile.Email),
		zap.String("role", profile.Role))

	response := echo.Map{
		"token": token,
		"profile": echo.Map{
			"id":        profile.ID,
			"email":     profile.Email,
			"full_name": profile.FullName,
			"role":      profile.Role,
			"org_id":    profile.OrgID,
		},
	}
	if orgName != "" {
		response["organization"] = echo.Map{"id": profile.OrgID, "name": orgName}
	}

	return c.JSON(http.StatusOK, response)
}

// Me returns the caller's own profile.
func (h *AuthHandler) Me(c echo.Context) error {
	log := logger.FromEcho(c)

	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var profile model.Profile
	if result := h.db.First(&profile, "id = ?", claims.UserID); result.Error != nil {
		log.Error("Profile not found", zap.String("profile_id", claims.UserID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	return c.JSON(http.StatusOK, profile)
}
