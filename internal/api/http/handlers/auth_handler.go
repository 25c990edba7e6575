package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trackit-app/dashboard-service/internal/api/dto"
	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

// IdentityService is the subset of the identity service the auth
// endpoints use.
type IdentityService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*domain.User, string, time.Time, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, string, time.Time, error)
	SignOut(ctx context.Context)
}

// AuthHandler exposes sign-up, sign-in and sign-out endpoints.
type AuthHandler struct {
	identity IdentityService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(identity IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.identity.SignUp(c.UserContext(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.identity.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(user),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.identity.SignOut(c.UserContext())
	return c.JSON(fiber.Map{"data": fiber.Map{"signed_out": true}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		IsAdmin:     user.IsAdmin,
	}
}
