package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/trackit-app/dashboard-service/internal/domain"
	"github.com/trackit-app/dashboard-service/internal/repository"
	"github.com/trackit-app/dashboard-service/pkg/apperrors"
)

const principalKey = "auth_principal"

// AuthMiddleware validates bearer tokens and loads the caller's identity.
type AuthMiddleware struct {
	tokens     *TokenManager
	accounts   repository.AccountRepository
	adminEmail string
}

// NewAuthMiddleware constructs middleware. adminEmail is the statically
// configured admin address; IsAdmin is recomputed on every request.
func NewAuthMiddleware(tokens *TokenManager, accounts repository.AccountRepository, adminEmail string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, accounts: accounts, adminEmail: adminEmail}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewAuthRequired("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewAuthRequired("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewAuthRequired("invalid token")
	}

	account, err := m.accounts.GetByID(c.Context(), claims.AccountID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewAuthRequired("account not found")
		}
		return apperrors.ToDomainError(err)
	}

	WithUser(c, &domain.User{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		PhotoURL:    account.PhotoURL,
		IsAdmin:     account.Email == m.adminEmail,
	})
	return c.Next()
}

// WithUser stores the resolved identity on the request context.
func WithUser(c *fiber.Ctx, user *domain.User) {
	c.Locals(principalKey, user)
}

// UserFromContext retrieves the authenticated identity.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
