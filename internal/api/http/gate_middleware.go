package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trackit-app/dashboard-service/internal/auth"
	"github.com/trackit-app/dashboard-service/internal/gate"
)

// AccessGate applies the route gate to the current identity: admins
// render everywhere, non-admin users are pushed off admin routes to the
// dashboard, and unresolved identities go to login. Runs after the auth
// middleware, so identity is already resolved for the request.
func AccessGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := auth.UserFromContext(c)

		g := gate.New()
		g.OnIdentity(user)

		switch g.Evaluate(c.Path()) {
		case gate.DecisionRender:
			return c.Next()
		case gate.DecisionRedirectDashboard:
			return c.Redirect(gate.DashboardRoute, fiber.StatusSeeOther)
		default:
			return c.Redirect(gate.LoginRoute, fiber.StatusSeeOther)
		}
	}
}
