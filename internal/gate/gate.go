package gate

import (
	"strings"

	"github.com/trackit-app/dashboard-service/internal/domain"
)

// State is the gate's view of the session.
type State string

const (
	StateLoading            State = "LOADING"
	StateUnauthenticated    State = "UNAUTHENTICATED"
	StateAuthenticatedUser  State = "AUTHENTICATED_USER"
	StateAuthenticatedAdmin State = "AUTHENTICATED_ADMIN"
)

// Decision is the gate's verdict for one (identity, route) pair.
type Decision string

const (
	// DecisionWait applies while identity is still unresolved.
	DecisionWait              Decision = "WAIT"
	DecisionRender            Decision = "RENDER"
	DecisionRedirectLogin     Decision = "REDIRECT_LOGIN"
	DecisionRedirectDashboard Decision = "REDIRECT_DASHBOARD"
)

// Route targets for redirects.
const (
	LoginRoute     = "/login"
	DashboardRoute = "/dashboard"
	adminPrefix    = "/admin"
)

// Gate decides redirect vs render from resolver output and the current
// route. It holds no terminal state: every identity or route change
// re-evaluates from scratch.
type Gate struct {
	state State
}

// New starts in Loading, before the first resolver delivery.
func New() *Gate {
	return &Gate{state: StateLoading}
}

// State returns the gate's current session state.
func (g *Gate) State() State {
	return g.state
}

// OnIdentity consumes a resolver delivery. A nil user always moves the
// gate to Unauthenticated, including after having been authenticated.
func (g *Gate) OnIdentity(user *domain.User) {
	switch {
	case user == nil:
		g.state = StateUnauthenticated
	case user.IsAdmin:
		g.state = StateAuthenticatedAdmin
	default:
		g.state = StateAuthenticatedUser
	}
}

// Evaluate decides what the presentation layer should do for the given
// route under the current session state.
func (g *Gate) Evaluate(route string) Decision {
	switch g.state {
	case StateLoading:
		return DecisionWait
	case StateUnauthenticated:
		return DecisionRedirectLogin
	case StateAuthenticatedAdmin:
		// admin may access both admin and regular routes
		return DecisionRender
	case StateAuthenticatedUser:
		if IsAdminRoute(route) {
			return DecisionRedirectDashboard
		}
		return DecisionRender
	}
	return DecisionRedirectLogin
}

// IsAdminRoute reports whether the route lives under the admin prefix.
func IsAdminRoute(route string) bool {
	return route == adminPrefix || strings.HasPrefix(route, adminPrefix+"/")
}
