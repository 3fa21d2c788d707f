package navigation

import "github.com/dtroode/townforge-client/internal/model"

// Decision is the outcome of a guarded transition.
type Decision struct {
	// Redirect is nil when the transition may proceed.
	Redirect *Route
}

// Proceed reports whether the transition is allowed as requested.
func (d Decision) Proceed() bool {
	return d.Redirect == nil
}

// Target returns where navigation ends up.
func (d Decision) Target(requested Route) Route {
	if d.Redirect != nil {
		return *d.Redirect
	}
	return requested
}

// Decide evaluates a transition from source to target. Player authentication
// is checked before admin authorization. The source route does not influence
// the outcome.
func Decide(target, _ Route, markers model.Markers) Decision {
	switch {
	case target.Access == AccessPlayer && !markers.Player.Present():
		entry := Entry()
		return Decision{Redirect: &entry}
	case target.Access == AccessAdmin && !markers.Admin.Present():
		login := AdminLogin()
		return Decision{Redirect: &login}
	default:
		return Decision{}
	}
}
