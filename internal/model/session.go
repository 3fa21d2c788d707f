package model

// State is a position in the session state machine.
type State int

const (
	// StateAnonymous means no player is logged in.
	StateAnonymous State = iota
	// StateAuthenticating means a login, signup or verification call is in flight.
	StateAuthenticating
	// StateAuthenticated means a player is logged in.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the in-memory authentication state of the client.
// IsAuthenticated is true exactly when User is set, and at most one of
// Error and SuccessMessage is non-empty.
type Session struct {
	User            *User
	IsAuthenticated bool
	Loading         bool
	Error           string
	SuccessMessage  string
	Status          State
}
