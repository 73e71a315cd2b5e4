// Package guard decides whether a protected view may render for the current
// session state.
package guard

import (
	"context"
	"errors"

	"github.com/brizzai/dishom-client/internal/session"
)

// LandingRoute is the public route unauthenticated users are sent to
const LandingRoute = "/"

// Verdict is the outcome of Decide
type Verdict int

const (
	// Pending means the session is not hydrated yet: render nothing, do not navigate
	Pending Verdict = iota
	// Redirect sends the user to LandingRoute
	Redirect
	// Allow renders the protected content
	Allow
)

func (v Verdict) String() string {
	switch v {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Allow:
		return "allow"
	default:
		return "unknown"
	}
}

// ErrNotAuthenticated is returned by Require when the hydrated session has no user
var ErrNotAuthenticated = errors.New("not signed in")

// Decide maps a session state to a verdict. No redirect is ever decided
// before hydration.
func Decide(state session.State) Verdict {
	switch {
	case !state.Hydrated:
		return Pending
	case state.User == nil:
		return Redirect
	default:
		return Allow
	}
}

// Require waits for hydration and returns the state when it allows access
func Require(ctx context.Context, s *session.Session) (session.State, error) {
	state, err := s.Wait(ctx)
	if err != nil {
		return state, err
	}
	if Decide(state) != Allow {
		return state, ErrNotAuthenticated
	}
	return state, nil
}
