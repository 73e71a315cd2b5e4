package session

import "context"

type contextKey struct{}

// AuthRequiredError is returned when a session is read from a context that
// no provider has set one on
type AuthRequiredError struct{}

func (AuthRequiredError) Error() string {
	return "session: auth session used outside of a session provider"
}

// WithSession attaches s to ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached to ctx
func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || s == nil {
		return nil, &AuthRequiredError{}
	}
	return s, nil
}

// MustFromContext is FromContext for callers where a missing provider is a
// programming error
func MustFromContext(ctx context.Context) *Session {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
