// Package session holds the authenticated user of the running process and
// mirrors every change to the token store.
package session

import (
	"context"
	"sync"

	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/models"
	"go.uber.org/zap"
)

// UserStore persists the cached user record
type UserStore interface {
	LoadUser(ctx context.Context) (models.User, error)
	SaveUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context) error
}

// State is a snapshot of the session
type State struct {
	User     models.User
	Hydrated bool
}

// Authenticated reports whether a user is set
func (s State) Authenticated() bool {
	return s.User != nil
}

// Session is the auth state shared by every consumer of the process. It
// starts unhydrated, Hydrate loads the cached user exactly once.
type Session struct {
	users UserStore

	mu    sync.RWMutex
	state State

	// writeMu orders state changes with their write-through
	writeMu sync.Mutex

	once  sync.Once
	ready chan struct{}

	subsMu sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// New creates an unhydrated session backed by users
func New(users UserStore) *Session {
	return &Session{
		users: users,
		ready: make(chan struct{}),
		subs:  make(map[int]func(State)),
	}
}

// Hydrate loads the cached user. Only the first call does any work. A missing
// or unreadable record leaves the session without a user, it is still
// marked hydrated.
func (s *Session) Hydrate(ctx context.Context) {
	s.once.Do(func() {
		user, err := s.users.LoadUser(ctx)
		if err != nil {
			logger.Warn("failed to load cached user", zap.Error(err))
			user = nil
		}

		s.mu.Lock()
		s.state = State{User: user, Hydrated: true}
		s.mu.Unlock()

		close(s.ready)
		logger.Debug("session hydrated", zap.Bool("authenticated", user != nil))
		s.notify()
	})
}

// Ready is closed once the session is hydrated
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until the session is hydrated or ctx is done
func (s *Session) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.ready:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// State returns a snapshot of the session
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the current user, nil when signed out
func (s *Session) User() models.User {
	return s.State().User
}

// Hydrated reports whether the cached user was loaded
func (s *Session) Hydrated() bool {
	return s.State().Hydrated
}

// SetUser replaces the user and writes it through to the store. A nil user
// deletes the record. Store failures are logged, the in-memory state is
// updated regardless.
func (s *Session) SetUser(ctx context.Context, user models.User) {
	s.writeMu.Lock()
	s.mu.Lock()
	s.state.User = user
	s.mu.Unlock()

	s.persist(ctx, user)
	s.writeMu.Unlock()
	s.notify()
}

// Update applies fn to the current user and stores the result
func (s *Session) Update(ctx context.Context, fn func(models.User) models.User) {
	s.writeMu.Lock()
	s.mu.Lock()
	user := fn(s.state.User)
	s.state.User = user
	s.mu.Unlock()

	s.persist(ctx, user)
	s.writeMu.Unlock()
	s.notify()
}

// Subscribe registers fn to be called after every change. The returned
// function removes it.
func (s *Session) Subscribe(fn func(State)) func() {
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Session) persist(ctx context.Context, user models.User) {
	var err error
	if user != nil {
		err = s.users.SaveUser(ctx, user)
	} else {
		err = s.users.DeleteUser(ctx)
	}
	if err != nil {
		logger.Warn("failed to persist session user", zap.Error(err))
	}
}

func (s *Session) notify() {
	state := s.State()

	s.subsMu.Lock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
