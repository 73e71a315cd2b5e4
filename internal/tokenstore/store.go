// Package tokenstore persists the auth token pair and the cached user.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brizzai/dishom-client/internal/logger"
	"github.com/brizzai/dishom-client/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

const (
	// TokensKey holds the TokenPair JSON
	TokensKey = "authTokens"
	// UserKey holds the cached user JSON
	UserKey = "authUser"
)

// PersistError reports a failed write to the storage. Persistence is best
// effort: callers log it and carry on.
type PersistError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("tokenstore: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("tokenstore: %s %s failed: %v", e.Op, e.Key, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Store reads and writes the persisted auth records
type Store struct {
	storage Storage
}

// NewStore creates a Store on top of storage
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Access returns the current access token. Records written by older clients
// use "token" instead of "access", both are accepted.
func (s *Store) Access(ctx context.Context) (string, bool) {
	raw, ok := s.tokensRaw(ctx)
	if !ok {
		return "", false
	}
	for _, field := range []string{"access", "token"} {
		if v := gjson.Get(raw, field); v.Type == gjson.String && v.Str != "" {
			return v.Str, true
		}
	}
	return "", false
}

// Refresh returns the current refresh token
func (s *Store) Refresh(ctx context.Context) (string, bool) {
	raw, ok := s.tokensRaw(ctx)
	if !ok {
		return "", false
	}
	v := gjson.Get(raw, "refresh")
	if v.Type != gjson.String || v.Str == "" {
		return "", false
	}
	return v.Str, true
}

// Tokens returns the persisted pair, ok is false when there is none
func (s *Store) Tokens(ctx context.Context) (models.TokenPair, bool) {
	access, hasAccess := s.Access(ctx)
	refresh, hasRefresh := s.Refresh(ctx)
	return models.TokenPair{Access: access, Refresh: refresh}, hasAccess || hasRefresh
}

func (s *Store) tokensRaw(ctx context.Context) (string, bool) {
	raw, err := s.storage.Get(ctx, TokensKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Debug("failed to read tokens", zap.Error(err))
		}
		return "", false
	}
	if !gjson.Valid(raw) {
		return "", false
	}
	return raw, true
}

// Persist overwrites both records. A nil user is stored as JSON null.
// Both writes are attempted even if the first one fails.
func (s *Store) Persist(ctx context.Context, tokens models.TokenPair, user models.User) error {
	var errs []error

	if err := s.setJSON(ctx, TokensKey, tokens); err != nil {
		errs = append(errs, err)
	}
	if err := s.setJSON(ctx, UserKey, user); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return &PersistError{Op: "persist", Err: errors.Join(errs...)}
	}
	return nil
}

// MergeAccess replaces the access token inside the persisted pair and keeps
// every other field as it is. A missing or corrupt record starts from {}.
func (s *Store) MergeAccess(ctx context.Context, access string) error {
	raw, ok := s.tokensRaw(ctx)
	if !ok || !gjson.Parse(raw).IsObject() {
		raw = "{}"
	}

	updated, err := sjson.Set(raw, "access", access)
	if err != nil {
		return &PersistError{Op: "merge", Key: TokensKey, Err: err}
	}
	if err := s.storage.Set(ctx, TokensKey, updated); err != nil {
		return &PersistError{Op: "merge", Key: TokensKey, Err: err}
	}
	return nil
}

// LoadUser returns the cached user, nil when none is stored
func (s *Store) LoadUser(ctx context.Context) (models.User, error) {
	raw, err := s.storage.Get(ctx, UserKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}
	return user, nil
}

// SaveUser overwrites the cached user
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	if err := s.setJSON(ctx, UserKey, user); err != nil {
		return &PersistError{Op: "save", Key: UserKey, Err: err}
	}
	return nil
}

// DeleteUser removes the cached user
func (s *Store) DeleteUser(ctx context.Context) error {
	if err := s.storage.Delete(ctx, UserKey); err != nil {
		return &PersistError{Op: "delete", Key: UserKey, Err: err}
	}
	return nil
}

// Clear removes both records
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{TokensKey, UserKey} {
		if err := s.storage.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &PersistError{Op: "clear", Err: errors.Join(errs...)}
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.storage.Set(ctx, key, string(data))
}

// AccessExpiry decodes the exp claim of a JWT access token without verifying
// its signature. It is informational only.
func AccessExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
