// Package session holds who is logged in for one client and keeps that
// record in durable storage so it survives restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/validation"
)

const (
	loginFailed   = "login failed"
	logoutTimeout = 10 * time.Second
)

// Auditor records authentication events.
type Auditor interface {
	LogLogin(ctx context.Context, userID string)
	LogLogout(ctx context.Context, userID string)
}

// Store is the single source of truth for the authenticated user of one client.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	user    *models.User
	loading bool

	storage  Storage
	auth     AuthBackend
	logger   logger.Logger
	auditor  Auditor
	validate *validator.Validate
	now      func() time.Time

	bg sync.WaitGroup
}

type Option func(*Store)

func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithAuditor(a Auditor) Option {
	return func(s *Store) {
		s.auditor = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithValidator(v *validator.Validate) Option {
	return func(s *Store) {
		if v != nil {
			s.validate = v
		}
	}
}

func NewStore(storage Storage, auth AuthBackend, opts ...Option) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	s := &Store{
		storage:  storage,
		auth:     auth,
		logger:   logger.NewNoopLogger(),
		validate: validation.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the persisted user, if any. A missing or malformed record
// leaves the session empty; malformed records are also removed from storage.
// The returned error is non-nil only when storage itself failed.
func (s *Store) Restore(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	raw, err := s.storage.Get(ctx, KeyUser)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("cannot read stored session", "error", err)
		return nil, err
	}

	user, ok := s.decodeStored(ctx, raw)
	if !ok {
		s.logger.Debug("discarding malformed stored session")
		s.clearStorage(ctx)
		return nil, nil
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	return cloneUser(user), nil
}

func (s *Store) decodeStored(ctx context.Context, raw string) (*models.User, bool) {
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false
	}
	if err := user.Validate(); err != nil {
		return nil, false
	}

	if user.Token == "" {
		if token, err := s.storage.Get(ctx, KeySessionID); err == nil {
			user.Token = token
		}
	}
	if tokenExpired(user.Token, s.now()) {
		return nil, false
	}
	return &user, true
}

// tokenExpired reports whether token is a JWT whose exp claim is in the past.
// Tokens that do not parse as JWTs are treated as opaque and never expire here.
func tokenExpired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.Time.After(now)
}

// Login authenticates against the backend, persists the user and token, then
// updates memory. On failure the previous state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperr.New(apperr.Validation, loginFailed)
	}
	if s.auth == nil {
		return nil, apperr.New(apperr.Network, loginFailed)
	}

	user, token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Debug("login rejected", "email", email, "error", err)
		return nil, apperr.Reclassify(loginFailed, err)
	}
	if user == nil || token == "" {
		return nil, apperr.New(apperr.Authentication, loginFailed)
	}
	user.Token = token
	if err := user.ValidateIdentity(); err != nil {
		return nil, apperr.Wrap(apperr.Authentication, loginFailed, err)
	}
	user.NormaliseRole()

	raw, err := json.Marshal(user)
	if err != nil {
		return nil, apperr.Wrap(apperr.Network, loginFailed, err)
	}
	if err := s.storage.Set(ctx, KeyUser, string(raw)); err != nil {
		return nil, apperr.Wrap(apperr.Network, loginFailed, err)
	}
	if err := s.storage.Set(ctx, KeySessionID, token); err != nil {
		_ = s.storage.Delete(ctx, KeyUser)
		return nil, apperr.Wrap(apperr.Network, loginFailed, err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if s.auditor != nil {
		s.auditor.LogLogin(ctx, user.ID)
	}

	return cloneUser(user), nil
}

// Register creates a customer account. It does not log in.
func (s *Store) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if msgs := validation.Check(s.validate, reg); len(msgs) > 0 {
		return nil, apperr.New(apperr.Validation, strings.Join(msgs, "; "))
	}
	if s.auth == nil {
		return nil, apperr.New(apperr.Network, "registration failed")
	}

	user, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, apperr.Reclassify("registration failed", err)
	}
	return user, nil
}

// Logout clears memory and storage, then invalidates the backend session in
// the background. Backend errors are only logged.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	prev := s.user
	s.user = nil
	s.mu.Unlock()

	err := s.clearStorage(ctx)

	if prev == nil {
		return err
	}

	if s.auditor != nil {
		s.auditor.LogLogout(ctx, prev.ID)
	}

	if s.auth != nil && prev.Token != "" {
		token := prev.Token
		s.bg.Add(1)
		go func() {
			defer s.bg.Done()
			bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
			defer cancel()
			if err := s.auth.Logout(bgCtx, token); err != nil {
				s.logger.Debug("backend logout failed", "error", err)
			}
		}()
	}

	return err
}

func (s *Store) clearStorage(ctx context.Context) error {
	return errors.Join(
		s.storage.Delete(ctx, KeyUser),
		s.storage.Delete(ctx, KeySessionID),
	)
}

// Wait blocks until background backend calls have finished.
func (s *Store) Wait() {
	s.bg.Wait()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// Token is the bearer token for outgoing backend calls.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Token
}

// Loading is true while Restore runs.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
