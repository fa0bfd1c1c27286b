package session

import (
	"context"
	"errors"
	"sync"

	"github.com/appetiteclub/portal/internal/models"
)

// MockAuthBackend implements AuthBackend for testing
type MockAuthBackend struct {
	LoginFunc    func(ctx context.Context, email, password string) (*models.User, string, error)
	LogoutFunc   func(ctx context.Context, token string) error
	RegisterFunc func(ctx context.Context, reg models.Registration) (*models.User, error)

	mu           sync.Mutex
	loginCalls   int
	logoutTokens []string
}

func (m *MockAuthBackend) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	m.mu.Lock()
	m.loginCalls++
	m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, "", errors.New("not implemented")
}

func (m *MockAuthBackend) Logout(ctx context.Context, token string) error {
	m.mu.Lock()
	m.logoutTokens = append(m.logoutTokens, token)
	m.mu.Unlock()
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

func (m *MockAuthBackend) Register(ctx context.Context, reg models.Registration) (*models.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	return nil, errors.New("not implemented")
}

func (m *MockAuthBackend) LogoutTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.logoutTokens...)
}

// countingStorage wraps a Storage and counts writes.
type countingStorage struct {
	Storage
	mu   sync.Mutex
	sets int
}

func (c *countingStorage) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Storage.Set(ctx, key, value)
}

// blockingStorage holds Get until release is closed.
type blockingStorage struct {
	Storage
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStorage) Get(ctx context.Context, key string) (string, error) {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return b.Storage.Get(ctx, key)
}

type recordingAuditor struct {
	mu      sync.Mutex
	logins  []string
	logouts []string
}

func (r *recordingAuditor) LogLogin(ctx context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, userID)
}

func (r *recordingAuditor) LogLogout(ctx context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logouts = append(r.logouts, userID)
}
