package reservation

import (
	"context"
	"sync"

	"github.com/appetiteclub/portal/internal/models"
)

// MockBackend records every call and delegates to the Func fields when set.
type MockBackend struct {
	mu    sync.Mutex
	calls []string

	CreateFunc        func(ctx context.Context, r *models.Reservation) (*models.Reservation, error)
	GetFunc           func(ctx context.Context, id string) (*models.Reservation, error)
	ListMineFunc      func(ctx context.Context) ([]models.Reservation, error)
	ListAllFunc       func(ctx context.Context) ([]models.Reservation, error)
	UpdateStatusFunc  func(ctx context.Context, id, status string) error
	DeleteFunc        func(ctx context.Context, id string) error
	UpdatePaymentFunc func(ctx context.Context, paymentID string, update models.PaymentUpdate) (*models.Payment, error)
}

func (m *MockBackend) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockBackend) Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	m.record("Create")
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	cp := *r
	cp.ID = "res-1"
	return &cp, nil
}

func (m *MockBackend) Get(ctx context.Context, id string) (*models.Reservation, error) {
	m.record("Get")
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockBackend) ListMine(ctx context.Context) ([]models.Reservation, error) {
	m.record("ListMine")
	if m.ListMineFunc != nil {
		return m.ListMineFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) ListAll(ctx context.Context) ([]models.Reservation, error) {
	m.record("ListAll")
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) UpdateStatus(ctx context.Context, id, status string) error {
	m.record("UpdateStatus")
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockBackend) Delete(ctx context.Context, id string) error {
	m.record("Delete")
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockBackend) UpdatePayment(ctx context.Context, paymentID string, update models.PaymentUpdate) (*models.Payment, error) {
	m.record("UpdatePayment")
	if m.UpdatePaymentFunc != nil {
		return m.UpdatePaymentFunc(ctx, paymentID, update)
	}
	return &models.Payment{ID: paymentID, Amount: update.Amount, Method: update.Method, Status: update.Status}, nil
}

type fakeSession struct {
	user *models.User
}

func (s fakeSession) User() *models.User {
	return s.user
}

type transition struct {
	target string
	from   string
	to     string
	err    error
}

type recordingAuditor struct {
	mu      sync.Mutex
	entries []transition
}

func (a *recordingAuditor) LogTransition(ctx context.Context, userID, target, from, to string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, transition{target: target, from: from, to: to, err: err})
}

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	msgs   [][]byte
}

func (p *capturePublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.msgs = append(p.msgs, msg)
	return nil
}
