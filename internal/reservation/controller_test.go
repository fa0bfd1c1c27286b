package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/notify"
	"github.com/appetiteclub/portal/pkg/event"
)

var (
	customer = &models.User{ID: "u-1", Email: "ana@example.com", Role: "Customer"}
	staff    = &models.User{ID: "s-1", Email: "sam@example.com", Role: "Staff"}
)

func newTestController(backend Backend, user *models.User, opts ...Option) (*Controller, *notify.Recorder) {
	rec := notify.NewRecorder()
	opts = append([]Option{WithNotifier(rec)}, opts...)
	return NewController(backend, fakeSession{user: user}, opts...), rec
}

func lastMessage(t *testing.T, rec *notify.Recorder) notify.Notification {
	t.Helper()
	n, ok := rec.Last()
	if !ok {
		t.Fatal("expected a notification")
	}
	return n
}

func TestSubmitDineIn(t *testing.T) {
	backend := &MockBackend{}
	var sent *models.Reservation
	backend.CreateFunc = func(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
		sent = r
		cp := *r
		cp.ID = "res-1"
		return &cp, nil
	}
	c, rec := newTestController(backend, customer)

	form := Form{Date: "2025-03-01", Time: "19:00", Type: "Dine-in", DeliveryAddress: "ignored", ContactNumber: "555"}
	got, err := c.Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if sent.Status != "Pending" || sent.PaymentStatus != "Pending" {
		t.Errorf("sent status = %s/%s, want Pending/Pending", sent.Status, sent.PaymentStatus)
	}
	if sent.DeliveryAddress != nil || sent.ContactNumber != nil {
		t.Errorf("dine-in reservation carried delivery fields")
	}
	if sent.Customer.ID != customer.ID {
		t.Errorf("customer = %q, want %q", sent.Customer.ID, customer.ID)
	}
	if got.ID != "res-1" {
		t.Errorf("Submit() id = %q, want res-1", got.ID)
	}
	if c.Dialog() != nil {
		t.Errorf("Dialog() opened for dine-in")
	}
	if n := lastMessage(t, rec); n.Level != notify.Success || n.Message != MsgSubmitted {
		t.Errorf("notification = %+v, want success %q", n, MsgSubmitted)
	}
	if len(c.Reservations()) != 1 {
		t.Errorf("Reservations() len = %d, want 1", len(c.Reservations()))
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		form Form
		want string
	}{
		{
			name: "missingDate",
			form: Form{Time: "19:00", Type: "Dine-in"},
			want: "date",
		},
		{
			name: "badTime",
			form: Form{Date: "2025-03-01", Time: "7pm", Type: "Dine-in"},
			want: "time",
		},
		{
			name: "unknownType",
			form: Form{Date: "2025-03-01", Time: "19:00", Type: "Picnic"},
			want: "type",
		},
		{
			name: "deliveryWithoutAddress",
			form: Form{Date: "2025-03-01", Time: "19:00", Type: "Delivery", ContactNumber: "555"},
			want: "deliveryAddress",
		},
		{
			name: "deliveryWithoutContact",
			form: Form{Date: "2025-03-01", Time: "19:00", Type: "Delivery", DeliveryAddress: "1 Main St"},
			want: "contactNumber",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &MockBackend{}
			c, rec := newTestController(backend, customer)

			_, err := c.Submit(context.Background(), tt.form)
			if !apperr.IsKind(err, apperr.Validation) {
				t.Fatalf("Submit() error = %v, want validation", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Submit() error = %q, want mention of %q", err.Error(), tt.want)
			}
			if len(backend.Calls()) != 0 {
				t.Errorf("backend calls = %v, want none", backend.Calls())
			}
			if n := lastMessage(t, rec); n.Level != notify.Error {
				t.Errorf("notification level = %v, want error", n.Level)
			}
		})
	}
}

func TestSubmitRequiresUser(t *testing.T) {
	backend := &MockBackend{}
	c, _ := newTestController(backend, nil)

	_, err := c.Submit(context.Background(), Form{Date: "2025-03-01", Time: "19:00", Type: "Dine-in"})
	if !apperr.IsKind(err, apperr.Authentication) {
		t.Errorf("Submit() error = %v, want authentication", err)
	}
	if len(backend.Calls()) != 0 {
		t.Errorf("backend calls = %v, want none", backend.Calls())
	}
}

func TestSubmitBackendFailure(t *testing.T) {
	backend := &MockBackend{
		CreateFunc: func(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
			return nil, apperr.New(apperr.Validation, "slot unavailable")
		},
	}
	c, rec := newTestController(backend, customer)

	_, err := c.Submit(context.Background(), Form{Date: "2025-03-01", Time: "19:00", Type: "Dine-in"})
	if !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("Submit() error kind = %v, want validation", apperr.KindOf(err))
	}
	if n := lastMessage(t, rec); !strings.Contains(n.Message, "slot unavailable") {
		t.Errorf("notification = %q, want backend message", n.Message)
	}
	if len(c.Reservations()) != 0 {
		t.Errorf("Reservations() kept a failed submission")
	}
	if c.Submitting() {
		t.Errorf("Submitting() = true after failure")
	}
}

func TestSubmitEmptyResponse(t *testing.T) {
	backend := &MockBackend{
		CreateFunc: func(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
			return nil, nil
		},
	}
	c, rec := newTestController(backend, customer)

	_, err := c.Submit(context.Background(), Form{Date: "2025-03-01", Time: "19:00", Type: "Dine-in"})
	if !apperr.IsKind(err, apperr.Network) {
		t.Errorf("Submit() error kind = %v, want network", apperr.KindOf(err))
	}
	if n := lastMessage(t, rec); n.Message != "Failed to submit reservation: empty response" {
		t.Errorf("notification = %q", n.Message)
	}
	if len(c.Reservations()) != 0 {
		t.Errorf("Reservations() kept an empty submission")
	}
}

func deliveryBackend() *MockBackend {
	stored := &models.Reservation{}
	backend := &MockBackend{}
	backend.CreateFunc = func(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
		*stored = *r
		stored.ID = "res-9"
		stored.Payment = &models.Payment{ID: "pay-9", Amount: 42.5, Status: "Pending"}
		cp := *stored
		return &cp, nil
	}
	backend.UpdatePaymentFunc = func(ctx context.Context, paymentID string, update models.PaymentUpdate) (*models.Payment, error) {
		stored.PaymentStatus = update.Status
		stored.Payment = &models.Payment{ID: paymentID, Amount: update.Amount, Method: update.Method, Status: update.Status}
		p := *stored.Payment
		return &p, nil
	}
	backend.GetFunc = func(ctx context.Context, id string) (*models.Reservation, error) {
		cp := *stored
		return &cp, nil
	}
	return backend
}

func TestDeliveryCardPayment(t *testing.T) {
	backend := deliveryBackend()
	auditor := &recordingAuditor{}
	pub := &capturePublisher{}
	c, rec := newTestController(backend, customer, WithAuditor(auditor), WithPublisher(pub))

	form := Form{Date: "2025-03-01", Time: "19:00", Type: "Delivery", DeliveryAddress: "1 Main St", ContactNumber: "555-0100"}
	if _, err := c.Submit(context.Background(), form); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	dialog := c.Dialog()
	if dialog == nil {
		t.Fatal("Dialog() = nil, want open payment dialog")
	}
	if dialog.PaymentID != "pay-9" || dialog.Amount != 42.5 {
		t.Errorf("Dialog() = %+v, want pay-9 / 42.5", dialog)
	}
	if n := lastMessage(t, rec); n.Message != MsgPaymentRequired {
		t.Errorf("notification = %q, want %q", n.Message, MsgPaymentRequired)
	}

	card := &models.CardDetails{Holder: "Ana", Number: "4111 1111 1111 1111", Expiry: "12/29", CVV: "123"}
	got, err := c.Pay(context.Background(), PaymentForm{Method: "Card Payment", Card: card})
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}

	if got.PaymentStatus != "Paid" {
		t.Errorf("PaymentStatus = %q, want Paid", got.PaymentStatus)
	}
	if got.DisplayStatus() != "Confirmed" {
		t.Errorf("DisplayStatus() = %q, want Confirmed", got.DisplayStatus())
	}
	if c.Dialog() != nil {
		t.Errorf("Dialog() still open after payment")
	}
	if n := lastMessage(t, rec); n.Message != MsgPaymentSucceeded {
		t.Errorf("notification = %q, want %q", n.Message, MsgPaymentSucceeded)
	}

	list := c.Reservations()
	if len(list) != 1 || list[0].PaymentStatus != "Paid" {
		t.Errorf("Reservations() = %+v, want one paid reservation", list)
	}
	if len(auditor.entries) != 1 || auditor.entries[0].to != "Paid" {
		t.Errorf("audit entries = %+v, want one Paid transition", auditor.entries)
	}
	if len(pub.topics) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.topics))
	}
	var evt event.ReservationEvent
	if err := json.Unmarshal(pub.msgs[1], &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if evt.EventType != event.EventReservationPaymentPaid || evt.ReservationID != "res-9" {
		t.Errorf("event = %+v, want payment paid for res-9", evt)
	}
}

func TestPayRejectsIncompleteCard(t *testing.T) {
	backend := deliveryBackend()
	c, _ := newTestController(backend, customer)

	form := Form{Date: "2025-03-01", Time: "19:00", Type: "Delivery", DeliveryAddress: "1 Main St", ContactNumber: "555"}
	if _, err := c.Submit(context.Background(), form); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	tests := []struct {
		name string
		form PaymentForm
	}{
		{name: "noMethod", form: PaymentForm{}},
		{name: "cardMissing", form: PaymentForm{Method: "Card Payment"}},
		{name: "shortNumber", form: PaymentForm{Method: "Card Payment", Card: &models.CardDetails{Holder: "Ana", Number: "4111", Expiry: "12/29", CVV: "123"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Pay(context.Background(), tt.form)
			if !apperr.IsKind(err, apperr.Validation) {
				t.Errorf("Pay() error = %v, want validation", err)
			}
		})
	}

	for _, call := range backend.Calls() {
		if call == "UpdatePayment" {
			t.Errorf("UpdatePayment called for invalid card")
		}
	}
	if c.Dialog() == nil {
		t.Errorf("Dialog() closed after failed payment")
	}
}

func TestPayFallsBackWhenRefreshFails(t *testing.T) {
	backend := deliveryBackend()
	backend.GetFunc = func(ctx context.Context, id string) (*models.Reservation, error) {
		return nil, errors.New("timeout")
	}
	c, _ := newTestController(backend, customer)

	form := Form{Date: "2025-03-01", Time: "19:00", Type: "Delivery", DeliveryAddress: "1 Main St", ContactNumber: "555"}
	if _, err := c.Submit(context.Background(), form); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	got, err := c.Pay(context.Background(), PaymentForm{Method: "Cash on Delivery"})
	if err != nil {
		t.Fatalf("Pay() error = %v", err)
	}
	if !got.IsPaid() {
		t.Errorf("IsPaid() = false after successful payment")
	}
}

func TestPayWithoutDialog(t *testing.T) {
	backend := &MockBackend{}
	c, _ := newTestController(backend, customer)

	_, err := c.Pay(context.Background(), PaymentForm{Method: "Cash on Delivery"})
	if !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("Pay() error = %v, want validation", err)
	}
	if len(backend.Calls()) != 0 {
		t.Errorf("backend calls = %v, want none", backend.Calls())
	}
}

func loaded(t *testing.T, backend *MockBackend, user *models.User, list ...models.Reservation) (*Controller, *notify.Recorder) {
	t.Helper()
	backend.ListMineFunc = func(ctx context.Context) ([]models.Reservation, error) {
		return list, nil
	}
	backend.ListAllFunc = backend.ListMineFunc
	c, rec := newTestController(backend, user)
	var err error
	if user.HasRole(staffRoles...) {
		_, err = c.LoadAll(context.Background())
	} else {
		_, err = c.Load(context.Background())
	}
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	return c, rec
}

func TestCancelConfirmedMakesNoCall(t *testing.T) {
	backend := &MockBackend{}
	c, rec := loaded(t, backend, customer, models.Reservation{ID: "r-1", Status: "Confirmed"})

	err := c.Cancel(context.Background(), "r-1")
	if !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("Cancel() error = %v, want validation", err)
	}
	if n := lastMessage(t, rec); n.Message != MsgAlreadyConfirmed {
		t.Errorf("notification = %q, want %q", n.Message, MsgAlreadyConfirmed)
	}

	calls := backend.Calls()
	if len(calls) != 1 || calls[0] != "ListMine" {
		t.Errorf("backend calls = %v, want only the initial load", calls)
	}
	if got := c.Reservations(); len(got) != 1 || got[0].Status != "Confirmed" {
		t.Errorf("Reservations() = %+v, want unchanged", got)
	}
}

func TestCancelPending(t *testing.T) {
	backend := &MockBackend{}
	var status string
	backend.UpdateStatusFunc = func(ctx context.Context, id, s string) error {
		status = s
		return nil
	}
	c, rec := loaded(t, backend, customer,
		models.Reservation{ID: "r-1", Status: "Pending"},
		models.Reservation{ID: "r-2", Status: "Pending"},
	)

	if err := c.Cancel(context.Background(), "r-1"); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if status != "Cancelled" {
		t.Errorf("UpdateStatus() status = %q, want Cancelled", status)
	}

	got := c.Reservations()
	if len(got) != 1 || got[0].ID != "r-2" {
		t.Errorf("Reservations() = %+v, want only r-2", got)
	}
	if n := lastMessage(t, rec); n.Message != MsgCancelled {
		t.Errorf("notification = %q, want %q", n.Message, MsgCancelled)
	}
}

func TestCancelFailureKeepsReservation(t *testing.T) {
	backend := &MockBackend{
		UpdateStatusFunc: func(ctx context.Context, id, s string) error {
			return apperr.New(apperr.Network, "backend down")
		},
	}
	c, _ := loaded(t, backend, customer, models.Reservation{ID: "r-1", Status: "Pending"})

	if err := c.Cancel(context.Background(), "r-1"); !apperr.IsKind(err, apperr.Network) {
		t.Fatalf("Cancel() error = %v, want network", err)
	}
	if got := c.Reservations(); len(got) != 1 || got[0].Status != "Pending" {
		t.Errorf("Reservations() = %+v, want r-1 still Pending", got)
	}
}

func TestStaffConfirm(t *testing.T) {
	backend := &MockBackend{}
	backend.GetFunc = func(ctx context.Context, id string) (*models.Reservation, error) {
		return &models.Reservation{ID: id, Status: "Confirmed"}, nil
	}
	c, _ := loaded(t, backend, staff, models.Reservation{ID: "r-1", Status: "Pending"})

	got, err := c.Confirm(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if got.Status != "Confirmed" {
		t.Errorf("Confirm() status = %q, want Confirmed", got.Status)
	}
	if list := c.Reservations(); list[0].Status != "Confirmed" {
		t.Errorf("local status = %q, want Confirmed", list[0].Status)
	}
}

func TestStaffTransitions(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		status  string
		action  func(*Controller) error
		wantErr apperr.Kind
	}{
		{
			name:   "confirmPending",
			user:   staff,
			status: "Pending",
			action: func(c *Controller) error {
				_, err := c.Confirm(context.Background(), "r-1")
				return err
			},
		},
		{
			name:   "cancelConfirmed",
			user:   staff,
			status: "Confirmed",
			action: func(c *Controller) error {
				_, err := c.CancelAsStaff(context.Background(), "r-1")
				return err
			},
		},
		{
			name:   "confirmCancelled",
			user:   staff,
			status: "Cancelled",
			action: func(c *Controller) error {
				_, err := c.Confirm(context.Background(), "r-1")
				return err
			},
			wantErr: apperr.Validation,
		},
		{
			name:   "customerCannotConfirm",
			user:   customer,
			status: "Pending",
			action: func(c *Controller) error {
				_, err := c.Confirm(context.Background(), "r-1")
				return err
			},
			wantErr: apperr.Authorization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &MockBackend{}
			c, _ := loaded(t, backend, tt.user, models.Reservation{ID: "r-1", Status: tt.status})

			err := tt.action(c)
			if tt.wantErr == apperr.Unknown {
				if err != nil {
					t.Errorf("action error = %v, want nil", err)
				}
				return
			}
			if !apperr.IsKind(err, tt.wantErr) {
				t.Errorf("action error = %v, want %v", err, tt.wantErr)
			}
			for _, call := range backend.Calls() {
				if call == "UpdateStatus" {
					t.Errorf("UpdateStatus called for a refused transition")
				}
			}
		})
	}
}

func TestConfirmPayment(t *testing.T) {
	backend := &MockBackend{}
	var update models.PaymentUpdate
	backend.UpdatePaymentFunc = func(ctx context.Context, paymentID string, u models.PaymentUpdate) (*models.Payment, error) {
		update = u
		return &models.Payment{ID: paymentID, Status: u.Status}, nil
	}
	pending := models.Reservation{
		ID:            "r-1",
		Status:        "Pending",
		PaymentStatus: "Pending",
		Payment:       &models.Payment{ID: "pay-1", Amount: 20, Method: "Cash on Delivery"},
	}
	c, _ := loaded(t, backend, staff, pending)

	got, err := c.ConfirmPayment(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("ConfirmPayment() error = %v", err)
	}
	if update.Status != "Paid" || update.Amount != 20 {
		t.Errorf("payment update = %+v, want Paid / 20", update)
	}
	if got.PaymentStatus != "Paid" {
		t.Errorf("PaymentStatus = %q, want Paid", got.PaymentStatus)
	}

	if _, err := c.ConfirmPayment(context.Background(), "r-1"); !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("second ConfirmPayment() error = %v, want validation", err)
	}
}
