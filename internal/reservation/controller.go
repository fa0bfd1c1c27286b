// Package reservation drives a reservation from submission through payment,
// confirmation and cancellation.
package reservation

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/notify"
	"github.com/appetiteclub/portal/internal/payment"
	"github.com/appetiteclub/portal/internal/validation"
	"github.com/appetiteclub/portal/pkg/enums/paymentstatus"
	"github.com/appetiteclub/portal/pkg/enums/reservationstatus"
	"github.com/appetiteclub/portal/pkg/enums/role"
	"github.com/appetiteclub/portal/pkg/event"
)

const (
	MsgSubmitted        = "Reservation submitted successfully!"
	MsgPaymentRequired  = "Reservation created. Please complete the payment."
	MsgPaymentSucceeded = "Payment successful! Your reservation is confirmed."
	MsgAlreadyConfirmed = "This reservation is already confirmed. Please contact support to cancel."
	MsgAlreadyCancelled = "This reservation is already cancelled."
	MsgCancelled        = "Reservation cancelled successfully."
	MsgConfirmed        = "Reservation confirmed."
	MsgPaymentConfirmed = "Payment marked as paid."
)

// Session is the part of the session store the controller reads.
type Session interface {
	User() *models.User
}

// Auditor records status changes.
type Auditor interface {
	LogTransition(ctx context.Context, userID, target, from, to string, err error)
}

// PaymentDialog is the open payment step of a Delivery reservation.
type PaymentDialog struct {
	ReservationID string  `json:"reservationId"`
	PaymentID     string  `json:"paymentId"`
	Amount        float64 `json:"amount"`
}

var staffRoles = []role.Role{role.Roles.Staff, role.Roles.Admin}

// staffNext lists the moves staff may make on a reservation.
var staffNext = map[string]map[string]bool{
	reservationstatus.Statuses.Pending.Name: {
		reservationstatus.Statuses.Confirmed.Name: true,
		reservationstatus.Statuses.Cancelled.Name: true,
	},
	reservationstatus.Statuses.Confirmed.Name: {
		reservationstatus.Statuses.Cancelled.Name: true,
	},
}

// Controller holds the reservations shown to one user and performs every
// lifecycle action against the backend. Failures are notified and returned;
// local state is only changed after the backend accepted the action.
type Controller struct {
	mu           sync.Mutex
	reservations []models.Reservation
	dialog       *PaymentDialog
	submitting   bool

	backend   Backend
	session   Session
	notifier  notify.Notifier
	publisher event.Publisher
	auditor   Auditor
	logger    logger.Logger
	validate  *validator.Validate
}

type Option func(*Controller)

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithPublisher(p event.Publisher) Option {
	return func(c *Controller) {
		c.publisher = p
	}
}

func WithAuditor(a Auditor) Option {
	return func(c *Controller) {
		c.auditor = a
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithValidator(v *validator.Validate) Option {
	return func(c *Controller) {
		if v != nil {
			c.validate = v
		}
	}
}

func NewController(backend Backend, session Session, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		session:  session,
		notifier: notify.Nop,
		logger:   logger.NewNoopLogger(),
		validate: validation.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reservations returns a copy of the local list.
func (c *Controller) Reservations() []models.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Reservation(nil), c.reservations...)
}

// Dialog returns the open payment dialog, or nil.
func (c *Controller) Dialog() *PaymentDialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog == nil {
		return nil
	}
	d := *c.dialog
	return &d
}

func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Load replaces the local list with the current user's reservations.
func (c *Controller) Load(ctx context.Context) ([]models.Reservation, error) {
	if _, err := c.requireUser(ctx); err != nil {
		return nil, err
	}
	list, err := c.backend.ListMine(ctx)
	if err != nil {
		return nil, c.fail(ctx, "Failed to load reservations", err)
	}
	c.setList(list)
	return c.Reservations(), nil
}

// LoadAll replaces the local list with every reservation. Staff only.
func (c *Controller) LoadAll(ctx context.Context) ([]models.Reservation, error) {
	if _, err := c.requireStaff(ctx); err != nil {
		return nil, err
	}
	list, err := c.backend.ListAll(ctx)
	if err != nil {
		return nil, c.fail(ctx, "Failed to load reservations", err)
	}
	c.setList(list)
	return c.Reservations(), nil
}

// Submit validates the form and creates a Pending reservation. Delivery
// reservations open the payment dialog with the payment the backend created.
func (c *Controller) Submit(ctx context.Context, form Form) (*models.Reservation, error) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil, c.reject(ctx, "A reservation is already being submitted")
	}
	c.submitting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	user, err := c.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if msgs := ValidateForm(ctx, c.validate, form); len(msgs) > 0 {
		return nil, c.reject(ctx, "Please fill in all required fields: "+strings.Join(msgs, "; "))
	}

	draft := models.NewReservation(form.input(user.ID))

	created, err := c.backend.Create(ctx, draft)
	if err != nil {
		return nil, c.fail(ctx, "Failed to submit reservation", err)
	}
	if created == nil {
		return nil, c.fail(ctx, "Failed to submit reservation", apperr.New(apperr.Network, "empty response"))
	}
	if !created.IsDelivery() {
		created.DeliveryAddress = nil
		created.ContactNumber = nil
	}

	c.mu.Lock()
	c.reservations = append(c.reservations, *created)
	c.mu.Unlock()

	c.publish(ctx, event.EventReservationCreated, created, "", user.ID)

	if created.IsDelivery() {
		if created.Payment == nil || created.Payment.ID == "" {
			err := apperr.New(apperr.Network, "Reservation created but no payment was returned")
			notify.Send(ctx, c.notifier, notify.Error, err.Message)
			return cloneReservation(created), err
		}
		c.mu.Lock()
		c.dialog = &PaymentDialog{
			ReservationID: created.ID,
			PaymentID:     created.Payment.ID,
			Amount:        created.Payment.Amount,
		}
		c.mu.Unlock()
		notify.Send(ctx, c.notifier, notify.Info, MsgPaymentRequired)
		return cloneReservation(created), nil
	}

	notify.Send(ctx, c.notifier, notify.Success, MsgSubmitted)
	return cloneReservation(created), nil
}

// CloseDialog dismisses the payment dialog without paying.
func (c *Controller) CloseDialog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialog = nil
}

// Pay settles the payment of the open dialog, then re-reads the reservation
// so the local copy matches the backend.
func (c *Controller) Pay(ctx context.Context, form PaymentForm) (*models.Reservation, error) {
	user, err := c.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	dialog := c.Dialog()
	if dialog == nil {
		return nil, c.reject(ctx, "No payment in progress")
	}

	method, err := payment.Validate(c.validate, form.Method, form.Card)
	if err != nil {
		notify.Send(ctx, c.notifier, notify.Error, apperr.MessageOf(err))
		return nil, err
	}

	current := c.find(dialog.ReservationID)
	from := paymentstatus.Statuses.Pending.Name
	if current != nil && current.PaymentStatus != "" {
		from = current.PaymentStatus
	}
	if !paymentstatus.CanTransition(from, paymentstatus.Statuses.Paid.Name) {
		return nil, c.reject(ctx, "This reservation is already paid")
	}

	paid, err := c.backend.UpdatePayment(ctx, dialog.PaymentID, payment.Settle(dialog.Amount, method))
	c.audit(ctx, user.ID, "payment/"+dialog.PaymentID, from, paymentstatus.Statuses.Paid.Name, err)
	if err != nil {
		return nil, c.fail(ctx, "Payment failed", err)
	}

	updated, err := c.backend.Get(ctx, dialog.ReservationID)
	if err != nil || updated == nil {
		// The payment went through; fall back to the payment record.
		c.logger.Error("cannot refresh reservation after payment", "reservation_id", dialog.ReservationID, "error", err)
		updated = fallbackAfterPayment(current, dialog, paid)
	}

	c.mu.Lock()
	c.replace(*updated)
	c.dialog = nil
	c.mu.Unlock()

	c.publish(ctx, event.EventReservationPaymentPaid, updated, "", user.ID)
	notify.Send(ctx, c.notifier, notify.Success, MsgPaymentSucceeded)
	return cloneReservation(updated), nil
}

func fallbackAfterPayment(current *models.Reservation, dialog *PaymentDialog, paid *models.Payment) *models.Reservation {
	r := &models.Reservation{ID: dialog.ReservationID}
	if current != nil {
		r = cloneReservation(current)
	}
	r.PaymentStatus = paymentstatus.Statuses.Paid.Name
	if paid != nil {
		if paid.Status != "" {
			r.PaymentStatus = paid.Status
		}
		r.Payment = paid
	}
	return r
}

// Cancel is the customer's self-service cancellation. Confirmed and
// Cancelled reservations are refused before any mutating call.
func (c *Controller) Cancel(ctx context.Context, id string) error {
	user, err := c.requireUser(ctx)
	if err != nil {
		return err
	}

	current, err := c.current(ctx, id)
	if err != nil {
		return err
	}
	if current.IsConfirmed() {
		return c.reject(ctx, MsgAlreadyConfirmed)
	}
	if current.IsCancelled() {
		return c.reject(ctx, MsgAlreadyCancelled)
	}

	cancelled := reservationstatus.Statuses.Cancelled.Name
	err = c.backend.UpdateStatus(ctx, id, cancelled)
	c.audit(ctx, user.ID, "reservation/"+id, current.Status, cancelled, err)
	if err != nil {
		return c.fail(ctx, "Failed to cancel reservation", err)
	}

	if err := c.backend.Delete(ctx, id); err != nil {
		c.mu.Lock()
		if r := c.lookup(id); r != nil {
			r.Status = cancelled
		}
		c.mu.Unlock()
		return c.fail(ctx, "Reservation cancelled but could not be removed", err)
	}

	c.mu.Lock()
	c.remove(id)
	c.mu.Unlock()

	previous := current.Status
	current.Status = cancelled
	c.publish(ctx, event.EventReservationCancelled, current, previous, user.ID)
	notify.Send(ctx, c.notifier, notify.Success, MsgCancelled)
	return nil
}

// Confirm moves a Pending reservation to Confirmed. Staff only.
func (c *Controller) Confirm(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := c.staffTransition(ctx, id, reservationstatus.Statuses.Confirmed.Name, event.EventReservationConfirmed)
	if err != nil {
		return nil, err
	}
	notify.Send(ctx, c.notifier, notify.Success, MsgConfirmed)
	return r, nil
}

// CancelAsStaff cancels a Pending or Confirmed reservation. Staff only.
func (c *Controller) CancelAsStaff(ctx context.Context, id string) (*models.Reservation, error) {
	r, err := c.staffTransition(ctx, id, reservationstatus.Statuses.Cancelled.Name, event.EventReservationCancelled)
	if err != nil {
		return nil, err
	}
	notify.Send(ctx, c.notifier, notify.Success, MsgCancelled)
	return r, nil
}

func (c *Controller) staffTransition(ctx context.Context, id, to, eventType string) (*models.Reservation, error) {
	user, err := c.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	current, err := c.current(ctx, id)
	if err != nil {
		return nil, err
	}

	from := current.Status
	if !staffNext[from][to] {
		return nil, c.reject(ctx, "Cannot change reservation from "+from+" to "+to)
	}

	err = c.backend.UpdateStatus(ctx, id, to)
	c.audit(ctx, user.ID, "reservation/"+id, from, to, err)
	if err != nil {
		return nil, c.fail(ctx, "Failed to update reservation", err)
	}

	updated := c.refresh(ctx, current, func(r *models.Reservation) { r.Status = to })
	c.publish(ctx, eventType, updated, from, user.ID)
	return cloneReservation(updated), nil
}

// ConfirmPayment marks the reservation's payment as paid. Staff only.
func (c *Controller) ConfirmPayment(ctx context.Context, id string) (*models.Reservation, error) {
	user, err := c.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	current, err := c.current(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsCancelled() {
		return nil, c.reject(ctx, MsgAlreadyCancelled)
	}
	if current.Payment == nil || current.Payment.ID == "" {
		return nil, c.reject(ctx, "No payment recorded for this reservation")
	}

	from := current.PaymentStatus
	paid := paymentstatus.Statuses.Paid.Name
	if !paymentstatus.CanTransition(from, paid) {
		return nil, c.reject(ctx, "This reservation is already paid")
	}

	update := models.PaymentUpdate{Amount: current.Payment.Amount, Method: current.Payment.Method, Status: paid}
	_, err = c.backend.UpdatePayment(ctx, current.Payment.ID, update)
	c.audit(ctx, user.ID, "payment/"+current.Payment.ID, from, paid, err)
	if err != nil {
		return nil, c.fail(ctx, "Failed to confirm payment", err)
	}

	updated := c.refresh(ctx, current, func(r *models.Reservation) { r.PaymentStatus = paid })
	c.publish(ctx, event.EventReservationPaymentPaid, updated, "", user.ID)
	notify.Send(ctx, c.notifier, notify.Success, MsgPaymentConfirmed)
	return cloneReservation(updated), nil
}

// current returns the local copy of id, reading it from the backend when the
// list does not hold it.
func (c *Controller) current(ctx context.Context, id string) (*models.Reservation, error) {
	if r := c.find(id); r != nil {
		return r, nil
	}
	r, err := c.backend.Get(ctx, id)
	if err != nil {
		return nil, c.fail(ctx, "Reservation not found", err)
	}
	if r == nil {
		return nil, c.reject(ctx, "Reservation not found")
	}
	return r, nil
}

// refresh re-reads a record after a successful change and replaces it in the
// local list. When the read fails the change is applied to the previous copy.
func (c *Controller) refresh(ctx context.Context, prev *models.Reservation, apply func(*models.Reservation)) *models.Reservation {
	updated, err := c.backend.Get(ctx, prev.ID)
	if err != nil || updated == nil {
		c.logger.Error("cannot refresh reservation", "reservation_id", prev.ID, "error", err)
		updated = cloneReservation(prev)
		apply(updated)
	}

	c.mu.Lock()
	c.replace(*updated)
	c.mu.Unlock()
	return updated
}

func (c *Controller) requireUser(ctx context.Context) (*models.User, error) {
	var user *models.User
	if c.session != nil {
		user = c.session.User()
	}
	if user == nil {
		err := apperr.New(apperr.Authentication, "Please sign in to continue")
		notify.Send(ctx, c.notifier, notify.Error, err.Message)
		return nil, err
	}
	return user, nil
}

func (c *Controller) requireStaff(ctx context.Context) (*models.User, error) {
	user, err := c.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(staffRoles...) {
		err := apperr.New(apperr.Authorization, "unauthorized role")
		notify.Send(ctx, c.notifier, notify.Error, err.Message)
		return nil, err
	}
	return user, nil
}

// reject notifies and returns a validation error.
func (c *Controller) reject(ctx context.Context, msg string) error {
	notify.Send(ctx, c.notifier, notify.Error, msg)
	return apperr.New(apperr.Validation, msg)
}

// fail notifies a backend failure and returns it with its kind preserved.
func (c *Controller) fail(ctx context.Context, msg string, err error) error {
	if detail := apperr.MessageOf(err); detail != "" {
		msg = msg + ": " + detail
	}
	c.logger.Debug("reservation action failed", "message", msg, "error", err)
	notify.Send(ctx, c.notifier, notify.Error, msg)
	return apperr.Reclassify(msg, err)
}

func (c *Controller) audit(ctx context.Context, userID, target, from, to string, err error) {
	if c.auditor != nil {
		c.auditor.LogTransition(ctx, userID, target, from, to, err)
	}
}

func (c *Controller) publish(ctx context.Context, eventType string, r *models.Reservation, previous, actor string) {
	if c.publisher == nil || r == nil {
		return
	}
	evt := event.ReservationEvent{
		EventType:      eventType,
		OccurredAt:     time.Now().UTC(),
		ReservationID:  r.ID,
		CustomerID:     r.Customer.ID,
		Type:           r.Type,
		Status:         r.Status,
		PreviousStatus: previous,
		PaymentStatus:  r.PaymentStatus,
		Actor:          actor,
	}
	if err := event.Publish(ctx, c.publisher, event.ReservationsTopic, evt); err != nil {
		c.logger.Error("cannot publish reservation event", "event", eventType, "error", err)
	}
}

func (c *Controller) setList(list []models.Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reservations = append([]models.Reservation(nil), list...)
}

// find returns a copy of the local record for id, or nil.
func (c *Controller) find(id string) *models.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r := c.lookup(id); r != nil {
		return cloneReservation(r)
	}
	return nil
}

// lookup must be called with c.mu held.
func (c *Controller) lookup(id string) *models.Reservation {
	for i := range c.reservations {
		if c.reservations[i].ID == id {
			return &c.reservations[i]
		}
	}
	return nil
}

// replace must be called with c.mu held.
func (c *Controller) replace(r models.Reservation) {
	if existing := c.lookup(r.ID); existing != nil {
		*existing = r
		return
	}
	c.reservations = append(c.reservations, r)
}

// remove must be called with c.mu held.
func (c *Controller) remove(id string) {
	out := c.reservations[:0]
	for _, r := range c.reservations {
		if r.ID != id {
			out = append(out, r)
		}
	}
	c.reservations = out
}

func cloneReservation(r *models.Reservation) *models.Reservation {
	if r == nil {
		return nil
	}
	cp := *r
	if r.Payment != nil {
		p := *r.Payment
		cp.Payment = &p
	}
	return &cp
}
