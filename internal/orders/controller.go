// Package orders lets customers follow their orders and staff move them
// through preparation and delivery.
package orders

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/notify"
	"github.com/appetiteclub/portal/pkg/enums/orderstatus"
	"github.com/appetiteclub/portal/pkg/enums/role"
	"github.com/appetiteclub/portal/pkg/event"
)

const (
	MsgCancelled    = "Order cancelled."
	MsgNotPending   = "Only pending orders can be cancelled. Please contact support."
	MsgStatusUpdate = "Order status updated."
)

type Session interface {
	User() *models.User
}

type Auditor interface {
	LogTransition(ctx context.Context, userID, target, from, to string, err error)
}

var (
	pending    = orderstatus.Statuses.Pending.Name
	confirmed  = orderstatus.Statuses.Confirmed.Name
	delivering = orderstatus.Statuses.Delivering.Name
	completed  = orderstatus.Statuses.Completed.Name
	cancelled  = orderstatus.Statuses.Cancelled.Name
)

// next is the staff transition table.
var next = map[string]map[string]bool{
	pending:    {confirmed: true, cancelled: true},
	confirmed:  {delivering: true, cancelled: true},
	delivering: {completed: true},
}

// CanAdvance reports whether staff may move an order from one status to another.
func CanAdvance(from, to string) bool {
	return next[from][to]
}

type Controller struct {
	mu     sync.Mutex
	orders []models.Order

	backend   Backend
	session   Session
	notifier  notify.Notifier
	publisher event.Publisher
	auditor   Auditor
	logger    logger.Logger
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

func NewController(backend Backend, session Session, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		session:  session,
		notifier: notify.Nop,
		logger:   logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Orders() []models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Order(nil), c.orders...)
}

func (c *Controller) Load(ctx context.Context) ([]models.Order, error) {
	if _, err := c.requireUser(ctx); err != nil {
		return nil, err
	}

	list, err := c.backend.List(ctx)
	if err != nil {
		return nil, c.fail(ctx, "Failed to load orders", err)
	}

	c.mu.Lock()
	c.orders = append([]models.Order(nil), list...)
	c.mu.Unlock()
	return c.Orders(), nil
}

// Track reads the latest state of one order and updates the local copy.
func (c *Controller) Track(ctx context.Context, id string) (*models.Order, error) {
	if _, err := c.requireUser(ctx); err != nil {
		return nil, err
	}

	o, err := c.backend.Get(ctx, id)
	if err != nil {
		return nil, c.fail(ctx, "Failed to load order", err)
	}
	if o == nil {
		return nil, c.reject(ctx, "Order not found")
	}

	c.replace(*o)
	return o, nil
}

// Cancel is the customer's cancellation; only Pending orders qualify.
func (c *Controller) Cancel(ctx context.Context, id string) (*models.Order, error) {
	user, err := c.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	current, err := c.current(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != pending {
		return nil, c.reject(ctx, MsgNotPending)
	}

	updated, err := c.transition(ctx, user, current, cancelled, event.EventOrderCancelled)
	if err != nil {
		return nil, err
	}
	notify.Send(ctx, c.notifier, notify.Success, MsgCancelled)
	return updated, nil
}

// Advance moves an order along the staff transition table. Staff only.
func (c *Controller) Advance(ctx context.Context, id, status string) (*models.Order, error) {
	user, err := c.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(role.Roles.Staff, role.Roles.Admin) {
		err := apperr.New(apperr.Authorization, "unauthorized role")
		notify.Send(ctx, c.notifier, notify.Error, err.Message)
		return nil, err
	}
	if orderstatus.ByName(status) == nil {
		return nil, c.reject(ctx, "Unknown order status: "+status)
	}

	current, err := c.current(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAdvance(current.Status, status) {
		return nil, c.reject(ctx, "Cannot change order from "+current.Status+" to "+status)
	}

	eventType := event.EventOrderStatusChanged
	if status == cancelled {
		eventType = event.EventOrderCancelled
	}
	updated, err := c.transition(ctx, user, current, status, eventType)
	if err != nil {
		return nil, err
	}
	notify.Send(ctx, c.notifier, notify.Success, MsgStatusUpdate)
	return updated, nil
}

func (c *Controller) transition(ctx context.Context, user *models.User, current *models.Order, to, eventType string) (*models.Order, error) {
	from := current.Status
	err := c.backend.UpdateStatus(ctx, current.ID, to)
	if c.auditor != nil {
		c.auditor.LogTransition(ctx, user.ID, "order/"+current.ID, from, to, err)
	}
	if err != nil {
		return nil, c.fail(ctx, "Failed to update order", err)
	}

	updated, err := c.backend.Get(ctx, current.ID)
	if err != nil || updated == nil {
		c.logger.Error("cannot refresh order", "order_id", current.ID, "error", err)
		cp := *current
		cp.Status = to
		updated = &cp
	}
	c.replace(*updated)

	c.publish(ctx, eventType, updated, from, user.ID)
	return updated, nil
}

func (c *Controller) current(ctx context.Context, id string) (*models.Order, error) {
	c.mu.Lock()
	for _, o := range c.orders {
		if o.ID == id {
			c.mu.Unlock()
			return &o, nil
		}
	}
	c.mu.Unlock()

	o, err := c.backend.Get(ctx, id)
	if err != nil {
		return nil, c.fail(ctx, "Order not found", err)
	}
	if o == nil {
		return nil, c.reject(ctx, "Order not found")
	}
	return o, nil
}

func (c *Controller) replace(o models.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.orders {
		if c.orders[i].ID == o.ID {
			c.orders[i] = o
			return
		}
	}
	c.orders = append(c.orders, o)
}

func (c *Controller) publish(ctx context.Context, eventType string, o *models.Order, previous, actor string) {
	if c.publisher == nil {
		return
	}
	evt := event.OrderEvent{
		EventType:      eventType,
		OccurredAt:     time.Now().UTC(),
		OrderID:        o.ID,
		CustomerID:     o.Customer.ID,
		RestaurantID:   o.Restaurant.ID,
		Status:         o.Status,
		PreviousStatus: previous,
		TotalPrice:     o.TotalPrice,
		Actor:          actor,
	}
	if err := event.Publish(ctx, c.publisher, event.OrdersTopic, evt); err != nil {
		c.logger.Error("cannot publish order event", "order_id", o.ID, "error", err)
	}
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

func (c *Controller) reject(ctx context.Context, msg string) error {
	notify.Send(ctx, c.notifier, notify.Error, msg)
	return apperr.New(apperr.Validation, msg)
}

func (c *Controller) fail(ctx context.Context, msg string, err error) error {
	if detail := apperr.MessageOf(err); detail != "" {
		msg = msg + ": " + detail
	}
	notify.Send(ctx, c.notifier, notify.Error, msg)
	return apperr.Reclassify(msg, err)
}
