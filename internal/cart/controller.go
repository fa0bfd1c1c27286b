// Package cart keeps the customer's cart in sync with the backend and turns
// it into an order.
package cart

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
	"github.com/appetiteclub/portal/pkg/event"
)

const (
	MsgAdded          = "Item added to cart"
	MsgUpdated        = "Cart updated"
	MsgRemoved        = "Item removed from cart"
	MsgOrderPlaced    = "Order placed successfully!"
	MsgQuantityTooLow = "Quantity must be at least 1"
	MsgEmptyCart      = "Your cart is empty"
	MsgUnavailable    = "Some items in your cart are no longer available"
	MsgAddressMissing = "Please enter a delivery address"
)

type Session interface {
	User() *models.User
}

// Checkout is what the customer submits at the end of the cart.
type Checkout struct {
	RestaurantID    string              `json:"restaurant"`
	DeliveryAddress string              `json:"deliveryAddress"`
	Method          string              `json:"method"`
	Card            *models.CardDetails `json:"card,omitempty"`
}

// Controller mirrors the backend cart. Every mutation is followed by a full
// reload so the local copy never drifts from the server.
type Controller struct {
	mu   sync.Mutex
	cart *models.Cart

	backend   Backend
	session   Session
	notifier  notify.Notifier
	publisher event.Publisher
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
		validate: validation.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cart returns a copy of the last loaded cart. It is never nil.
func (c *Controller) Cart() models.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cart == nil {
		return models.Cart{}
	}
	cp := *c.cart
	cp.Items = append([]models.CartItem(nil), c.cart.Items...)
	return cp
}

// Load fetches the cart and recomputes its totals.
func (c *Controller) Load(ctx context.Context) (models.Cart, error) {
	if _, err := c.requireUser(ctx); err != nil {
		return models.Cart{}, err
	}
	if err := c.reload(ctx); err != nil {
		return models.Cart{}, c.fail(ctx, "Failed to load cart", err)
	}
	return c.Cart(), nil
}

func (c *Controller) reload(ctx context.Context) error {
	fresh, err := c.backend.Get(ctx)
	if err != nil {
		return err
	}
	if fresh == nil {
		fresh = &models.Cart{}
	}
	fresh.Recompute()

	c.mu.Lock()
	c.cart = fresh
	c.mu.Unlock()
	return nil
}

func (c *Controller) AddItem(ctx context.Context, dishID string, quantity int, customizations []string) (models.Cart, error) {
	if _, err := c.requireUser(ctx); err != nil {
		return models.Cart{}, err
	}
	if strings.TrimSpace(dishID) == "" {
		return models.Cart{}, c.reject(ctx, "Please select a dish")
	}
	if quantity < 1 {
		return models.Cart{}, c.reject(ctx, MsgQuantityTooLow)
	}

	req := models.AddItemRequest{DishID: dishID, Quantity: quantity, Customizations: customizations}
	if err := c.backend.AddItem(ctx, req); err != nil {
		return models.Cart{}, c.fail(ctx, "Failed to add item", err)
	}
	return c.afterMutation(ctx, MsgAdded)
}

// UpdateQuantity sets the quantity of a line. Quantities below one are
// refused locally.
func (c *Controller) UpdateQuantity(ctx context.Context, dishID string, quantity int) (models.Cart, error) {
	if _, err := c.requireUser(ctx); err != nil {
		return models.Cart{}, err
	}
	if quantity <= 0 {
		return models.Cart{}, c.reject(ctx, MsgQuantityTooLow)
	}

	if err := c.backend.UpdateQuantity(ctx, dishID, quantity); err != nil {
		return models.Cart{}, c.fail(ctx, "Failed to update cart", err)
	}
	return c.afterMutation(ctx, MsgUpdated)
}

func (c *Controller) RemoveItem(ctx context.Context, dishID string) (models.Cart, error) {
	if _, err := c.requireUser(ctx); err != nil {
		return models.Cart{}, err
	}

	if err := c.backend.RemoveItem(ctx, dishID); err != nil {
		return models.Cart{}, c.fail(ctx, "Failed to remove item", err)
	}
	return c.afterMutation(ctx, MsgRemoved)
}

func (c *Controller) afterMutation(ctx context.Context, msg string) (models.Cart, error) {
	if err := c.reload(ctx); err != nil {
		return models.Cart{}, c.fail(ctx, "Failed to refresh cart", err)
	}
	notify.Send(ctx, c.notifier, notify.Success, msg)
	return c.Cart(), nil
}

// PlaceOrder checks out the cart with the given payment. The cart is
// reloaded before the checks so every line is resolved against the backend,
// and again afterwards; the backend empties it once the order exists.
func (c *Controller) PlaceOrder(ctx context.Context, in Checkout) (*models.Order, error) {
	user, err := c.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.reload(ctx); err != nil {
		return nil, c.fail(ctx, "Failed to refresh cart", err)
	}
	current := c.Cart()
	if current.IsEmpty() {
		return nil, c.reject(ctx, MsgEmptyCart)
	}
	for _, item := range current.Items {
		if !item.Resolvable() {
			return nil, c.reject(ctx, MsgUnavailable)
		}
	}

	address := strings.TrimSpace(in.DeliveryAddress)
	if address == "" {
		return nil, c.reject(ctx, MsgAddressMissing)
	}

	method, err := payment.Validate(c.validate, in.Method, in.Card)
	if err != nil {
		notify.Send(ctx, c.notifier, notify.Error, apperr.MessageOf(err))
		return nil, err
	}

	restaurant := strings.TrimSpace(in.RestaurantID)
	if restaurant == "" {
		restaurant = restaurantOf(current)
	}

	current.Recompute()
	req := models.PlaceOrderRequest{
		Restaurant:      restaurant,
		TotalPrice:      current.TotalPrice,
		DeliveryAddress: address,
		Payment:         payment.Settle(current.TotalPrice, method),
	}
	for _, item := range current.Items {
		req.Items = append(req.Items, models.OrderLine{
			DishID:         item.DishID,
			Quantity:       item.Quantity,
			Customizations: item.Customizations,
			Price:          item.LineTotal,
		})
	}

	order, err := c.backend.PlaceOrder(ctx, req)
	if err != nil {
		return nil, c.fail(ctx, "Failed to place order", err)
	}

	if err := c.reload(ctx); err != nil {
		c.logger.Error("cannot reload cart after checkout", "error", err)
		c.mu.Lock()
		c.cart = &models.Cart{Customer: current.Customer}
		c.mu.Unlock()
	}

	c.publish(ctx, order, user.ID)
	notify.Send(ctx, c.notifier, notify.Success, MsgOrderPlaced)
	return order, nil
}

// restaurantOf returns the restaurant of the first dish that names one.
func restaurantOf(cart models.Cart) string {
	for _, item := range cart.Items {
		if item.Dish != nil && item.Dish.Restaurant != nil && item.Dish.Restaurant.ID != "" {
			return item.Dish.Restaurant.ID
		}
	}
	return ""
}

func (c *Controller) publish(ctx context.Context, order *models.Order, actor string) {
	if c.publisher == nil || order == nil {
		return
	}
	evt := event.OrderEvent{
		EventType:    event.EventOrderPlaced,
		OccurredAt:   time.Now().UTC(),
		OrderID:      order.ID,
		CustomerID:   order.Customer.ID,
		RestaurantID: order.Restaurant.ID,
		Status:       order.Status,
		TotalPrice:   order.TotalPrice,
		Actor:        actor,
	}
	if err := event.Publish(ctx, c.publisher, event.OrdersTopic, evt); err != nil {
		c.logger.Error("cannot publish order event", "order_id", order.ID, "error", err)
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
