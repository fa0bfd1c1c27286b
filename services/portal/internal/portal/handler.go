// Package portal serves the restaurant portal's JSON API: sign-in, the
// customer area, the staff desk and the admin catalog.
package portal

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/appetiteclub/portal/internal/apiclient"
	"github.com/appetiteclub/portal/internal/audit"
	"github.com/appetiteclub/portal/internal/cart"
	"github.com/appetiteclub/portal/internal/catalog"
	"github.com/appetiteclub/portal/internal/config"
	"github.com/appetiteclub/portal/internal/guard"
	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/notify"
	"github.com/appetiteclub/portal/internal/orders"
	"github.com/appetiteclub/portal/internal/reservation"
	"github.com/appetiteclub/portal/internal/session"
	"github.com/appetiteclub/portal/pkg/event"
)

const sweepInterval = 5 * time.Minute

// Deps are the shared collaborators of every browser client.
type Deps struct {
	API       *apiclient.Client
	Storage   session.Storage
	Hub       *notify.Hub
	Audit     *audit.Logger
	Publisher event.Publisher
}

type Handler struct {
	api       *apiclient.Client
	storage   session.Storage
	hub       *notify.Hub
	audit     *audit.Logger
	publisher event.Publisher
	guard     guard.Table
	clients   *clients
	cookie    string
	cookieTTL time.Duration
	logger    logger.Logger
	config    *config.Config
}

func NewHandler(deps Deps, cfg *config.Config, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	if cfg == nil {
		cfg = config.FromMap(nil)
	}
	if deps.Storage == nil {
		deps.Storage = session.NewMemoryStorage()
	}
	if deps.Audit == nil {
		deps.Audit = audit.NewLogger(log)
	}
	if deps.API == nil {
		deps.API = apiclient.New(
			cfg.GetStringOrDef("api.url", "http://localhost:5000/api"),
			apiclient.WithTimeout(cfg.GetDurationOrDef("api.timeout", 15*time.Second)),
			apiclient.WithLogger(log),
		)
	}

	ttl := cfg.GetDurationOrDef("session.ttl", 24*time.Hour)

	h := &Handler{
		api:       deps.API,
		storage:   deps.Storage,
		hub:       deps.Hub,
		audit:     deps.Audit,
		publisher: deps.Publisher,
		guard:     guard.Default,
		cookie:    cfg.GetStringOrDef("session.cookie", "portal_client"),
		cookieTTL: ttl,
		logger:    log,
		config:    cfg,
	}
	h.clients = newClients(h.newClient, ttl, log)
	return h
}

// Start drops idle browser clients until ctx is done.
func (h *Handler) Start(ctx context.Context) error {
	go h.clients.run(ctx, sweepInterval)
	return nil
}

func (h *Handler) newClient(id string) *client {
	notices := notify.NewRecorder()
	var notifier notify.Notifier = notices
	if h.hub != nil {
		notifier = notify.Multi(notices, h.hub.For(id))
	}

	log := h.logger.With("client", id)
	store := session.NewStore(
		session.Namespaced(h.storage, id),
		session.NewAuthDataAccess(h.api),
		session.WithLogger(log),
		session.WithAuditor(h.audit),
	)
	api := h.api.WithTokenSource(store)

	return &client{
		id:      id,
		session: store,
		reservations: reservation.NewController(
			reservation.NewDataAccess(api),
			store,
			reservation.WithNotifier(notifier),
			reservation.WithPublisher(h.publisher),
			reservation.WithAuditor(h.audit),
			reservation.WithLogger(log),
		),
		cart: cart.NewController(
			cart.NewDataAccess(api),
			store,
			cart.WithNotifier(notifier),
			cart.WithPublisher(h.publisher),
			cart.WithLogger(log),
		),
		orders: orders.NewController(
			orders.NewDataAccess(api),
			store,
			orders.WithNotifier(notifier),
			orders.WithPublisher(h.publisher),
			orders.WithAuditor(h.audit),
			orders.WithLogger(log),
		),
		catalog: catalog.New(api),
		notices: notices,
	}
}

// RegisterRoutes registers every portal route. Role checks happen in the
// guard middleware, keyed by path prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(h.ClientMiddleware)
		r.Use(h.guard.Middleware(h.stateFor))

		r.Get("/ws", h.WebSocket)

		r.Post("/signin", h.SignIn)
		r.Post("/signout", h.SignOut)
		r.Post("/register", h.Register)

		r.Get("/services", h.ListServices)
		r.Get("/offers", h.ListOffers)
		r.Get("/facilities", h.ListFacilities)
		r.Get("/gallery", h.ListGallery)
		r.Get("/restaurants", h.ListRestaurants)
		r.Get("/dishes", h.ListDishes)
		r.Post("/queries", h.SubmitQuery)

		r.Route("/account", func(r chi.Router) {
			r.Get("/", h.Me)
		})

		r.Route("/customer", func(r chi.Router) {
			r.Get("/reservations", h.MyReservations)
			r.Post("/reservations", h.SubmitReservation)
			r.Get("/reservations/payment", h.PaymentDialog)
			r.Post("/reservations/payment", h.PayReservation)
			r.Delete("/reservations/payment", h.ClosePaymentDialog)
			r.Delete("/reservations/{id}", h.CancelReservation)

			r.Get("/cart", h.GetCart)
			r.Post("/cart/items", h.AddCartItem)
			r.Put("/cart/items/{dishID}", h.UpdateCartItem)
			r.Delete("/cart/items/{dishID}", h.RemoveCartItem)
			r.Post("/cart/checkout", h.Checkout)

			r.Get("/orders", h.MyOrders)
			r.Get("/orders/{id}", h.TrackOrder)
			r.Delete("/orders/{id}", h.CancelOrder)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/reservations", h.AllReservations)
			r.Post("/reservations/{id}/confirm", h.ConfirmReservation)
			r.Post("/reservations/{id}/cancel", h.StaffCancelReservation)
			r.Post("/reservations/{id}/payment", h.ConfirmReservationPayment)

			r.Get("/orders", h.AllOrders)
			r.Put("/orders/{id}/status", h.AdvanceOrder)

			r.Get("/queries", h.ListQueries)
			r.Post("/queries/{id}/resolve", h.ResolveQuery)
		})

		r.Route("/admin", func(r chi.Router) {
			h.registerCatalogRoutes(r)
		})
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClientMiddleware identifies the browser by cookie, issuing one when
// missing, and attaches its client state to the request context.
func (h *Handler) ClientMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := h.clientID(w, r)
		c := h.clients.get(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(withClient(r.Context(), c)))
	})
}

func (h *Handler) clientID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(h.cookie); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookieTTL.Seconds()),
	})
	return id
}

func (h *Handler) stateFor(r *http.Request) guard.State {
	c := clientFrom(r.Context())
	if c == nil {
		return nil
	}
	return c.session
}

// WebSocket streams this client's notifications and relayed events.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r.Context())
	if h.hub == nil || c == nil {
		http.NotFound(w, r)
		return
	}
	h.hub.ServeWS(w, r, c.id)
}

func (h *Handler) log(r *http.Request) logger.Logger {
	if r == nil {
		return h.logger
	}
	l := h.logger
	if c := clientFrom(r.Context()); c != nil {
		l = l.With("client", c.id)
	}
	return l
}

type ctxKey struct{}

func withClient(ctx context.Context, c *client) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

func clientFrom(ctx context.Context) *client {
	c, _ := ctx.Value(ctxKey{}).(*client)
	return c
}
