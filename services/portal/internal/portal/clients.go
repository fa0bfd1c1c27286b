package portal

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/portal/internal/cart"
	"github.com/appetiteclub/portal/internal/catalog"
	"github.com/appetiteclub/portal/internal/logger"
	"github.com/appetiteclub/portal/internal/notify"
	"github.com/appetiteclub/portal/internal/orders"
	"github.com/appetiteclub/portal/internal/reservation"
	"github.com/appetiteclub/portal/internal/session"
)

// client is everything the portal keeps for one browser: its session and the
// controllers whose local state spans several requests, such as an open
// payment dialog.
type client struct {
	id           string
	session      *session.Store
	reservations *reservation.Controller
	cart         *cart.Controller
	orders       *orders.Controller
	catalog      *catalog.Catalog
	notices      *notify.Recorder

	mu       sync.Mutex
	lastSeen time.Time
}

func (c *client) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

func (c *client) idleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastSeen)
}

// clients is the in-process registry of browser clients. Idle clients are
// dropped by sweep; their session record stays in storage and is restored
// on the next request.
type clients struct {
	mu    sync.Mutex
	byID  map[string]*client
	build func(id string) *client
	idle  time.Duration
	now   func() time.Time

	logger logger.Logger
}

func newClients(build func(id string) *client, idle time.Duration, log logger.Logger) *clients {
	return &clients{
		byID:   make(map[string]*client),
		build:  build,
		idle:   idle,
		now:    time.Now,
		logger: log,
	}
}

// get returns the client for id, creating it and restoring its session on
// first use.
func (cs *clients) get(ctx context.Context, id string) *client {
	cs.mu.Lock()
	c, ok := cs.byID[id]
	if !ok {
		c = cs.build(id)
		cs.byID[id] = c
	}
	cs.mu.Unlock()

	c.touch(cs.now())
	if ok {
		return c
	}

	if _, err := c.session.Restore(ctx); err != nil {
		cs.logger.Error("cannot restore session", "client", id, "error", err)
	}
	return c
}

func (cs *clients) len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.byID)
}

// sweep drops clients idle for longer than cs.idle and returns how many
// were removed.
func (cs *clients) sweep() int {
	now := cs.now()

	cs.mu.Lock()
	defer cs.mu.Unlock()

	removed := 0
	for id, c := range cs.byID {
		if c.idleSince(now) > cs.idle {
			delete(cs.byID, id)
			removed++
		}
	}
	return removed
}

func (cs *clients) run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := cs.sweep(); n > 0 {
				cs.logger.Debug("dropped idle clients", "count", n)
			}
		}
	}
}
