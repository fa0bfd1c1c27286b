package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/portal/internal/cart"
	"github.com/appetiteclub/portal/internal/models"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	current, err := clientFrom(r.Context()).cart.Load(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, current)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddItemRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	current, err := clientFrom(r.Context()).cart.AddItem(r.Context(), req.DishID, req.Quantity, req.Customizations)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, current)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req models.QuantityUpdate
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	current, err := clientFrom(r.Context()).cart.UpdateQuantity(r.Context(), chi.URLParam(r, "dishID"), req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, current)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	current, err := clientFrom(r.Context()).cart.RemoveItem(r.Context(), chi.URLParam(r, "dishID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, current)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var in cart.Checkout
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	order, err := clientFrom(r.Context()).cart.PlaceOrder(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, order)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	list, err := clientFrom(r.Context()).orders.Load(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, list)
}

// AllOrders is the staff view; the backend scopes the list by role.
func (h *Handler) AllOrders(w http.ResponseWriter, r *http.Request) {
	h.MyOrders(w, r)
}

func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	order, err := clientFrom(r.Context()).orders.Track(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, order)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	order, err := clientFrom(r.Context()).orders.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, order)
}

func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.StatusUpdate
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	order, err := clientFrom(r.Context()).orders.Advance(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, order)
}
