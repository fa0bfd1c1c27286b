package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/portal/internal/apperr"
	"github.com/appetiteclub/portal/internal/models"
	"github.com/appetiteclub/portal/internal/reservation"
)

func (h *Handler) MyReservations(w http.ResponseWriter, r *http.Request) {
	list, err := clientFrom(r.Context()).reservations.Load(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, reservationViews(list))
}

func (h *Handler) SubmitReservation(w http.ResponseWriter, r *http.Request) {
	var form reservation.Form
	if err := decode(r, &form); err != nil {
		h.fail(w, r, err)
		return
	}

	c := clientFrom(r.Context())
	created, err := c.reservations.Submit(r.Context(), form)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	body := map[string]any{"reservation": withDisplayStatus(created)}
	if d := c.reservations.Dialog(); d != nil {
		body["payment"] = d
	}
	h.ok(w, r, http.StatusCreated, body)
}

func (h *Handler) PaymentDialog(w http.ResponseWriter, r *http.Request) {
	d := clientFrom(r.Context()).reservations.Dialog()
	if d == nil {
		h.fail(w, r, apperr.New(apperr.Validation, "No payment in progress"))
		return
	}
	h.ok(w, r, http.StatusOK, d)
}

func (h *Handler) PayReservation(w http.ResponseWriter, r *http.Request) {
	var form reservation.PaymentForm
	if err := decode(r, &form); err != nil {
		h.fail(w, r, err)
		return
	}

	paid, err := clientFrom(r.Context()).reservations.Pay(r.Context(), form)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, withDisplayStatus(paid))
}

func (h *Handler) ClosePaymentDialog(w http.ResponseWriter, r *http.Request) {
	clientFrom(r.Context()).reservations.CloseDialog()
	h.ok(w, r, http.StatusOK, nil)
}

func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := clientFrom(r.Context()).reservations.Cancel(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) AllReservations(w http.ResponseWriter, r *http.Request) {
	list, err := clientFrom(r.Context()).reservations.LoadAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, reservationViews(list))
}

func (h *Handler) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	updated, err := clientFrom(r.Context()).reservations.Confirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, withDisplayStatus(updated))
}

func (h *Handler) StaffCancelReservation(w http.ResponseWriter, r *http.Request) {
	updated, err := clientFrom(r.Context()).reservations.CancelAsStaff(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, withDisplayStatus(updated))
}

func (h *Handler) ConfirmReservationPayment(w http.ResponseWriter, r *http.Request) {
	updated, err := clientFrom(r.Context()).reservations.ConfirmPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, withDisplayStatus(updated))
}

// reservationView adds the status shown to customers, where a paid
// reservation reads as Confirmed.
type reservationView struct {
	*models.Reservation
	Display string `json:"displayStatus"`
}

func withDisplayStatus(r *models.Reservation) reservationView {
	return reservationView{Reservation: r, Display: r.DisplayStatus()}
}

func reservationViews(list []models.Reservation) []reservationView {
	out := make([]reservationView, 0, len(list))
	for i := range list {
		out = append(out, withDisplayStatus(&list[i]))
	}
	return out
}
