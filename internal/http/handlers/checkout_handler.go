package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mohamadtout/therapy-platform-sub003/internal/checkout"
	"github.com/mohamadtout/therapy-platform-sub003/internal/flow"
	"github.com/mohamadtout/therapy-platform-sub003/internal/http/response"
)

type checkoutState struct {
	ID        string    `json:"id"`
	Step      flow.Step `json:"step"`
	InFlight  bool      `json:"inFlight"`
	LastError string    `json:"lastError,omitempty"`
}

func stateOf(s *checkout.Session) checkoutState {
	return checkoutState{
		ID:        s.ID,
		Step:      s.Step(),
		InFlight:  s.InFlight(),
		LastError: s.LastError(),
	}
}

// CreateCheckout opens a new checkout dialog instance at the booking step.
func (h *Handlers) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	cartKey := h.cartKey(w, r)

	session, err := h.checkouts.Create(cartKey)
	if err != nil {
		response.InternalError(w, "Failed to start checkout")
		return
	}

	writeJSON(w, http.StatusCreated, stateOf(session))
}

func (h *Handlers) GetCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkouts.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w, "Checkout not found")
		return
	}

	writeJSON(w, http.StatusOK, stateOf(session))
}

// SubmitBooking captures the selection and moves the dialog to payment.
func (h *Handlers) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var sel checkout.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	session, err := h.checkouts.SubmitBooking(chi.URLParam(r, "id"), sel)
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateOf(session))
}

// CheckoutBack returns from payment to booking.
func (h *Handlers) CheckoutBack(w http.ResponseWriter, r *http.Request) {
	session, err := h.checkouts.Back(chi.URLParam(r, "id"))
	if err != nil {
		h.writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateOf(session))
}

// SubmitPayment runs the simulated payment and, on success, returns the
// confirmation step together with the updated draft cart.
func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.checkouts.SubmitPayment(r.Context(), id)
	if err != nil {
		if errors.Is(err, flow.ErrInFlight) {
			response.WriteError(w, http.StatusConflict, "Payment already in progress", response.CodeInFlight)
			return
		}
		h.writeCheckoutError(w, err)
		return
	}

	session, err := h.checkouts.Get(id)
	if err != nil {
		response.NotFound(w, "Checkout not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": stateOf(session),
		"cart":  items,
	})
}

func (h *Handlers) FinishCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.checkouts.Finish(chi.URLParam(r, "id")); err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloseCheckout abandons the dialog at any step.
func (h *Handlers) CloseCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.checkouts.Close(chi.URLParam(r, "id")); err != nil {
		h.writeCheckoutError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCart returns the advisory draft cart for this visitor.
func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	cartKey := h.cartKey(w, r)
	items := h.drafts.Load(r.Context(), cartKey)
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handlers) writeCheckoutError(w http.ResponseWriter, err error) {
	if errors.Is(err, checkout.ErrNotFound) {
		response.NotFound(w, "Checkout not found")
		return
	}
	response.BadRequest(w, err.Error())
}
