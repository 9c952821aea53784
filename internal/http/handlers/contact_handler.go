package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/internal/api"
	"github.com/mohamadtout/therapy-platform-sub003/internal/forms"
	"github.com/mohamadtout/therapy-platform-sub003/internal/http/response"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/events"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
)

// SubmitContact validates the contact form locally; a short message never
// reaches the upstream API.
func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form forms.ContactForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	form.Normalize()
	if errs := form.Validate(); !errs.Empty() {
		response.WriteFieldErrors(w, errs)
		return
	}

	err := h.api.SubmitContactForm(r.Context(), api.ContactFields{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Subject: form.Subject,
		Message: form.Message,
	})
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	if err := h.publisher.Publish(r.Context(), events.ContactSubmitted, events.ContactSubmittedEvent{
		Name:        form.Name,
		Email:       form.Email,
		Subject:     form.Subject,
		SubmittedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "Failed to publish contact event", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Thank you for reaching out. We will get back to you shortly.",
	})
}

// Subscribe signs an email up for the newsletter.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var form forms.SubscribeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	form.Normalize()
	if errs := form.Validate(); !errs.Empty() {
		response.WriteFieldErrors(w, errs)
		return
	}

	if err := h.api.Subscribe(r.Context(), form.Email); err != nil {
		writeUpstreamError(w, err)
		return
	}

	if err := h.publisher.Publish(r.Context(), events.SubscriptionCreated, events.SubscriptionCreatedEvent{
		Email:     form.Email,
		CreatedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "Failed to publish subscription event", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Subscribed successfully",
	})
}
