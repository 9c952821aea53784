package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/internal/forms"
	"github.com/mohamadtout/therapy-platform-sub003/internal/http/response"
	"github.com/mohamadtout/therapy-platform-sub003/internal/session"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/events"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
)

const codeExpiredMessage = "Verification code expired. Request a new code."

// Signup validates the form locally, registers the account upstream and
// starts the verification countdown for the returned verifyURL.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var form forms.SignupForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	form.Normalize()
	if errs := form.Validate(); !errs.Empty() {
		response.WriteFieldErrors(w, errs)
		return
	}

	result, err := h.api.Signup(r.Context(), form.Email, form.Phone, form.Password, form.Name)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.verifications.Begin(result.VerifyURL)
	remaining, _ := h.verifications.Remaining(result.VerifyURL)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Signup successful. Check your email for the verification code.",
		"verifyURL": result.VerifyURL,
		"expiresIn": remaining,
	})
}

// SignupConfirm submits the emailed code. An expired countdown is refused
// locally; the upstream API is never called with a dead code.
func (h *Handlers) SignupConfirm(w http.ResponseWriter, r *http.Request) {
	var form forms.ConfirmForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	form.Normalize()
	if errs := form.Validate(); !errs.Empty() {
		response.WriteFieldErrors(w, errs)
		return
	}

	if h.verifications.Expired(form.VerifyURL) {
		response.WriteError(w, http.StatusGone, codeExpiredMessage, response.CodeCodeExpired)
		return
	}

	creds, err := h.api.SignupConfirm(r.Context(), form.VerifyURL, form.Code)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.verifications.Complete(form.VerifyURL)

	sid, err := h.sessions.Create(r.Context(), session.Credentials{
		Token: creds.Token,
		Level: creds.Level,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to store session", "error", err)
		response.InternalError(w, "Failed to create session")
		return
	}
	if err := h.setSessionCookie(w, sid, "", creds.Level); err != nil {
		response.InternalError(w, "Failed to create session")
		return
	}

	if err := h.publisher.Publish(r.Context(), events.SignupConfirmed, events.SignupConfirmedEvent{
		Level:       creds.Level,
		ConfirmedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(r.Context(), "Failed to publish signup event", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Email verified successfully",
		"level":    creds.Level,
		"redirect": "/dashboard/" + creds.Level,
	})
}

// ResendCode asks the upstream API for a fresh code and restores the full
// countdown window.
func (h *Handlers) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VerifyURL string `json:"verifyURL"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VerifyURL == "" {
		response.BadRequest(w, "Verification reference is required")
		return
	}

	if err := h.api.ResendVerificationCode(r.Context(), req.VerifyURL); err != nil {
		writeUpstreamError(w, err)
		return
	}

	if !h.verifications.Reset(req.VerifyURL) {
		// Unknown to this process (restart, other instance): start fresh.
		h.verifications.Begin(req.VerifyURL)
	}
	remaining, _ := h.verifications.Remaining(req.VerifyURL)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "A new verification code has been sent",
		"expiresIn": remaining,
	})
}

// VerificationStatus reports the countdown for a pending verification so the
// frontend can render the timer after a reload.
func (h *Handlers) VerificationStatus(w http.ResponseWriter, r *http.Request) {
	verifyURL := r.URL.Query().Get("verifyURL")
	if verifyURL == "" {
		response.BadRequest(w, "Verification reference is required")
		return
	}

	remaining, known := h.verifications.Remaining(verifyURL)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"known":     known,
		"expiresIn": remaining,
		"expired":   known && remaining == 0,
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var form forms.LoginForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	form.Normalize()
	if errs := form.Validate(); !errs.Empty() {
		response.WriteFieldErrors(w, errs)
		return
	}

	creds, err := h.api.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	sid, err := h.sessions.Create(r.Context(), session.Credentials{
		Token: creds.Token,
		Level: creds.Level,
		Email: form.Email,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to store session", "error", err)
		response.InternalError(w, "Failed to create session")
		return
	}
	if err := h.setSessionCookie(w, sid, form.Email, creds.Level); err != nil {
		response.InternalError(w, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"level":    creds.Level,
		"redirect": "/dashboard/" + creds.Level,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims := h.sessionClaims(r); claims != nil {
		if err := h.sessions.Delete(r.Context(), claims.SessionID); err != nil {
			logger.WarnContext(r.Context(), "Failed to delete session", "error", err)
		}
	}
	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword requests a reset email. The upstream message is passed
// through verbatim so account enumeration behavior stays the API's call.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var form forms.ForgotPasswordForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	form.Normalize()
	if errs := form.Validate(); !errs.Empty() {
		response.WriteFieldErrors(w, errs)
		return
	}

	result, err := h.api.RequestPasswordReset(r.Context(), form.Email)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": result.Message})
}

// BeginPasswordReset starts the countdown when the reset page mounts with a
// verifyURL from the emailed link.
func (h *Handlers) BeginPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VerifyURL string `json:"verifyURL"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VerifyURL == "" {
		response.BadRequest(w, "Verification reference is required")
		return
	}

	h.verifications.Begin(req.VerifyURL)
	remaining, _ := h.verifications.Remaining(req.VerifyURL)

	writeJSON(w, http.StatusOK, map[string]interface{}{"expiresIn": remaining})
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var form forms.ResetPasswordForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	form.Normalize()
	if errs := form.Validate(); !errs.Empty() {
		response.WriteFieldErrors(w, errs)
		return
	}

	if h.verifications.Expired(form.VerifyURL) {
		response.WriteError(w, http.StatusGone, codeExpiredMessage, response.CodeCodeExpired)
		return
	}

	if err := h.api.ResetPassword(r.Context(), form.VerifyURL, form.Code, form.Password); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.verifications.Complete(form.VerifyURL)

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Password reset successfully. You can now sign in.",
		"redirect": "/login",
	})
}
