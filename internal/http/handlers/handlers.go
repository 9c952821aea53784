package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mohamadtout/therapy-platform-sub003/internal/api"
	"github.com/mohamadtout/therapy-platform-sub003/internal/checkout"
	"github.com/mohamadtout/therapy-platform-sub003/internal/draft"
	"github.com/mohamadtout/therapy-platform-sub003/internal/http/response"
	"github.com/mohamadtout/therapy-platform-sub003/internal/proxy"
	"github.com/mohamadtout/therapy-platform-sub003/internal/session"
	"github.com/mohamadtout/therapy-platform-sub003/internal/verify"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/auth"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/config"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/events"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

// Handlers wires every portal screen to its collaborators. The portal holds
// no authoritative data; everything below is flow state, local drafts and
// passthrough.
type Handlers struct {
	api           *api.Client
	sessions      *session.Store
	verifications *verify.Registry
	checkouts     *checkout.Manager
	drafts        *draft.Store
	publisher     events.Publisher
	upstream      *proxy.UpstreamProxy
	config        *config.Config
}

func New(
	apiClient *api.Client,
	sessions *session.Store,
	verifications *verify.Registry,
	checkouts *checkout.Manager,
	drafts *draft.Store,
	publisher events.Publisher,
	upstream *proxy.UpstreamProxy,
	config *config.Config,
) *Handlers {
	return &Handlers{
		api:           apiClient,
		sessions:      sessions,
		verifications: verifications,
		checkouts:     checkouts,
		drafts:        drafts,
		publisher:     publisher,
		upstream:      upstream,
		config:        config,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeUpstreamError translates a failed remote action into the single
// user-visible message the frontend renders. The upstream status is mirrored
// when a response arrived; transport failures map to 502.
func writeUpstreamError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status > 0 {
		status = apiErr.Status
	}
	response.WriteError(w, status, api.Normalize(err), response.CodeUpstream)
}

// Session cookie handling

func (h *Handlers) setSessionCookie(w http.ResponseWriter, sid, email, level string) error {
	token, err := auth.NewSessionToken(sid, email, level, h.config.Session.Secret, h.config.Session.TTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.Session.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionClaims parses the signed session cookie, if present.
func (h *Handlers) sessionClaims(r *http.Request) *auth.Claims {
	cookie, err := r.Cookie(h.config.Session.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	claims, err := auth.Parse(cookie.Value, h.config.Session.Secret)
	if err != nil {
		return nil
	}
	return claims
}

// RequireLevel gates a dashboard subtree on the account level carried by the
// session cookie. Admin passes every gate.
func (h *Handlers) RequireLevel(requiredLevel string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := h.sessionClaims(r)
			if claims == nil {
				response.Unauthorized(w, "Sign in required")
				return
			}

			if requiredLevel != "" && claims.Level != requiredLevel && claims.Level != "admin" {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			creds, err := h.sessions.Get(r.Context(), claims.SessionID)
			if err != nil {
				logger.ErrorContext(r.Context(), "Session lookup failed", "error", err)
				response.InternalError(w, "Session lookup failed")
				return
			}
			if creds == nil {
				response.Unauthorized(w, "Session expired")
				return
			}

			ctx := context.WithValue(r.Context(), logger.SessionIDKey, claims.SessionID)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// cartKey names the draft cart for this visitor: the signed-in email when
// available, otherwise a persistent anonymous cart cookie.
func (h *Handlers) cartKey(w http.ResponseWriter, r *http.Request) string {
	if claims := h.sessionClaims(r); claims != nil && claims.Email != "" {
		return claims.Email
	}

	const cartCookie = "portal_cart"
	if cookie, err := r.Cookie(cartCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	key := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookie,
		Value:    key,
		Path:     "/",
		MaxAge:   int((90 * 24 * 3600)),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}
